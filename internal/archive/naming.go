package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/lherron/stockbook/internal/config"
)

// Archive table names follow the pattern
//
//	Archive::<branchKey>::<YYYY-MM-DD>::<hhmm>
//
// Branch keys are forbidden from containing the separator (enforced by
// config validation), so decoding is lossless.
const (
	namePrefix = "Archive" + config.ArchiveSeparator
	dateLayout = "2006-01-02"
	timeLayout = "1504"
)

// EncodeName builds the archive table name for a branch snapshot taken at t.
func EncodeName(branchKey string, t time.Time) string {
	return namePrefix + branchKey +
		config.ArchiveSeparator + t.Format(dateLayout) +
		config.ArchiveSeparator + t.Format(timeLayout)
}

// DecodeName parses an archive table name back into its branch key and
// creation time. Fails on any name that could not have been produced by
// EncodeName.
func DecodeName(id string) (branchKey string, createdAt time.Time, err error) {
	if !strings.HasPrefix(id, namePrefix) {
		return "", time.Time{}, fmt.Errorf("not an archive name: %q", id)
	}

	parts := strings.Split(strings.TrimPrefix(id, namePrefix), config.ArchiveSeparator)
	if len(parts) != 3 {
		return "", time.Time{}, fmt.Errorf("malformed archive name: %q", id)
	}

	branchKey = parts[0]
	if branchKey == "" {
		return "", time.Time{}, fmt.Errorf("malformed archive name (empty branch key): %q", id)
	}

	createdAt, err = time.Parse(dateLayout+" "+timeLayout, parts[1]+" "+parts[2])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed archive timestamp in %q: %w", id, err)
	}

	return branchKey, createdAt, nil
}
