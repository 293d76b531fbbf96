// Package ingest converts a front-end-produced record set into domain
// records. The upload dialog and its format conversion live outside this
// repository; what arrives here is already a parsed list of field-name to
// value mappings, serialized as a JSON array of objects.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lherron/stockbook/internal/domain"
)

// Parse reads a JSON array of records from r. Values may be strings,
// numbers, booleans, or null; everything is carried as its string form,
// matching what a spreadsheet row would hold. Keys are preserved verbatim,
// including ones outside the canonical field set (the reconciler ignores
// them on output).
func Parse(r io.Reader) ([]domain.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse record set: %w", err)
	}

	records := make([]domain.Record, 0, len(raw))
	for i, obj := range raw {
		rec := make(domain.Record, len(obj))
		for k, v := range obj {
			s, err := scalarString(v)
			if err != nil {
				return nil, fmt.Errorf("record %d, field %q: %w", i, k, err)
			}
			rec[k] = s
		}
		records = append(records, rec)
	}

	return records, nil
}

// ParseFile reads a record set from a JSON file.
func ParseFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record set: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// scalarString renders a decoded JSON value as the string a working-table
// cell would hold.
func scalarString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
