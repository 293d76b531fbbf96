package archive

import (
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	created := time.Date(2026, 8, 30, 14, 15, 0, 0, time.UTC)

	id := EncodeName("Springfield", created)
	if id != "Archive::Springfield::2026-08-30::1415" {
		t.Fatalf("unexpected archive name: %q", id)
	}

	key, ts, err := DecodeName(id)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if key != "Springfield" {
		t.Errorf("expected branch key Springfield, got %q", key)
	}
	if !ts.Equal(created.Truncate(time.Minute)) {
		t.Errorf("expected %v, got %v", created.Truncate(time.Minute), ts)
	}
}

func TestEncodeTruncatesToMinute(t *testing.T) {
	a := EncodeName("B", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	b := EncodeName("B", time.Date(2026, 1, 2, 3, 4, 59, 0, time.UTC))
	if a != b {
		t.Errorf("names within the same minute should match: %q vs %q", a, b)
	}
}

func TestDecodeNameMalformed(t *testing.T) {
	cases := []string{
		"",
		"Springfield",
		"Archive::",
		"Archive::Springfield",
		"Archive::Springfield::2026-08-30",
		"Archive::Springfield::not-a-date::1415",
		"Archive::Springfield::2026-08-30::25xx",
		"Archive::::2026-08-30::1415",
		"Archive::Spring::field::2026-08-30::1415", // separator inside key
	}

	for _, id := range cases {
		if _, _, err := DecodeName(id); err == nil {
			t.Errorf("expected decode error for %q", id)
		}
	}
}

func TestDecodeNameOrdinaryTableNames(t *testing.T) {
	// Working tables and the template must never decode as archives.
	for _, name := range []string{"Springfield", "record_template", "run_log"} {
		if _, _, err := DecodeName(name); err == nil {
			t.Errorf("%q should not decode as an archive name", name)
		}
	}
}
