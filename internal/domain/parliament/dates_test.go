package parliament

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"/Date(1700000000000)/", time.UnixMilli(1700000000000).UTC()},
		{"/Date(1700000000000+0100)/", time.UnixMilli(1700000000000).UTC()},
		{"/Date(-86400000)/", time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2024-09-10T08:00:00Z", time.Date(2024, 9, 10, 8, 0, 0, 0, time.UTC)},
		{"2024-09-10T10:00:00+02:00", time.Date(2024, 9, 10, 8, 0, 0, 0, time.UTC)},
		{"2024-09-10T08:00:00", time.Date(2024, 9, 10, 8, 0, 0, 0, time.UTC)},
		{"2024-09-10", time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := ParseDate(tc.raw)
		if !got.Valid() {
			t.Fatalf("ParseDate(%q) invalid, raw = %q", tc.raw, got.Raw)
		}
		if !got.Time.Equal(tc.want) || got.Time.Location() != time.UTC {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.raw, got.Time, tc.want)
		}
	}
}

func TestParseDateKeepsRawOnGarbage(t *testing.T) {
	got := ParseDate(" Herbstsession ")
	if got.Valid() || got.Ptr() != nil {
		t.Fatalf("expected invalid date, got %v", got.Time)
	}
	if got.Raw != "Herbstsession" || got.String() != "Herbstsession" {
		t.Fatalf("raw = %q", got.Raw)
	}

	if empty := ParseDate(""); empty.Valid() || empty.Raw != "" {
		t.Fatalf("empty input = %+v", empty)
	}
}
