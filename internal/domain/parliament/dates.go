package parliament

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateValue is an upstream date after normalization. Raw keeps the original
// text when it matched neither the epoch-wrapped nor the ISO-8601 form.
type DateValue struct {
	Time time.Time
	Raw  string
}

func (d DateValue) Valid() bool { return !d.Time.IsZero() }

// Ptr returns the parsed time or nil.
func (d DateValue) Ptr() *time.Time {
	if !d.Valid() {
		return nil
	}
	t := d.Time
	return &t
}

func (d DateValue) String() string {
	if d.Valid() {
		return d.Time.Format(time.RFC3339)
	}
	return d.Raw
}

var epochDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate normalizes "/Date(ms)/" and ISO-8601 strings to UTC. It never fails:
// unrecognized input is kept in Raw and an empty input yields the zero value.
func ParseDate(raw string) DateValue {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DateValue{}
	}

	if m := epochDatePattern.FindStringSubmatch(trimmed); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			return DateValue{Time: time.UnixMilli(ms).UTC()}
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return DateValue{Time: t.UTC()}
		}
	}

	return DateValue{Raw: trimmed}
}
