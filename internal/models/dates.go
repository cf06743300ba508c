package models

import (
	"fmt"
	"strings"
	"time"
)

// Date fields round-trip through TEXT columns and CSV cells. Accepted
// input shapes are RFC3339 and bare YYYY-MM-DD; an empty string means
// the field is absent, never a parse error.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// DateOnly renders the YYYY-MM-DD form used by report rows; empty for
// absent dates.
func DateOnly(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
