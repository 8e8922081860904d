package model

import (
	"strings"
	"time"
)

// DateLayout is the wire and display format of joining dates.
const DateLayout = "2006-01-02"

// placeholderDate is written by the legacy revenue form when no date was picked.
const placeholderDate = "0000-00-00"

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a joining date into a civil date (midnight UTC).
// Empty values, the 0000-00-00 placeholder and anything unparseable are
// reported as absent.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, placeholderDate) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return CivilDate(t), true
		}
	}
	return time.Time{}, false
}

// CivilDate drops the clock and zone from t, keeping its calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a civil date with DateLayout.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }
