package timeutil

import "time"

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// dateLayouts lists the release-date shapes seen across both catalogs.
var dateLayouts = []string{DateLayout, time.RFC3339, "2006"}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// YearOf extracts the release year from a date string, trying the known
// upstream layouts. The second return is false when no year can be parsed.
func YearOf(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}
