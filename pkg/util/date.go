package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseMonthLabel parses "Mon-YY" column labels such as "Jan-14" into the first
// day of that month (UTC). Two-digit years are taken as 2000+YY.
// Four-digit years ("Jan-2014") and ISO months ("2014-01") are accepted too.
func ParseMonthLabel(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return t, true
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == ' ' || r == '/' })
	if len(parts) != 2 {
		return time.Time{}, false
	}
	m, ok := ParseMonth(parts[0])
	if !ok {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil || y < 0 {
		return time.Time{}, false
	}
	switch {
	case len(parts[1]) <= 2:
		y += 2000
	case len(parts[1]) != 4:
		return time.Time{}, false
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), true
}

// ParseMonth accepts full English month names, 3-letter abbreviations and 1..12.
func ParseMonth(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return m, true
		}
	}
	return 0, false
}

// MonthStart truncates t to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the first day of the month n months after t's month.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}
