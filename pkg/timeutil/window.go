// Package timeutil parses the look-back windows accepted by --since.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// DefaultWindow is used when --since is given without a value.
	DefaultWindow = "30d"

	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var units = map[string]time.Duration{
	"d": day, "day": day, "days": day,
	"w": week, "wk": week, "week": week, "weeks": week,
	"mo": month, "month": month, "months": month,
	"y": year, "yr": year, "year": year, "years": year,
}

// ParseWindow reads windows like "3d", "2w" or "1y2mo" and returns the span
// with its canonical label. Months are 30 days and years 365.
func ParseWindow(input string) (time.Duration, string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		s = DefaultWindow
	}

	var total time.Duration
	for s != "" {
		n := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if n <= 0 {
			return 0, "", fmt.Errorf("invalid window %q: want a number followed by d, w, mo or y", input)
		}
		value, err := strconv.Atoi(s[:n])
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", s[:n], err)
		}
		s = s[n:]

		u := strings.IndexFunc(s, unicode.IsDigit)
		if u < 0 {
			u = len(s)
		}
		base, ok := units[strings.TrimSpace(s[:u])]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", s[:u])
		}
		total += time.Duration(value) * base
		s = s[u:]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders a span with y/mo/w/d tokens, largest first.
func FormatWindow(d time.Duration) string {
	if d < day {
		return "0d"
	}
	var b strings.Builder
	for _, u := range []struct {
		label string
		size  time.Duration
	}{{"y", year}, {"mo", month}, {"w", week}, {"d", day}} {
		if n := d / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.label)
			d -= n * u.size
		}
	}
	return b.String()
}

// Cutoff is the local midnight that starts a window ending at now.
func Cutoff(now time.Time, window time.Duration) time.Time {
	from := now.Add(-window)
	y, m, d := from.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
