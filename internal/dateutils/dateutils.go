// Package dateutils normalizes the date formats found in bank exports and
// user input to the ISO layout transactions are stored with.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts accepted on input.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutEuropean  = "02.01.2006"
	DateLayoutSlash     = "02/01/2006"
	DateLayoutDash      = "02-01-2006"
	DateLayoutWithMonth = "2-Jan-2006"
)

// CommonFormats is tried in order by ParseDate. Day-first layouts win over
// month-first ones since Indian bank statements are day-first.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutFull,
	time.RFC3339,
	DateLayoutEuropean,
	DateLayoutSlash,
	DateLayoutDash,
	DateLayoutWithMonth,
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseDate parses dateStr with the first matching layout in CommonFormats.
func ParseDate(dateStr string) (time.Time, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// NormalizeDate rewrites dateStr as YYYY-MM-DD.
func NormalizeDate(dateStr string) (string, error) {
	t, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return ToISODate(t), nil
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString trims the string and collapses inner whitespace.
func CleanDateString(dateStr string) string {
	return strings.Join(strings.Fields(dateStr), " ")
}

// StartOfMonth returns midnight of the first day of date's month.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// DaysAgo returns the ISO date n days before now, the lower bound of a
// reporting window.
func DaysAgo(now time.Time, n int) string {
	return ToISODate(now.AddDate(0, 0, -n))
}
