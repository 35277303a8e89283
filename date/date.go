// Package date parses the timestamps users type on the command line.
package date

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// readFormats are tried in order after the shortcuts.
var readFormats = []string{
	time.RFC3339Nano,
	"2006-1-2T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	readDateFormat,
}

var (
	relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmy])$`)
	monthDayDateRE = regexp.MustCompile(`^(?:(\d+)-)?(\d+)$`)
)

// Parse parses a timestamp relative to now. It accepts:
//
//	"", "now", "0d"       now
//	-1d, +2w, -1m, -1y    now shifted by days, weeks, months or years
//	27, 8-27              that day of the current month, or of month 8, at the current time of day;
//	                      day 0 is the last day of the previous month
//	2025-7-1              midnight in now's location
//	2025-7-1 18:30        in now's location
//	RFC 3339              as is
func Parse(str string, now time.Time) (time.Time, error) {
	str = strings.TrimSpace(str)

	switch strings.ToLower(str) {
	case "", "now", "0d":
		return now, nil
	}

	// Relative Duration Format (e.g., -1d, +2w) - sign is mandatory for non-zero
	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if match[1] == "-" {
			num = -num
		}
		switch match[3] {
		case "d":
			return now.AddDate(0, 0, num), nil
		case "w":
			return now.AddDate(0, 0, 7*num), nil
		case "m":
			return now.AddDate(0, num, 0), nil
		case "y":
			return now.AddDate(num, 0, 0), nil
		}
	}

	// [MM-]DD Format (e.g., 27, 8-27, 0, 8-0)
	if match := monthDayDateRE.FindStringSubmatch(str); match != nil {
		day, err := strconv.Atoi(match[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day in date %q: %w", str, err)
		}
		if day > 31 {
			return time.Time{}, fmt.Errorf("invalid day in date %q", str)
		}
		year, month := now.Year(), now.Month()
		if match[1] != "" {
			m, err := strconv.Atoi(match[1])
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid month in date %q: %w", str, err)
			}
			if m > 12 {
				return time.Time{}, fmt.Errorf("invalid month in date %q", str)
			}
			month = time.Month(m)
		}
		// time.Date normalizes day 0 to the last day of the previous month,
		// and month 0 to December of the previous year.
		h, mi, s := now.Clock()
		return time.Date(year, month, day, h, mi, s, 0, now.Location()), nil
	}

	for _, layout := range readFormats {
		if t, err := time.ParseInLocation(layout, str, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q want format %q, a relative date like -1d, or RFC 3339", str, readDateFormat)
}
