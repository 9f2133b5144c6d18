// Package dates turns the publication dates rendered by the portals into
// calendar dates.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

// Format selects how a raw date string is interpreted.
type Format string

const (
	// ISO is a machine attribute such as "2025-09-16T19:11:00+07:00".
	ISO Format = "iso"
	// Localized is long-form text such as "Selasa, 16 September 2025 7:11 PM".
	Localized Format = "localized"
)

// isoLayout accepts one- or two-digit months and days, as strptime does.
const isoLayout = "2006-1-2"

// months maps lowercase month names to their number. Indonesian names come
// first; English spellings and short forms are rendered by some themes.
var months = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"pebruari":  time.February,
	"maret":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"agustus":   time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"nopember":  time.November,
	"desember":  time.December,

	"january":  time.January,
	"february": time.February,
	"march":    time.March,
	"may":      time.May,
	"june":     time.June,
	"july":     time.July,
	"august":   time.August,
	"october":  time.October,
	"december": time.December,

	"jan":  time.January,
	"feb":  time.February,
	"mar":  time.March,
	"apr":  time.April,
	"jun":  time.June,
	"jul":  time.July,
	"agu":  time.August,
	"agt":  time.August,
	"aug":  time.August,
	"sep":  time.September,
	"sept": time.September,
	"okt":  time.October,
	"oct":  time.October,
	"nov":  time.November,
	"des":  time.December,
	"dec":  time.December,
}

var weekdays = map[string]bool{
	"senin": true, "selasa": true, "rabu": true, "kamis": true,
	"jumat": true, "jum'at": true, "sabtu": true, "minggu": true, "ahad": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Parse interprets raw according to format. The result is midnight UTC of
// the calendar date. Failures wrap types.ErrDateParse.
func Parse(raw string, format Format) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", types.ErrDateParse)
	}
	switch format {
	case ISO:
		return ParseISO(raw)
	case Localized:
		return ParseLocalized(raw)
	default:
		return time.Time{}, fmt.Errorf("%w: unknown format %q", types.ErrDateParse, format)
	}
}

// ParseISO reads the date part of an ISO-8601 timestamp.
func ParseISO(raw string) (time.Time, error) {
	datePart := strings.TrimSpace(raw)
	if i := strings.IndexAny(datePart, "T "); i >= 0 {
		datePart = datePart[:i]
	}
	t, err := time.Parse(isoLayout, datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", types.ErrDateParse, raw)
	}
	return t, nil
}

// ParseLocalized reads "<day> <month-name> <year>" text, ignoring a leading
// weekday and any trailing clock time, meridiem or zone marker.
func ParseLocalized(raw string) (time.Time, error) {
	fields := strings.FieldsFunc(strings.ToLower(raw), isDelimiter)
	for len(fields) > 0 && weekdays[fields[0]] {
		fields = fields[1:]
	}
	if len(fields) < 3 {
		return time.Time{}, fmt.Errorf("%w: %q has no day, month and year", types.ErrDateParse, raw)
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad day in %q", types.ErrDateParse, raw)
	}
	month, ok := months[strings.TrimSuffix(fields[1], ".")]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month %q", types.ErrDateParse, fields[1])
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1000 || year > 9999 {
		return time.Time{}, fmt.Errorf("%w: bad year in %q", types.ErrDateParse, raw)
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow, so 31 Februari comes back as March.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("%w: %d %s %d does not exist", types.ErrDateParse, day, month, year)
	}
	return t, nil
}

// isDelimiter splits on any Unicode space (NBSP included) and the
// separators portals put between date and time.
func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == '|' || r == '/'
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InRange reports whether d falls within [start, end], both inclusive,
// comparing calendar dates only.
func InRange(d, start, end time.Time) bool {
	d = Day(d)
	return !d.Before(Day(start)) && !d.After(Day(end))
}
