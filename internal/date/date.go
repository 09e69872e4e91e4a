// Package date implements ISO-8601 and named-date parsing, rendering,
// and arithmetic, following the approach of
// _examples/original_source/src/ISO8601.cpp: everything resolves to an
// absolute epoch at parse time, rather than deferring to host locale.
package date

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekstart selects whether the week begins on Sunday or Monday, per
// rc.weekstart.
type Weekstart int

const (
	WeekstartSunday Weekstart = iota
	WeekstartMonday
)

// DefaultLayout is the on-wire layout used for backlog/undo rendering
// (YYYYMMDDTHHMMSSZ), matching the format taskwarrior's own sync protocol
// uses (see _examples/other_examples' gotas Task.DateLayout).
const DefaultLayout = "20060102T150405Z"

var namedDateResolvers = map[string]func(now time.Time, ws Weekstart) time.Time{
	"now":       func(now time.Time, ws Weekstart) time.Time { return now },
	"today":     startOfDay,
	"yesterday": func(now time.Time, ws Weekstart) time.Time { return startOfDay(now.AddDate(0, 0, -1), ws) },
	"tomorrow":  func(now time.Time, ws Weekstart) time.Time { return startOfDay(now.AddDate(0, 0, 1), ws) },
	"sod":       startOfDay,
	"eod":       endOfDay,
	"sow":       startOfWeek,
	"eow":       endOfWeek,
	"socw":      startOfWeek,
	"eocw":      endOfWeek,
	"som":       startOfMonth,
	"eom":       endOfMonth,
	"soy":       startOfYear,
	"eoy":       endOfYear,
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

func startOfDay(t time.Time, _ Weekstart) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
func endOfDay(t time.Time, _ Weekstart) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
func startOfMonth(t time.Time, _ Weekstart) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
func endOfMonth(t time.Time, _ Weekstart) time.Time {
	return startOfMonth(t, 0).AddDate(0, 1, 0).Add(-time.Second)
}
func startOfYear(t time.Time, _ Weekstart) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
func endOfYear(t time.Time, _ Weekstart) time.Time {
	return startOfYear(t, 0).AddDate(1, 0, 0).Add(-time.Second)
}
func startOfWeek(t time.Time, ws Weekstart) time.Time {
	d := startOfDay(t, ws)
	first := time.Sunday
	if ws == WeekstartMonday {
		first = time.Monday
	}
	offset := (int(d.Weekday()) - int(first) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
func endOfWeek(t time.Time, ws Weekstart) time.Time {
	return startOfWeek(t, ws).AddDate(0, 0, 7).Add(-time.Second)
}

// Parse resolves a date literal — ISO-8601, a named date, a weekday or
// month name, or the configured dateformat template — to an absolute
// instant. now/weekstart ground the relative forms; layout is the
// rc.dateformat template, consulted only after the built-in forms fail
// to match so user templates can't shadow "today"/"eom"/etc.
func Parse(s string, now time.Time, ws Weekstart, layout string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	lower := strings.ToLower(raw)

	if resolver, ok := namedDateResolvers[lower]; ok {
		return resolver(now, ws), nil
	}
	if wd, ok := weekdayNames[lower]; ok {
		return nextWeekday(now, wd), nil
	}
	if m, ok := monthNames[lower]; ok {
		return nextMonth(now, m), nil
	}
	if t, ok := parseISO8601(raw); ok {
		return t, nil
	}
	if layout != "" {
		if t, err := parseTemplate(raw, layout, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	d := startOfDay(now, 0)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, offset)
}

func nextMonth(now time.Time, m time.Month) time.Time {
	year := now.Year()
	if now.Month() >= m {
		year++
	}
	return time.Date(year, m, 1, 0, 0, 0, 0, now.Location())
}

// parseISO8601 accepts extended (2024-01-02T03:04:05Z) and basic
// (20240102T030405Z) forms, date-only, and date+time without a zone.
func parseISO8601(s string) (time.Time, bool) {
	layouts := []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"20060102T150405Z",
		"20060102T150405",
		"2006-01-02",
		"20060102",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Render formats t using the rc.dateformat template (strftime-lite: Y,
// M, D, H, N, S tokens; anything else is literal). An empty layout
// renders ISO-8601 extended form.
func Render(t time.Time, layout string) string {
	if layout == "" {
		return t.UTC().Format("2006-01-02T15:04:05Z")
	}
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		switch layout[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'M':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'D':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'N':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		default:
			b.WriteByte(layout[i])
		}
	}
	return b.String()
}

func parseTemplate(s, layout string, loc *time.Location) (time.Time, error) {
	year, month, day, hour, min, sec := 0, 1, 1, 0, 0, 0
	si := 0
	for li := 0; li < len(layout); li++ {
		code := layout[li]
		switch code {
		case 'Y':
			v, n, err := readDigits(s[si:], 4)
			if err != nil {
				return time.Time{}, err
			}
			year = v
			si += n
		case 'M':
			v, n, err := readDigits(s[si:], 2)
			if err != nil {
				return time.Time{}, err
			}
			month = v
			si += n
		case 'D':
			v, n, err := readDigits(s[si:], 2)
			if err != nil {
				return time.Time{}, err
			}
			day = v
			si += n
		case 'H':
			v, n, err := readDigits(s[si:], 2)
			if err != nil {
				return time.Time{}, err
			}
			hour = v
			si += n
		case 'N':
			v, n, err := readDigits(s[si:], 2)
			if err != nil {
				return time.Time{}, err
			}
			min = v
			si += n
		case 'S':
			v, n, err := readDigits(s[si:], 2)
			if err != nil {
				return time.Time{}, err
			}
			sec = v
			si += n
		default:
			if si >= len(s) || s[si] != code {
				return time.Time{}, fmt.Errorf("date %q does not match template %q", s, layout)
			}
			si++
		}
	}
	if year == 0 {
		return time.Time{}, fmt.Errorf("date %q missing year", s)
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, loc), nil
}

func readDigits(s string, max int) (int, int, error) {
	n := 0
	for n < max && n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, 0, fmt.Errorf("expected digits in %q", s)
	}
	v, err := strconv.Atoi(s[:n])
	return v, n, err
}
