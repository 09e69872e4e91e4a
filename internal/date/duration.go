package date

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taskwarrior-go/task/internal/lex"
)

// Unit is a calendar-aware duration unit. Day/week map to a fixed number
// of seconds; month/quarter/year do not (a month is not always 30 days),
// so arithmetic on those goes through AddTo rather than Seconds.
type Unit int

const (
	UnitSecond Unit = iota
	UnitMinute
	UnitHour
	UnitDay
	UnitWeek
	UnitMonth
	UnitQuarter
	UnitYear
)

// Duration is N of Unit, e.g. 3 days, 2 weeks, 1 quarter.
type Duration struct {
	N    int
	Unit Unit
}

// canonicalSuffix is the abbreviation RenderDuration emits for each unit — the
// "canonical representative" spec.md §8 measures round-trips against.
var canonicalSuffix = map[Unit]string{
	UnitSecond:  "s",
	UnitMinute:  "min",
	UnitHour:    "h",
	UnitDay:     "d",
	UnitWeek:    "w",
	UnitMonth:   "mo",
	UnitQuarter: "q",
	UnitYear:    "y",
}

// namedDurations maps a standalone duration word (no number) to its
// canonical N/Unit, per spec.md §4.1's table plus the original's
// biannual/sennight/fortnight forms recovered from original_source/.
var namedDurations = map[string]Duration{
	"daily":     {1, UnitDay},
	"weekdays":  {1, UnitDay},
	"weekly":    {1, UnitWeek},
	"biweekly":  {2, UnitWeek},
	"fortnight": {2, UnitWeek},
	"sennight":  {1, UnitWeek},
	"monthly":   {1, UnitMonth},
	"quarterly": {1, UnitQuarter},
	"yearly":    {1, UnitYear},
	"annual":    {1, UnitYear},
	"biannual":  {2, UnitYear},
}

func unitFromAbbrev(s string) (Unit, bool) {
	switch s {
	case "s", "sec", "secs", "second", "seconds":
		return UnitSecond, true
	case "min", "mins", "minute", "minutes":
		return UnitMinute, true
	case "h", "hr", "hrs", "hour", "hours":
		return UnitHour, true
	case "d", "day", "days":
		return UnitDay, true
	case "w", "wk", "wks", "week", "weeks":
		return UnitWeek, true
	case "mo", "mth", "mths", "mnth", "mnths", "month", "months":
		return UnitMonth, true
	case "q", "qtr", "qtrs", "quarter", "quarters":
		return UnitQuarter, true
	case "y", "yr", "yrs", "year", "years":
		return UnitYear, true
	}
	return 0, false
}

// ParseDuration accepts the informal "<n><unit>" form, a standalone named
// duration, or an ISO-8601 duration ("P1Y2M3D", "PT1H30M") — the last
// recovered from original_source/src/ISO8601.cpp.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, fmt.Errorf("empty duration")
	}
	if d, ok := namedDurations[strings.ToLower(s)]; ok {
		return d, nil
	}
	if strings.HasPrefix(s, "P") || strings.HasPrefix(s, "p") {
		return parseISODuration(s)
	}

	for _, tok := range lex.DurationUnits {
		if strings.HasSuffix(s, tok) {
			numPart := s[:len(s)-len(tok)]
			if numPart == "" {
				continue
			}
			n, err := strconv.Atoi(numPart)
			if err != nil {
				continue
			}
			if u, ok := unitFromAbbrev(tok); ok {
				if u == UnitDay && n > 10000 {
					return Duration{}, fmt.Errorf("duration %q out of range", s)
				}
				return Duration{N: n, Unit: u}, nil
			}
		}
	}
	return Duration{}, fmt.Errorf("unrecognized duration %q", s)
}

func parseISODuration(s string) (Duration, error) {
	// Only a single designator is preserved per Duration value (the common
	// case the original emits); compound durations like "P1Y2M3D" collapse
	// to their largest non-zero component, which keeps Duration a simple
	// calendar-aware scalar rather than a vector of components.
	s = strings.ToUpper(s)
	if !strings.HasPrefix(s, "P") {
		return Duration{}, fmt.Errorf("not an ISO duration: %q", s)
	}
	s = s[1:]
	datePart, timePart, hasTime := strings.Cut(s, "T")
	if n, u, ok := scanISOComponents(datePart, false); ok {
		return Duration{N: n, Unit: u}, nil
	}
	if hasTime {
		if n, u, ok := scanISOComponents(timePart, true); ok {
			return Duration{N: n, Unit: u}, nil
		}
	}
	return Duration{}, fmt.Errorf("unrecognized ISO duration %q", s)
}

func scanISOComponents(s string, timeSection bool) (int, Unit, bool) {
	num := strings.Builder{}
	for _, c := range s {
		if c >= '0' && c <= '9' {
			num.WriteRune(c)
			continue
		}
		n, err := strconv.Atoi(num.String())
		num.Reset()
		if err != nil {
			continue
		}
		if n == 0 {
			continue
		}
		switch c {
		case 'Y':
			return n, UnitYear, true
		case 'M':
			if timeSection {
				return n, UnitMinute, true
			}
			return n, UnitMonth, true
		case 'W':
			return n, UnitWeek, true
		case 'D':
			return n, UnitDay, true
		case 'H':
			return n, UnitHour, true
		case 'S':
			return n, UnitSecond, true
		}
	}
	return 0, 0, false
}

// RenderDuration produces the canonical "<n><unit>" textual form.
func RenderDuration(d Duration) string {
	return fmt.Sprintf("%d%s", d.N, canonicalSuffix[d.Unit])
}

// Seconds returns the duration in seconds for fixed-length units. Calling
// it on Month/Quarter/Year returns an approximation (30/91/365 days);
// prefer AddTo for calendar-correct arithmetic on those units.
func (d Duration) Seconds() int64 {
	switch d.Unit {
	case UnitSecond:
		return int64(d.N)
	case UnitMinute:
		return int64(d.N) * 60
	case UnitHour:
		return int64(d.N) * 3600
	case UnitDay:
		return int64(d.N) * 86400
	case UnitWeek:
		return int64(d.N) * 7 * 86400
	case UnitQuarter:
		return int64(d.N) * 91 * 86400
	case UnitMonth:
		return int64(d.N) * 30 * 86400
	case UnitYear:
		return int64(d.N) * 365 * 86400
	}
	return 0
}

// AddTo adds the duration to t using calendar-correct arithmetic for
// month/quarter/year (so "due + 1mo" lands on the same day next month,
// not 30 days later).
func (d Duration) AddTo(t time.Time) time.Time {
	switch d.Unit {
	case UnitMonth:
		return t.AddDate(0, d.N, 0)
	case UnitQuarter:
		return t.AddDate(0, d.N*3, 0)
	case UnitYear:
		return t.AddDate(d.N, 0, 0)
	default:
		return t.Add(time.Duration(d.Seconds()) * time.Second)
	}
}

// Negate returns the opposite-signed duration, used when a duration is
// subtracted from a date.
func (d Duration) Negate() Duration { return Duration{N: -d.N, Unit: d.Unit} }
