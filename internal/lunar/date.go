package lunar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SolarDateLayout is the textual form accepted by ParseSolar.
const SolarDateLayout = "2006-01-02"

const oneDay = 24 * time.Hour

// SolarDate is a Gregorian calendar date.
type SolarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// LunarDate is a date in the Chinese lunar calendar.
// Month is the ordinal month; IsLeap marks the intercalary repetition of that month.
type LunarDate struct {
	Year   int  `json:"year"`
	Month  int  `json:"month"`
	Day    int  `json:"day"`
	IsLeap bool `json:"is_leap"`
}

// epoch is the first day of lunar year MinYear.
var epoch = SolarDate{Year: 1900, Month: 1, Day: 31}

var (
	// tableDays is the number of days covered by the whole table.
	tableDays = sumTableDays()

	// MinSolar and MaxSolar bound the solar dates that can be converted.
	MinSolar = epoch
	MaxSolar = epoch.addDays(tableDays - 1)
)

func sumTableDays() int {
	n := 0
	for _, r := range yearRecords {
		n += r.Days()
	}
	return n
}

// NewSolarDate builds a SolarDate from a time.Time, using its own location.
func NewSolarDate(t time.Time) SolarDate {
	y, m, d := t.Date()
	return SolarDate{Year: y, Month: int(m), Day: d}
}

// ParseSolar parses a "YYYY-MM-DD" string.
func ParseSolar(s string) (SolarDate, error) {
	t, err := time.Parse(SolarDateLayout, s)
	if err != nil {
		return SolarDate{}, fmt.Errorf("%w: %q", ErrInvalidSolarDate, s)
	}
	return NewSolarDate(t), nil
}

// Time returns midnight UTC of the date.
func (s SolarDate) Time() time.Time {
	return time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of the date in loc.
func (s SolarDate) In(loc *time.Location) time.Time {
	return time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, loc)
}

func (s SolarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", s.Year, s.Month, s.Day)
}

// Validate reports whether the date exists in the Gregorian calendar.
func (s SolarDate) Validate() error {
	if s.Month < 1 || s.Month > 12 || s.Day < 1 {
		return fmt.Errorf("%w: %s", ErrInvalidSolarDate, s)
	}
	if NewSolarDate(s.Time()) != s {
		return fmt.Errorf("%w: %s", ErrInvalidSolarDate, s)
	}
	return nil
}

// Before reports whether s is earlier than o.
func (s SolarDate) Before(o SolarDate) bool {
	return s.Time().Before(o.Time())
}

func (s SolarDate) addDays(n int) SolarDate {
	return NewSolarDate(s.Time().AddDate(0, 0, n))
}

// daysSince returns the signed number of days from o to s.
func (s SolarDate) daysSince(o SolarDate) int {
	return int(s.Time().Sub(o.Time()) / oneDay)
}

// ParseLunar parses the form produced by LunarDate.String: "YYYY-MM-DD", with
// an "L" before the month for a leap month ("2023-L02-15"). Only the syntax is
// checked; use ValidLunar to check the date exists.
func ParseLunar(s string) (LunarDate, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return LunarDate{}, fmt.Errorf("%w: %q", ErrInvalidLunarDate, s)
	}

	var l LunarDate
	month, isLeap := strings.CutPrefix(parts[1], "L")
	l.IsLeap = isLeap

	var err error
	if l.Year, err = strconv.Atoi(parts[0]); err != nil {
		return LunarDate{}, fmt.Errorf("%w: %q", ErrInvalidLunarDate, s)
	}
	if l.Month, err = strconv.Atoi(month); err != nil {
		return LunarDate{}, fmt.Errorf("%w: %q", ErrInvalidLunarDate, s)
	}
	if l.Day, err = strconv.Atoi(parts[2]); err != nil {
		return LunarDate{}, fmt.Errorf("%w: %q", ErrInvalidLunarDate, s)
	}
	return l, nil
}

func (l LunarDate) String() string {
	if l.IsLeap {
		return fmt.Sprintf("%04d-L%02d-%02d", l.Year, l.Month, l.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", l.Year, l.Month, l.Day)
}
