package engine

import (
	"github.com/tartampluch/go-lunar/internal/lunar"
)

// projectBirthday finds the Gregorian date of a lunar birthday in lunar year y.
//
// A birth in a leap month is celebrated in that leap month only when year y
// repeats the same month; otherwise it falls back to the regular month.
// A day the target month does not have (the 30th of a short month) falls
// back to the month's last day.
func projectBirthday(birth lunar.LunarDate, y int) (lunar.SolarDate, error) {
	target := lunar.LunarDate{Year: y, Month: birth.Month, Day: birth.Day}

	var (
		days int
		err  error
	)
	if birth.IsLeap {
		leap, lerr := lunar.LeapMonth(y)
		if lerr != nil {
			return lunar.SolarDate{}, lerr
		}
		if leap == birth.Month {
			target.IsLeap = true
		}
	}
	if target.IsLeap {
		days, err = lunar.LeapDays(y)
	} else {
		days, err = lunar.MonthDays(y, birth.Month)
	}
	if err != nil {
		return lunar.SolarDate{}, err
	}
	target.Day = min(target.Day, days)

	return lunar.LunarToSolar(target)
}

// nextOccurrence returns the first lunar birthday on or after today, with the
// age reached that day. ok is false when it lies beyond the lunar table.
func nextOccurrence(birth lunar.LunarDate, today lunar.SolarDate, todayLunarYear int) (lunar.SolarDate, int, bool) {
	for y := max(todayLunarYear, birth.Year); y <= lunar.MaxYear; y++ {
		s, err := projectBirthday(birth, y)
		if err != nil {
			return lunar.SolarDate{}, 0, false
		}
		if !s.Before(today) {
			return s, y - birth.Year, true
		}
	}
	return lunar.SolarDate{}, 0, false
}
