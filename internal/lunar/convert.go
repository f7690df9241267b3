package lunar

import "fmt"

// SolarToLunar converts a Gregorian date to the lunar calendar.
//
// The date must lie between MinSolar and MaxSolar. A remainder of zero after
// consuming a year or month places the date on day 1 of the following unit.
func SolarToLunar(s SolarDate) (LunarDate, error) {
	if err := s.Validate(); err != nil {
		return LunarDate{}, err
	}
	offset := s.daysSince(epoch)
	if offset < 0 || offset >= tableDays {
		return LunarDate{}, fmt.Errorf("%w: %s not in [%s, %s]", ErrOutOfRange, s, MinSolar, MaxSolar)
	}

	year := MinYear
	for ; year <= MaxYear; year++ {
		n := yearRecords[year-MinYear].Days()
		if offset < n {
			break
		}
		offset -= n
	}

	r := yearRecords[year-MinYear]
	leap := r.LeapMonth()
	for month := 1; month <= 12; month++ {
		n := r.MonthDays(month)
		if offset < n {
			return LunarDate{Year: year, Month: month, Day: offset + 1}, nil
		}
		offset -= n

		if month == leap {
			n = r.LeapDays()
			if offset < n {
				return LunarDate{Year: year, Month: month, Day: offset + 1, IsLeap: true}, nil
			}
			offset -= n
		}
	}

	// Unreachable: the year walk stops inside a year whose months sum to its length.
	return LunarDate{}, fmt.Errorf("%w: %s", ErrOutOfRange, s)
}

// LunarToSolar converts a lunar date to the Gregorian calendar.
//
// It fails with ErrInvalidLeapMonth when IsLeap is set on a month that is not
// the leap month of the year, and with ErrInvalidDay when Day exceeds the
// length of that specific month occurrence.
func LunarToSolar(l LunarDate) (SolarDate, error) {
	r, err := Record(l.Year)
	if err != nil {
		return SolarDate{}, err
	}
	if l.Month < 1 || l.Month > 12 {
		return SolarDate{}, fmt.Errorf("%w: %d", ErrInvalidMonth, l.Month)
	}

	leap := r.LeapMonth()
	if l.IsLeap && leap != l.Month {
		return SolarDate{}, fmt.Errorf("%w: %d has no leap month %d", ErrInvalidLeapMonth, l.Year, l.Month)
	}

	length := r.MonthDays(l.Month)
	if l.IsLeap {
		length = r.LeapDays()
	}
	if l.Day < 1 || l.Day > length {
		return SolarDate{}, fmt.Errorf("%w: %s (month has %d days)", ErrInvalidDay, l, length)
	}

	offset := 0
	for y := MinYear; y < l.Year; y++ {
		offset += yearRecords[y-MinYear].Days()
	}
	for m := 1; m < l.Month; m++ {
		offset += r.MonthDays(m)
		if m == leap {
			offset += r.LeapDays()
		}
	}
	if l.IsLeap {
		// The leap occurrence follows the regular month of the same ordinal.
		offset += r.MonthDays(l.Month)
	}
	offset += l.Day - 1

	return epoch.addDays(offset), nil
}

// ValidLunar reports whether l names an existing lunar date in the supported range.
func ValidLunar(l LunarDate) error {
	_, err := LunarToSolar(l)
	return err
}

// LunarMonths lists every month occurrence of a lunar year in calendar order,
// the leap month directly after its ordinal sibling.
func LunarMonths(year int) ([]MonthSpan, error) {
	r, err := Record(year)
	if err != nil {
		return nil, err
	}
	months := make([]MonthSpan, 0, 13)
	leap := r.LeapMonth()
	for m := 1; m <= 12; m++ {
		months = append(months, MonthSpan{Month: m, Days: r.MonthDays(m)})
		if m == leap {
			months = append(months, MonthSpan{Month: m, Days: r.LeapDays(), IsLeap: true})
		}
	}
	return months, nil
}

// MonthSpan is one month occurrence within a lunar year.
type MonthSpan struct {
	Month  int  `json:"month"`
	Days   int  `json:"days"`
	IsLeap bool `json:"is_leap"`
}
