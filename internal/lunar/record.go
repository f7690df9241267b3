package lunar

import "fmt"

// Supported lunar years. The table covers MinYear through MaxYear inclusive.
const (
	MinYear = 1900
	MaxYear = 2050
)

const (
	leapIndexMask = 0xf     // bits 0-3: which month is doubled, 0 = none
	leapLongBit   = 0x10000 // bit 16: the leap month has 30 days
	monthBitBase  = 0x10000 // month m is flagged at monthBitBase >> m

	shortMonth = 29
	longMonth  = 30
)

// YearRecord is the packed encoding of one lunar year.
//
// Bits 0-3 hold the leap month index, bits 4-15 the length of months 12..1
// (set = 30 days) and bit 16 the length of the leap month.
type YearRecord uint32

// LeapMonth returns the ordinal of the doubled month, or 0 when there is none.
func (r YearRecord) LeapMonth() int {
	return int(r & leapIndexMask)
}

// MonthDays returns the length of the regular month m (1..12).
func (r YearRecord) MonthDays(m int) int {
	if r&(monthBitBase>>uint(m)) != 0 {
		return longMonth
	}
	return shortMonth
}

// LeapDays returns the length of the leap month, or 0 when the year has none.
func (r YearRecord) LeapDays() int {
	if r.LeapMonth() == 0 {
		return 0
	}
	if r&leapLongBit != 0 {
		return longMonth
	}
	return shortMonth
}

// Days returns the total length of the lunar year.
func (r YearRecord) Days() int {
	sum := 0
	for m := 1; m <= 12; m++ {
		sum += r.MonthDays(m)
	}
	return sum + r.LeapDays()
}

// Record returns the table entry for a lunar year.
func Record(year int) (YearRecord, error) {
	if year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: lunar year %d not in [%d, %d]", ErrOutOfRange, year, MinYear, MaxYear)
	}
	return yearRecords[year-MinYear], nil
}

// LeapMonth returns which month is doubled in year, 0 if none.
func LeapMonth(year int) (int, error) {
	r, err := Record(year)
	if err != nil {
		return 0, err
	}
	return r.LeapMonth(), nil
}

// MonthDays returns the number of days (29 or 30) in the regular month of a lunar year.
func MonthDays(year, month int) (int, error) {
	r, err := Record(year)
	if err != nil {
		return 0, err
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return r.MonthDays(month), nil
}

// LeapDays returns the length of the leap month of year, 0 if the year has none.
func LeapDays(year int) (int, error) {
	r, err := Record(year)
	if err != nil {
		return 0, err
	}
	return r.LeapDays(), nil
}

// YearDays returns the number of days in a lunar year, leap month included.
func YearDays(year int) (int, error) {
	r, err := Record(year)
	if err != nil {
		return 0, err
	}
	return r.Days(), nil
}
