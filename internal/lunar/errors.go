package lunar

import "errors"

var (
	// ErrOutOfRange reports a year or date outside the calendar table.
	ErrOutOfRange = errors.New("lunar: date outside supported range")

	// ErrInvalidLeapMonth reports a leap month that the year does not have.
	ErrInvalidLeapMonth = errors.New("lunar: no such leap month")

	// ErrInvalidDay reports a day number larger than the month occurrence.
	ErrInvalidDay = errors.New("lunar: day exceeds month length")

	ErrInvalidMonth     = errors.New("lunar: month must be between 1 and 12")
	ErrInvalidSolarDate = errors.New("lunar: invalid gregorian date")
	ErrInvalidLunarDate = errors.New("lunar: malformed lunar date")
	ErrInvalidTerm      = errors.New("lunar: solar term index must be between 0 and 23")
)
