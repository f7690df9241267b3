package lunar

import (
	"fmt"
	"math"
	"time"
)

// TermCount is the number of solar terms in a year.
const TermCount = 24

// tropicalYearMs is the mean tropical year length used by the approximation.
const tropicalYearMs = 31556925974.7

// termEpoch is the instant of 小寒 in 1900.
var termEpoch = time.Date(1900, time.January, 6, 2, 5, 0, 0, time.UTC)

var termNames = [TermCount]string{
	"小寒", "大寒", "立春", "雨水", "惊蛰", "春分", "清明", "谷雨",
	"立夏", "小满", "芒种", "夏至", "小暑", "大暑", "立秋", "处暑",
	"白露", "秋分", "寒露", "霜降", "立冬", "小雪", "大雪", "冬至",
}

// Term is a solar term and the day it falls on.
type Term struct {
	Index int       `json:"index"`
	Name  string    `json:"name"`
	Date  SolarDate `json:"date"`
}

// TermName returns the name of term n (0 = 小寒).
func TermName(n int) string {
	if n < 0 || n >= TermCount {
		return ""
	}
	return termNames[n]
}

// SolarTerm returns the Gregorian day of term n (0..23) in a solar year.
// Term n always falls in month n/2+1.
func SolarTerm(year, n int) (SolarDate, error) {
	if year < MinYear || year > MaxYear {
		return SolarDate{}, fmt.Errorf("%w: solar year %d", ErrOutOfRange, year)
	}
	if n < 0 || n >= TermCount {
		return SolarDate{}, fmt.Errorf("%w: %d", ErrInvalidTerm, n)
	}
	ms := tropicalYearMs*float64(year-MinYear) + float64(termMinutes[n]*60000) + float64(termEpoch.UnixMilli())
	t := time.UnixMilli(int64(math.Trunc(ms))).UTC()
	return SolarDate{Year: year, Month: n/2 + 1, Day: t.Day()}, nil
}

// SolarTerms returns all 24 terms of a solar year in order.
func SolarTerms(year int) ([]Term, error) {
	terms := make([]Term, 0, TermCount)
	for n := 0; n < TermCount; n++ {
		d, err := SolarTerm(year, n)
		if err != nil {
			return nil, err
		}
		terms = append(terms, Term{Index: n, Name: termNames[n], Date: d})
	}
	return terms, nil
}

// TermOn returns the solar term falling on s, if any.
func TermOn(s SolarDate) (Term, bool) {
	if s.Year < MinYear || s.Year > MaxYear || s.Month < 1 || s.Month > 12 {
		return Term{}, false
	}
	for n := (s.Month - 1) * 2; n < s.Month*2; n++ {
		d, err := SolarTerm(s.Year, n)
		if err == nil && d == s {
			return Term{Index: n, Name: termNames[n], Date: d}, true
		}
	}
	return Term{}, false
}
