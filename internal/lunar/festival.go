package lunar

import "fmt"

// FestivalKind tells which calendar a festival is fixed in.
type FestivalKind string

const (
	KindSolar FestivalKind = "solar"
	KindLunar FestivalKind = "lunar"
)

// Festival is a named day fixed in either the solar or the lunar calendar.
type Festival struct {
	Name    string       `json:"name"`
	Kind    FestivalKind `json:"kind"`
	Month   int          `json:"month"`
	Day     int          `json:"day"` // 0 on a lunar festival means the last day of the month
	Holiday bool         `json:"holiday"`
}

// SolarFestivals are fixed Gregorian observances.
var SolarFestivals = []Festival{
	{Name: "元旦", Kind: KindSolar, Month: 1, Day: 1, Holiday: true},
	{Name: "情人节", Kind: KindSolar, Month: 2, Day: 14},
	{Name: "妇女节", Kind: KindSolar, Month: 3, Day: 8},
	{Name: "植树节", Kind: KindSolar, Month: 3, Day: 12},
	{Name: "消费者权益日", Kind: KindSolar, Month: 3, Day: 15},
	{Name: "愚人节", Kind: KindSolar, Month: 4, Day: 1},
	{Name: "劳动节", Kind: KindSolar, Month: 5, Day: 1},
	{Name: "青年节", Kind: KindSolar, Month: 5, Day: 4},
	{Name: "护士节", Kind: KindSolar, Month: 5, Day: 12},
	{Name: "儿童节", Kind: KindSolar, Month: 6, Day: 1},
	{Name: "建党节", Kind: KindSolar, Month: 7, Day: 1},
	{Name: "建军节", Kind: KindSolar, Month: 8, Day: 1},
	{Name: "教师节", Kind: KindSolar, Month: 9, Day: 10},
	{Name: "孔子诞辰", Kind: KindSolar, Month: 9, Day: 28},
	{Name: "国庆节", Kind: KindSolar, Month: 10, Day: 1, Holiday: true},
	{Name: "老人节", Kind: KindSolar, Month: 10, Day: 6},
	{Name: "联合国日", Kind: KindSolar, Month: 10, Day: 24},
	{Name: "平安夜", Kind: KindSolar, Month: 12, Day: 24},
	{Name: "圣诞节", Kind: KindSolar, Month: 12, Day: 25},
}

// LunarFestivals are fixed in the regular (non-leap) lunar months.
var LunarFestivals = []Festival{
	{Name: "春节", Kind: KindLunar, Month: 1, Day: 1, Holiday: true},
	{Name: "元宵节", Kind: KindLunar, Month: 1, Day: 15},
	{Name: "端午节", Kind: KindLunar, Month: 5, Day: 5},
	{Name: "七夕", Kind: KindLunar, Month: 7, Day: 7},
	{Name: "中元节", Kind: KindLunar, Month: 7, Day: 15},
	{Name: "中秋节", Kind: KindLunar, Month: 8, Day: 15},
	{Name: "重阳节", Kind: KindLunar, Month: 9, Day: 9},
	{Name: "腊八节", Kind: KindLunar, Month: 12, Day: 8},
	{Name: "小年", Kind: KindLunar, Month: 12, Day: 24},
	{Name: "除夕", Kind: KindLunar, Month: 12, Day: 0, Holiday: true},
}

// FestivalDate is a festival resolved to a Gregorian day.
type FestivalDate struct {
	Festival
	Date SolarDate `json:"date"`
}

// LunarFestivalDates resolves every lunar festival of a lunar year.
func LunarFestivalDates(year int) ([]FestivalDate, error) {
	out := make([]FestivalDate, 0, len(LunarFestivals))
	for _, f := range LunarFestivals {
		d := f.Day
		if d == 0 {
			n, err := MonthDays(year, f.Month)
			if err != nil {
				return nil, err
			}
			d = n
		}
		s, err := LunarToSolar(LunarDate{Year: year, Month: f.Month, Day: d})
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f.Name, err)
		}
		out = append(out, FestivalDate{Festival: f, Date: s})
	}
	return out, nil
}

// FestivalsOn returns the solar and lunar festivals falling on s.
func FestivalsOn(s SolarDate) ([]Festival, error) {
	l, err := SolarToLunar(s)
	if err != nil {
		return nil, err
	}
	var out []Festival
	for _, f := range SolarFestivals {
		if f.Month == s.Month && f.Day == s.Day {
			out = append(out, f)
		}
	}
	if l.IsLeap {
		return out, nil
	}
	for _, f := range LunarFestivals {
		if f.Month != l.Month {
			continue
		}
		d := f.Day
		if d == 0 {
			if d, err = MonthDays(l.Year, l.Month); err != nil {
				return nil, err
			}
		}
		if d == l.Day {
			out = append(out, f)
		}
	}
	return out, nil
}
