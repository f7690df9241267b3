package lunar

// DayInfo gathers every calendar attribute of one Gregorian day.
type DayInfo struct {
	Solar         SolarDate  `json:"solar"`
	Lunar         LunarDate  `json:"lunar"`
	Caption       string     `json:"caption"`
	YearGanZhi    string     `json:"year_ganzhi"`
	MonthGanZhi   string     `json:"month_ganzhi"`
	DayGanZhi     string     `json:"day_ganzhi"`
	Zodiac        string     `json:"zodiac"`
	Constellation string     `json:"constellation"`
	Term          string     `json:"term,omitempty"`
	Festivals     []Festival `json:"festivals,omitempty"`
}

// Describe converts s and derives its names, term and festivals.
func Describe(s SolarDate) (DayInfo, error) {
	l, err := SolarToLunar(s)
	if err != nil {
		return DayInfo{}, err
	}
	sign, err := Constellation(s.Month, s.Day)
	if err != nil {
		return DayInfo{}, err
	}
	fests, err := FestivalsOn(s)
	if err != nil {
		return DayInfo{}, err
	}

	info := DayInfo{
		Solar:         s,
		Lunar:         l,
		Caption:       l.Caption(),
		YearGanZhi:    YearGanZhi(l.Year),
		MonthGanZhi:   MonthGanZhi(l.Year, l.Month),
		DayGanZhi:     DayGanZhi(s),
		Zodiac:        Zodiac(l.Year),
		Constellation: sign,
		Festivals:     fests,
	}
	if t, ok := TermOn(s); ok {
		info.Term = t.Name
	}
	return info, nil
}

// YearInfo summarizes one lunar year.
type YearInfo struct {
	Year      int            `json:"year"`
	GanZhi    string         `json:"ganzhi"`
	Zodiac    string         `json:"zodiac"`
	LeapMonth int            `json:"leap_month"`
	Days      int            `json:"days"`
	Start     SolarDate      `json:"start"`
	Months    []MonthSpan    `json:"months"`
	Festivals []FestivalDate `json:"festivals"`
}

// DescribeYear returns the layout and festivals of a lunar year.
func DescribeYear(year int) (YearInfo, error) {
	r, err := Record(year)
	if err != nil {
		return YearInfo{}, err
	}
	months, err := LunarMonths(year)
	if err != nil {
		return YearInfo{}, err
	}
	start, err := LunarToSolar(LunarDate{Year: year, Month: 1, Day: 1})
	if err != nil {
		return YearInfo{}, err
	}
	fests, err := LunarFestivalDates(year)
	if err != nil {
		return YearInfo{}, err
	}
	return YearInfo{
		Year:      year,
		GanZhi:    YearGanZhi(year),
		Zodiac:    Zodiac(year),
		LeapMonth: r.LeapMonth(),
		Days:      r.Days(),
		Start:     start,
		Months:    months,
		Festivals: fests,
	}, nil
}
