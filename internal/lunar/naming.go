package lunar

import "fmt"

var (
	stems    = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
	branches = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
	animals  = [12]string{"鼠", "牛", "虎", "兔", "龙", "蛇", "马", "羊", "猴", "鸡", "狗", "猪"}

	// constellations starts and ends with Capricorn so that month-1 (+1 past
	// the cut-off day) always indexes the sign.
	constellations = [13]string{
		"摩羯", "水瓶", "双鱼", "白羊", "金牛", "双子",
		"巨蟹", "狮子", "处女", "天秤", "天蝎", "射手", "摩羯",
	}
	constellationCutoff = [12]int{20, 19, 21, 21, 21, 22, 23, 23, 23, 23, 22, 22}
	maxMonthDays        = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

	monthNames = [13]string{"", "正", "二", "三", "四", "五", "六", "七", "八", "九", "十", "冬", "腊"}
	digits     = [11]string{"日", "一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}
	tens       = [4]string{"初", "十", "廿", "卅"}
)

// Reference points of the sexagenary counters.
const (
	yearCycleBase  = 1864 // 甲子 year
	monthCycleBase = 13   // lunar 1900 month 1 is 戊寅 (14)
	dayCycleBase   = 40   // the epoch day is 甲辰 (40)
	zodiacBase     = 4
)

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// Cyclical returns the stem-branch name of position n in the sexagenary cycle, 0 = 甲子.
func Cyclical(n int) string {
	return stems[mod(n, 10)] + branches[mod(n, 12)]
}

// YearGanZhi returns the stem-branch name of a lunar year.
func YearGanZhi(year int) string {
	return Cyclical(year - yearCycleBase)
}

// MonthGanZhi returns the stem-branch name of a lunar month.
// A leap month shares the name of its ordinal month.
func MonthGanZhi(year, month int) string {
	return Cyclical((year-MinYear)*12 + month + monthCycleBase)
}

// DayGanZhi returns the stem-branch name of a Gregorian day.
func DayGanZhi(s SolarDate) string {
	return Cyclical(s.daysSince(epoch) + dayCycleBase)
}

// Zodiac returns the animal of a year.
func Zodiac(year int) string {
	return animals[mod(year-zodiacBase, 12)]
}

// Constellation returns the Western zodiac sign of a Gregorian month and day.
func Constellation(month, day int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	// February allows the 29th; the sign does not depend on the year.
	if day < 1 || day > maxMonthDays[month-1] {
		return "", fmt.Errorf("%w: %02d-%02d", ErrInvalidSolarDate, month, day)
	}
	i := month - 1
	if day >= constellationCutoff[i] {
		i++
	}
	return constellations[i], nil
}

// MonthName returns the traditional month name, e.g. 正月 or 腊月.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month] + "月"
}

// DayName returns the traditional day name, e.g. 初一, 十五, 廿三.
func DayName(d int) string {
	switch d {
	case 10:
		return "初十"
	case 20:
		return "二十"
	case 30:
		return "三十"
	}
	if d < 1 || d > 30 {
		return ""
	}
	return tens[d/10] + digits[d%10]
}

// Caption renders the date the way date widgets show it, e.g. 农历闰二月初一.
func (l LunarDate) Caption() string {
	prefix := "农历"
	if l.IsLeap {
		prefix += "闰"
	}
	return prefix + MonthName(l.Month) + DayName(l.Day)
}

// ShortCaption is the day name, or the month name on the first day of a month.
func (l LunarDate) ShortCaption() string {
	if l.Day == 1 {
		if l.IsLeap {
			return "闰" + MonthName(l.Month)
		}
		return MonthName(l.Month)
	}
	return DayName(l.Day)
}
