package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

// uidSpace namespaces every UID this program emits.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// stableUID derives a name-based UUID so a feed refresh never duplicates events.
func stableUID(kind, key string) string {
	return uuid.NewSHA1(uidSpace, []byte(fmt.Sprintf(config.FormatHashInput, kind, key))).String()
}

func eventUID(base string, year int) string {
	return fmt.Sprintf(config.FormatUID, base, year, config.ICalDomain)
}

func recurringUID(base string) string {
	return fmt.Sprintf(config.FormatRecurringUID, base, config.ICalDomain)
}

// contactEvents converts one card into its entry and the events for the
// previous, current and next lunar years. ok is false when the card is skipped.
func (g *Generator) contactEvents(card vcard.Card, todayLunar lunar.LunarDate, today lunar.SolarDate, loc *time.Location, trigger string) (BirthdayEntry, []*ical.Event, bool, bool) {
	bday := card.Get(config.VCardBDAY)
	if bday == nil || bday.Value == "" {
		return BirthdayEntry{}, nil, false, false
	}

	birthDate, yearKnown, err := parseDate(bday.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, bday.Value)
		return BirthdayEntry{}, nil, false, false
	}
	if !yearKnown {
		slog.Debug(config.MsgSkippedYear,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, bday.Value)
		return BirthdayEntry{}, nil, false, false
	}

	birth, err := lunar.SolarToLunar(lunar.NewSolarDate(birthDate))
	if err != nil {
		slog.Debug(config.MsgSkippedRange,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, bday.Value,
			config.LogKeyError, err)
		return BirthdayEntry{}, nil, false, false
	}

	// Name Strategy: FN (Formatted) > N (Structured) > Fallback
	name := config.FallbackName
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		name = fn.Value
	} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		name = n.Value
	}

	base := stableUID(config.CategoryBirthday, fmt.Sprintf(config.FormatHashInput, name, birthDate.Format(config.DateFormatFullDash)))
	entry := BirthdayEntry{
		UID:         base,
		Name:        name,
		DateOfBirth: birthDate,
		LunarBirth:  birth,
	}
	if next, age, ok := nextOccurrence(birth, today, todayLunar.Year); ok {
		entry.NextOccurrence = next.In(loc)
		entry.AgeNext = age
	}

	var events []*ical.Event
	isToday := false
	for _, y := range []int{todayLunar.Year - 1, todayLunar.Year, todayLunar.Year + 1} {
		// Not born yet, or past the table.
		if y < birth.Year || y > lunar.MaxYear {
			continue
		}
		date, err := projectBirthday(birth, y)
		if err != nil {
			continue
		}
		if date == today {
			isToday = true
		}

		summary := g.summaries().Birthday(name, y-birth.Year, true)
		e := newAllDayEvent(eventUID(base, y), summary, date, loc, config.CategoryBirthday)
		if l, err := lunar.SolarToLunar(date); err == nil {
			e.Props.SetText(config.PropDescription, l.Caption())
		}
		if trigger != "" {
			addAlarm(e, trigger, summary)
		}
		events = append(events, e)
	}

	return entry, events, isToday, true
}

// festivalEvents emits lunar festivals for three lunar years and one yearly
// recurring event per solar festival.
func (g *Generator) festivalEvents(lunarYear int, now time.Time) ([]*ical.Event, error) {
	loc := now.Location()
	var events []*ical.Event

	for y := lunarYear - 1; y <= lunarYear+1; y++ {
		if y < lunar.MinYear || y > lunar.MaxYear {
			continue
		}
		dates, err := lunar.LunarFestivalDates(y)
		if err != nil {
			return nil, err
		}
		for _, fd := range dates {
			summary := g.summaries().Festival(fd.Name, lunar.YearGanZhi(y))
			e := newAllDayEvent(eventUID(stableUID(config.CategoryFestival, fd.Name), y), summary, fd.Date, loc, config.CategoryFestival)
			e.Props.SetText(config.PropTransp, config.ICalTransp)
			events = append(events, e)
		}
	}

	first := now.Year() - 1
	for _, f := range lunar.SolarFestivals {
		start := lunar.SolarDate{Year: first, Month: f.Month, Day: f.Day}
		rule, err := yearlyRule(start.In(loc))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrRRule, err)
		}

		e := newAllDayEvent(recurringUID(stableUID(config.CategoryFestival, f.Name)), f.Name, start, loc, config.CategoryFestival)
		e.Props.SetText(config.PropTransp, config.ICalTransp)

		// Set manually to avoid a VALUE=TEXT parameter.
		rr := ical.NewProp(config.PropRRule)
		rr.Value = rule
		e.Props.Set(rr)
		events = append(events, e)
	}
	return events, nil
}

// yearlyRule renders the RRULE value repeating dtstart's month and day every year.
func yearlyRule(dtstart time.Time) (string, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Dtstart:    dtstart,
		Bymonth:    []int{int(dtstart.Month())},
		Bymonthday: []int{dtstart.Day()},
	})
	if err != nil {
		return "", err
	}
	return r.OrigOptions.RRuleString(), nil
}

// termEvents emits the 24 solar terms of the previous, current and next
// Gregorian years.
func (g *Generator) termEvents(now time.Time) []*ical.Event {
	loc := now.Location()
	var events []*ical.Event
	for y := now.Year() - 1; y <= now.Year()+1; y++ {
		terms, err := lunar.SolarTerms(y)
		if err != nil {
			continue
		}
		for _, t := range terms {
			e := newAllDayEvent(eventUID(stableUID(config.CategoryTerm, t.Name), y), g.summaries().Term(t.Name), t.Date, loc, config.CategoryTerm)
			e.Props.SetText(config.PropTransp, config.ICalTransp)
			events = append(events, e)
		}
	}
	return events
}

func newAllDayEvent(uid, summary string, date lunar.SolarDate, loc *time.Location, category string) *ical.Event {
	e := ical.NewEvent()
	e.Props.SetText(config.PropUID, uid)
	e.Props.SetText(config.PropSummary, summary)
	e.Props.SetText(config.PropCategories, category)

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(date.In(loc))
	e.Props.Set(start)
	return e
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// fallbackSummaries renders untranslated titles.
type fallbackSummaries struct{}

func (fallbackSummaries) Birthday(name string, age int, yearKnown bool) string {
	switch {
	case !yearKnown:
		return fmt.Sprintf(config.FallbackSummary, name)
	case age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	default:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}

func (fallbackSummaries) Festival(name, yearGanZhi string) string {
	return fmt.Sprintf(config.FallbackFestival, name, yearGanZhi)
}

func (fallbackSummaries) Term(name string) string {
	return name
}
