// Package engine turns an address book into a lunar calendar feed: lunar
// birthdays projected onto Gregorian dates, plus festivals and solar terms.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/lunar"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal, SourceModeWeb or SourceModeNone
	LocalPath       string // Path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
	Festivals       bool
	SolarTerms      bool
	CalendarName    string // X-WR-CALNAME; config.ICalCalName when empty
}

// Summarizer renders event titles. *i18n.Translator implements it.
type Summarizer interface {
	Birthday(name string, age int, yearKnown bool) string
	Festival(name, yearGanZhi string) string
	Term(name string) string
}

// SyncResult is the outcome of one generation run.
type SyncResult struct {
	ICS      []byte
	Contacts []BirthdayEntry
	Today    int // lunar birthdays falling on today's date
	Events   int
}

// Generator fetches contacts and builds the lunar calendar.
type Generator struct {
	Clock     Clock
	Fetcher   VCardFetcher
	Summaries Summarizer
}

type syncStats struct{ processed, withBday, skipped, today, events int }

// RunSync executes the fetch, convert and encode pipeline.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*SyncResult, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	var reader io.ReadCloser
	if cfg.Mode != config.SourceModeNone {
		r, err := g.acquireStream(ctx, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
		}
		defer func() { _ = r.Close() }()
		reader = r
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := g.generateCalendar(ctx, reader, cfg)
	if err == nil {
		log.DebugContext(ctx, config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return res, err
}

func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

func (g *Generator) summaries() Summarizer {
	if g.Summaries == nil {
		return fallbackSummaries{}
	}
	return g.Summaries
}

// generateCalendar builds the VCALENDAR. r may be nil when no contacts are read.
func (g *Generator) generateCalendar(ctx context.Context, r io.Reader, cfg SyncConfig) (*SyncResult, error) {
	now := g.Clock.Now()
	today := lunar.NewSolarDate(now)
	todayLunar, err := lunar.SolarToLunar(today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrToday, err)
	}

	calName := cfg.CalendarName
	if calName == "" {
		calName = config.ICalCalName
	}
	cal := newCalendar(calName)

	// Birthdays are decided on the local calendar date; only DTSTAMP is UTC.
	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	add := func(events []*ical.Event) {
		for _, e := range events {
			e.Props.Set(dtStamp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	var stats syncStats
	var contacts []BirthdayEntry

	if r != nil {
		decoder := vcard.NewDecoder(r)
		for {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			card, err := decoder.Decode()
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, ErrAddressBookTooLarge) {
				return nil, err
			}
			if err != nil {
				slog.Warn(config.MsgSkippedCard,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyError, err)
				// A broken card leaves the decoder at an unknown offset.
				if errors.Is(err, io.ErrUnexpectedEOF) {
					break
				}
				continue
			}
			stats.processed++

			entry, events, isToday, ok := g.contactEvents(card, todayLunar, today, now.Location(), cfg.ReminderTrigger)
			if !ok {
				stats.skipped++
				continue
			}
			stats.withBday++
			if isToday {
				stats.today++
				slog.Info(config.MsgBdayToday,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyName, entry.Name,
					config.LogKeyDOB, entry.DateOfBirth.Format(config.DateFormatFullDash),
					config.LogKeyLunarDOB, entry.LunarBirth.String())
			}
			contacts = append(contacts, entry)
			add(events)
		}
	}

	if cfg.Festivals {
		events, err := g.festivalEvents(todayLunar.Year, now)
		if err != nil {
			return nil, err
		}
		add(events)
	}
	if cfg.SolarTerms {
		add(g.termEvents(now))
	}

	SortUpcoming(contacts)
	stats.events = len(cal.Children)

	if len(cal.Children) == 0 {
		g.logSuccess(stats)
		return &SyncResult{ICS: []byte(config.StubVCalendar), Contacts: contacts}, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return &SyncResult{
		ICS:      buf.Bytes(),
		Contacts: contacts,
		Today:    stats.today,
		Events:   stats.events,
	}, nil
}

func newCalendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// X- properties have no default value type; SetText would add VALUE=TEXT.
	calName := ical.NewProp(config.PropXWRCalName)
	calName.Value = name
	cal.Props.Set(calName)

	// RFC 7986 refresh hint.
	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)
	return cal
}

func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeySkipped, stats.skipped),
			slog.Int(config.LogKeyToday, stats.today),
			slog.Int(config.LogKeyEvents, stats.events),
		),
	)
}

// parseDate reads a vCard BDAY value. yearKnown is false for "--MM-DD" forms.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return t, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
