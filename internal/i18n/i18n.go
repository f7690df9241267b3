// Package i18n loads the embedded locale files and renders localized event
// summaries and labels.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lunar/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator wraps a go-i18n bundle with a swappable active language.
// It is safe for concurrent use.
type Translator struct {
	bundle    *goi18n.Bundle
	languages []string

	mu        sync.RWMutex
	lang      string
	localizer *goi18n.Localizer
}

// New loads every embedded locale and activates lang.
func New(lang string) (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if code == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code,
			config.LogKeyFile, name,
		)
	}

	t := &Translator{bundle: bundle, languages: detected}
	t.SetLanguage(lang)
	return t, nil
}

// Languages lists the locale codes found in the embedded files.
func (t *Translator) Languages() []string {
	return t.languages
}

// Language returns the active locale code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLanguage switches the active locale. Unknown codes fall back to English.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	loc := goi18n.NewLocalizer(t.bundle, lang)

	t.mu.Lock()
	t.lang = lang
	t.localizer = loc
	t.mu.Unlock()
}

// Msg translates key, returning the key itself when it is missing.
func (t *Translator) Msg(key string) string {
	msg, err := t.localize(key, nil)
	if err != nil {
		return key
	}
	return msg
}

func (t *Translator) localize(key string, data map[string]any) (string, error) {
	if t == nil {
		return "", fmt.Errorf("%s", config.ErrLocNotInit)
	}
	t.mu.RLock()
	loc := t.localizer
	t.mu.RUnlock()

	msg, err := loc.Localize(&goi18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}

// Birthday renders a lunar birthday summary. Age 0 means the birth itself.
func (t *Translator) Birthday(name string, age int, yearKnown bool) string {
	var (
		msg string
		err error
	)
	switch {
	case !yearKnown:
		msg, err = t.localize(config.TKeyEvtLunarBday, map[string]any{"Name": name})
	case age == 0:
		msg, err = t.localize(config.TKeyEvtLunarBdayBirth, map[string]any{"Name": name})
	default:
		msg, err = t.localize(config.TKeyEvtLunarBdayAge, map[string]any{"Name": name, "Age": age})
	}

	if err != nil || msg == "" {
		switch {
		case !yearKnown:
			return fmt.Sprintf(config.FallbackSummary, name)
		case age == 0:
			return fmt.Sprintf(config.FallbackSummaryBirth, name)
		default:
			return fmt.Sprintf(config.FallbackSummaryAge, name, age)
		}
	}
	return msg
}

// Festival renders a festival summary tagged with the stem-branch year.
func (t *Translator) Festival(name, year string) string {
	msg, err := t.localize(config.TKeyEvtFestival, map[string]any{"Name": name, "Year": year})
	if err != nil || msg == "" {
		return fmt.Sprintf(config.FallbackFestival, name, year)
	}
	return msg
}

// Term renders a solar term summary.
func (t *Translator) Term(name string) string {
	msg, err := t.localize(config.TKeyEvtTerm, map[string]any{"Name": name})
	if err != nil || msg == "" {
		return name
	}
	return msg
}

// Weekdays returns the seven short weekday names, Sunday first.
func (t *Translator) Weekdays() []string {
	days := strings.Fields(t.Msg(config.TKeyWeekdays))
	if len(days) != 7 {
		return []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
	}
	return days
}
