// Package daemon keeps the published lunar calendar fresh: it syncs on a
// schedule, follows edits to the settings file and supervises the HTTP server.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"golang.org/x/sync/errgroup"
)

// Server is the part of server.CalendarServer the daemon drives.
type Server interface {
	Start(ctx context.Context) error
	Publish(data []byte, contacts []engine.BirthdayEntry)
}

// Daemon owns the sync schedule and the current settings.
type Daemon struct {
	Clock      engine.Clock
	Fetcher    engine.VCardFetcher
	Translator *i18n.Translator

	path   string
	server Server

	mu       sync.Mutex
	settings *config.Settings
	lang     string
	cron     *cron.Cron
	entry    cron.EntryID
	schedule string
}

// New loads the settings at path and prepares a daemon publishing into srv.
// srv may be nil when only Generate is used.
func New(path string, srv Server, fetcher engine.VCardFetcher, tr *i18n.Translator) (*Daemon, error) {
	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, err
	}
	tr.SetLanguage(s.Language)

	return &Daemon{
		Clock:      engine.RealClock{},
		Fetcher:    fetcher,
		Translator: tr,
		path:       filepath.Clean(path),
		server:     srv,
		settings:   s,
		cron: cron.New(
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
		),
	}, nil
}

// ScheduleSpec returns the cron spec for a refresh interval in minutes.
func ScheduleSpec(minutes int) string {
	if minutes <= 0 {
		minutes = config.DefaultRefreshMin
	}
	return fmt.Sprintf(config.FormatSchedule, minutes)
}

// Settings returns the settings currently in effect.
func (d *Daemon) Settings() config.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.settings
}

// PinLanguage fixes the feed language, overriding the settings file now and
// on every reload. An empty lang follows the settings file again.
func (d *Daemon) PinLanguage(lang string) {
	d.mu.Lock()
	d.lang = lang
	if lang == "" {
		lang = d.settings.Language
	}
	d.mu.Unlock()
	d.Translator.SetLanguage(lang)
}

// Schedule returns the active cron spec, or "" before Run.
func (d *Daemon) Schedule() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.schedule
}

// Run syncs once, then serves, syncs on schedule and follows settings edits
// until ctx is cancelled or one of them fails.
func (d *Daemon) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	g, gctx := errgroup.WithContext(ctx)

	if err := d.reschedule(gctx); err != nil {
		return err
	}
	d.cron.Start()
	defer func() { <-d.cron.Stop().Done() }()

	log.Info(config.MsgWorkerStart, config.LogKeySchedule, d.Schedule())

	g.Go(func() error {
		return d.server.Start(gctx)
	})
	g.Go(func() error {
		_ = d.Sync(gctx, false)
		return nil
	})
	g.Go(func() error {
		return d.watch(gctx)
	})

	err := g.Wait()
	log.Info(config.MsgWorkerStop)
	return err
}

// Sync runs one generation with the current settings and publishes the result.
// On failure the previous feed stays published.
func (d *Daemon) Sync(ctx context.Context, manual bool) error {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyManual, manual,
	)

	res, err := d.Generate(ctx)
	if err != nil {
		slog.Error(config.MsgSyncFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
		return err
	}

	d.server.Publish(res.ICS, res.Contacts)
	return nil
}

// Generate builds the calendar from the current settings without publishing it.
func (d *Daemon) Generate(ctx context.Context) (*engine.SyncResult, error) {
	s := d.Settings()
	gen := &engine.Generator{
		Clock:     d.Clock,
		Fetcher:   d.Fetcher,
		Summaries: d.Translator,
	}
	return gen.RunSync(ctx, d.syncConfig(&s))
}

// syncConfig maps the settings and keyring password onto the engine input.
func (d *Daemon) syncConfig(s *config.Settings) engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:            s.SourceMode,
		LocalPath:       s.LocalPath,
		WebURL:          s.WebURL,
		WebUser:         s.Username,
		ReminderTrigger: s.ReminderTrigger(),
		Festivals:       s.Festivals,
		SolarTerms:      s.SolarTerms,
		CalendarName:    d.Translator.Msg(config.TKeyCalName),
	}

	if s.SourceMode == config.SourceModeWeb && s.Username != "" {
		p, err := s.Password()
		if err != nil {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyUser, s.Username,
				config.LogKeyError, err,
			)
		}
		cfg.WebPass = p
	}
	return cfg
}

// reschedule replaces the periodic job when the refresh interval changed.
func (d *Daemon) reschedule(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec := ScheduleSpec(d.settings.RefreshInterval)
	if spec == d.schedule {
		return nil
	}

	id, err := d.cron.AddFunc(spec, func() { _ = d.Sync(ctx, false) })
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSchedule, err)
	}
	if d.entry != 0 {
		d.cron.Remove(d.entry)
		slog.Info(config.MsgUpdateSync,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyOld, d.schedule,
			config.LogKeyNew, spec,
		)
	}
	d.entry = id
	d.schedule = spec
	return nil
}

// watch follows the settings file. The directory is watched rather than the
// file so that editors replacing it atomically are seen too.
func (d *Daemon) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(d.path)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWatcher, err)
	}
	slog.Debug(config.MsgWatcherStart,
		config.LogKeyComponent, config.CompSettings,
		config.LogKeyPath, d.path,
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != d.path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if d.reload(ctx) {
				_ = d.Sync(ctx, false)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn(config.ErrWatcher,
				config.LogKeyComponent, config.CompSettings,
				config.LogKeyError, err,
			)
		}
	}
}

// reload re-reads the settings file. Invalid or half-written files are
// rejected and the previous settings stay in effect.
func (d *Daemon) reload(ctx context.Context) bool {
	log := slog.With(config.LogKeyComponent, config.CompSettings, config.LogKeyPath, d.path)
	log.Info(config.MsgSettingsReload)

	s, err := config.LoadSettings(d.path)
	if err != nil {
		log.Warn(config.MsgReloadRejected, config.LogKeyError, err)
		return false
	}

	d.mu.Lock()
	old := d.settings
	d.settings = s
	lang := d.lang
	d.mu.Unlock()

	if s.ServerPort != old.ServerPort {
		log.Warn(config.MsgPortChanged, config.LogKeyOld, old.ServerPort, config.LogKeyNew, s.ServerPort)
	}
	if lang == "" {
		d.Translator.SetLanguage(s.Language)
	}

	if err := d.reschedule(ctx); err != nil {
		log.Error(config.MsgReloadRejected, config.LogKeyError, err)
		return false
	}
	return true
}

// cronLogger routes the scheduler's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(config.MsgCronEvent,
		append([]any{config.LogKeyComponent, config.CompWorker, config.LogKeyValue, msg}, keysAndValues...)...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(config.MsgCronError,
		append([]any{config.LogKeyComponent, config.CompWorker, config.LogKeyValue, msg, config.LogKeyError, err}, keysAndValues...)...)
}
