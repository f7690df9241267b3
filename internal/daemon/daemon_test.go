package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/daemon"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"go.uber.org/goleak"
)

// fakeServer records publications and blocks in Start like the real server.
type fakeServer struct {
	mu        sync.Mutex
	published [][]byte
	contacts  []engine.BirthdayEntry
	startErr  error
}

func (f *fakeServer) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeServer) Publish(data []byte, contacts []engine.BirthdayEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, data)
	f.contacts = contacts
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeServer) last() ([]byte, []engine.BirthdayEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.published) == 0 {
		return nil, nil
	}
	return f.published[len(f.published)-1], f.contacts
}

// newDaemon writes s to a fresh settings file and builds a daemon on it.
func newDaemon(t *testing.T, s *config.Settings) (*daemon.Daemon, *fakeServer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	require.NoError(t, s.Save(path))

	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)

	srv := &fakeServer{}
	d, err := daemon.New(path, srv, nil, tr)
	require.NoError(t, err)
	d.Clock = engine.FixedClock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	return d, srv, path
}

func TestScheduleSpec(t *testing.T) {
	assert.Equal(t, "@every 60m", daemon.ScheduleSpec(60))
	assert.Equal(t, "@every 5m", daemon.ScheduleSpec(5))
	assert.Equal(t, "@every 60m", daemon.ScheduleSpec(0), "non-positive intervals use the default")
}

func TestNew_InvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("source_mode: ftp\n"), config.FilePermUserRW))

	tr, err := i18n.New(config.DefaultLanguage)
	require.NoError(t, err)

	_, err = daemon.New(path, &fakeServer{}, nil, tr)
	assert.ErrorContains(t, err, config.ErrSettingsInvalid)
}

func TestNew_AppliesLanguage(t *testing.T) {
	s := config.DefaultSettings()
	s.Language = "zh"
	d, _, _ := newDaemon(t, s)
	assert.Equal(t, "zh", d.Translator.Language())
}

func TestPinLanguage_SurvivesReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := config.DefaultSettings()
	s.Language = "en"
	d, srv, path := newDaemon(t, s)
	d.PinLanguage("zh")
	assert.Equal(t, "zh", d.Translator.Language())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.count() > 0 },
		5*time.Second, 20*time.Millisecond)

	s.RefreshInterval = 7
	require.Eventually(t, func() bool {
		_ = s.Save(path)
		return d.Schedule() == "@every 7m"
	}, 5*time.Second, 50*time.Millisecond, "schedule was not rebuilt")
	assert.Equal(t, "zh", d.Translator.Language(), "a pinned language ignores the settings file")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	d.PinLanguage("")
	assert.Equal(t, "en", d.Translator.Language())
}

func TestSync_FestivalsOnly(t *testing.T) {
	s := config.DefaultSettings()
	s.Language = "zh"
	d, srv, _ := newDaemon(t, s)

	require.NoError(t, d.Sync(context.Background(), true))
	require.Equal(t, 1, srv.count())

	ics, contacts := srv.last()
	assert.Contains(t, string(ics), "X-WR-CALNAME:农历")
	assert.Contains(t, string(ics), "中秋")
	assert.Contains(t, string(ics), "立春")
	assert.Empty(t, contacts)
}

func TestSync_LocalContacts(t *testing.T) {
	dir := t.TempDir()
	vcf := filepath.Join(dir, "contacts.vcf")
	require.NoError(t, os.WriteFile(vcf,
		[]byte("BEGIN:VCARD\nVERSION:3.0\nFN:John Doe\nBDAY:1990-06-15\nEND:VCARD\n"),
		config.FilePermUserRW))

	s := config.DefaultSettings()
	s.SourceMode = config.SourceModeLocal
	s.LocalPath = vcf
	s.Festivals = false
	s.SolarTerms = false
	d, srv, _ := newDaemon(t, s)

	require.NoError(t, d.Sync(context.Background(), false))

	ics, contacts := srv.last()
	require.Len(t, contacts, 1)
	assert.Equal(t, "John Doe", contacts[0].Name)
	assert.Equal(t, time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), contacts[0].NextOccurrence.UTC())
	assert.Contains(t, string(ics), "John Doe")
}

func TestSync_FailureKeepsPreviousFeed(t *testing.T) {
	s := config.DefaultSettings()
	s.SourceMode = config.SourceModeLocal
	s.LocalPath = filepath.Join(t.TempDir(), "missing.vcf")
	d, srv, _ := newDaemon(t, s)

	err := d.Sync(context.Background(), true)
	assert.Error(t, err)
	assert.Zero(t, srv.count(), "nothing is published when the sync fails")
}

func TestRun_StopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	d, srv, _ := newDaemon(t, config.DefaultSettings())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.count() > 0 },
		5*time.Second, 20*time.Millisecond, "initial sync was not published")
	assert.Equal(t, daemon.ScheduleSpec(config.DefaultRefreshMin), d.Schedule())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestRun_ServerFailureStopsDaemon(t *testing.T) {
	defer goleak.VerifyNone(t)

	d, srv, _ := newDaemon(t, config.DefaultSettings())
	srv.startErr = errors.New("address already in use")

	err := d.Run(context.Background())
	assert.EqualError(t, err, "address already in use")
}

func TestRun_ReloadsSettings(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := config.DefaultSettings()
	d, srv, path := newDaemon(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return srv.count() > 0 },
		5*time.Second, 20*time.Millisecond)

	// The watcher may not be registered yet, so keep rewriting until the
	// change is picked up.
	s.Language = "zh"
	s.RefreshInterval = 5
	require.Eventually(t, func() bool {
		_ = s.Save(path)
		return d.Schedule() == "@every 5m"
	}, 5*time.Second, 50*time.Millisecond, "schedule was not rebuilt")

	assert.Equal(t, "zh", d.Translator.Language())
	assert.Equal(t, 5, d.Settings().RefreshInterval)

	require.Eventually(t, func() bool {
		ics, _ := srv.last()
		return strings.Contains(string(ics), "X-WR-CALNAME:农历")
	}, 5*time.Second, 20*time.Millisecond, "feed was not regenerated in the new language")

	// A broken file is ignored.
	broken := *s
	broken.RefreshInterval = -1
	require.NoError(t, broken.Save(path))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "@every 5m", d.Schedule())
	assert.Equal(t, 5, d.Settings().RefreshInterval)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
