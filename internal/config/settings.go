package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// Reminder configures the VALARM attached to generated events.
type Reminder struct {
	Enabled   bool   `yaml:"enabled"`
	Value     int    `yaml:"value"`
	Unit      string `yaml:"unit"`      // UnitDays, UnitHours or UnitMinutes
	Direction string `yaml:"direction"` // DirBefore or DirAfter
}

// Settings is the persisted user configuration.
// The CardDAV password is never written here; it lives in the OS keyring.
type Settings struct {
	SourceMode      string   `yaml:"source_mode"`
	LocalPath       string   `yaml:"local_path,omitempty"`
	WebURL          string   `yaml:"carddav_url,omitempty"`
	Username        string   `yaml:"username,omitempty"`
	Language        string   `yaml:"language"`
	RefreshInterval int      `yaml:"refresh_interval_min"`
	ServerPort      string   `yaml:"server_port"`
	Festivals       bool     `yaml:"festivals"`
	SolarTerms      bool     `yaml:"solar_terms"`
	Reminder        Reminder `yaml:"reminder"`
}

// DefaultSettings returns a festival-only configuration.
func DefaultSettings() *Settings {
	return &Settings{
		SourceMode:      SourceModeNone,
		Language:        DefaultLanguage,
		RefreshInterval: DefaultRefreshMin,
		ServerPort:      DefaultPort,
		Festivals:       true,
		SolarTerms:      true,
		Reminder: Reminder{
			Value:     DefaultReminderValue,
			Unit:      UnitDays,
			Direction: DirBefore,
		},
	}
}

// SettingsPath returns the platform-specific location of the settings file.
func SettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, SettingsFileName), nil
}

// LoadSettings reads the YAML file at path on top of the defaults.
// A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	slog.Debug(MsgSettingsLoaded,
		LogKeyComponent, CompSettings,
		LogKeyPath, path,
		LogKeyMode, s.SourceMode,
	)
	return s, nil
}

// Save atomically writes the settings to path with owner-only permissions.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}

	// Write then rename, so a watcher never reads a half-written file.
	tmp, err := os.CreateTemp(filepath.Dir(path), SettingsFileName+".*")
	if err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := tmp.Chmod(FilePermUserRW); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsWrite, err)
	}
	return nil
}

// Validate checks every field that would otherwise fail later at runtime.
func (s *Settings) Validate() error {
	switch s.SourceMode {
	case SourceModeLocal, SourceModeWeb, SourceModeNone:
	default:
		return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrModeUnsupport, s.SourceMode)
	}
	if err := ValidatePort(s.ServerPort); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	if s.RefreshInterval <= 0 {
		return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrIntervalRange)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrLanguage, s.Language)
	}
	if s.Reminder.Enabled {
		switch s.Reminder.Unit {
		case UnitDays, UnitHours, UnitMinutes:
		default:
			return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrReminderUnit, s.Reminder.Unit)
		}
		if s.Reminder.Direction != DirBefore && s.Reminder.Direction != DirAfter {
			return fmt.Errorf("%s: %s: %q", ErrSettingsInvalid, ErrReminderDir, s.Reminder.Direction)
		}
		if s.Reminder.Value < 1 || s.Reminder.Value > MaxReminderVal {
			return fmt.Errorf("%s: %s", ErrSettingsInvalid, ErrReminderValue)
		}
	}
	return nil
}

// ValidatePort checks that p is a usable TCP port.
func ValidatePort(p string) error {
	if p == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if port < MinPort || port > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// ReminderTrigger renders the reminder as an ISO 8601 duration ("-P1D", "PT2H"),
// or "" when reminders are disabled.
func (s *Settings) ReminderTrigger() string {
	r := s.Reminder
	if !r.Enabled {
		return ""
	}

	sign := ISOPeriodPrefix
	if r.Direction == DirBefore {
		sign = ISONegativePrefix
	}

	switch r.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, r.Value, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, r.Value, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, r.Value, ISODay)
	}
}

// Password reads the CardDAV password for the configured user from the OS keyring.
func (s *Settings) Password() (string, error) {
	if s.Username == "" {
		return "", nil
	}
	p, err := keyring.Get(KeyringService, s.Username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%s %q: %w", ErrPasswordNotFound, s.Username, err)
		}
		return "", err
	}
	return p, nil
}

// StorePassword saves the CardDAV password for the configured user in the OS keyring.
func (s *Settings) StorePassword(password string) error {
	return keyring.Set(KeyringService, s.Username, password)
}
