package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyScanMode        = "scan.mode"
	keyScanExtractor   = "scan.extractor"
	keyScanTimeout     = "scan.document_timeout"
	keyScanSkipHidden  = "scan.skip_hidden"
	keyOutputDirectory = "output.directory"
	keyHistoryEnabled  = "history.enabled"
	keyHistoryKeep     = "history.keep"
	keyWatchCooldown   = "watch.cooldown"
)

// setting binds a config key to a field of domain.AppSettings.
type setting struct {
	format func(s *domain.AppSettings) string
	parse  func(s *domain.AppSettings, value string) error
}

var settingsTable = map[string]setting{
	keyScanMode: {
		format: func(s *domain.AppSettings) string { return s.Scan.Mode.String() },
		parse: func(s *domain.AppSettings, v string) error {
			mode, err := domain.ParseMode(v)
			s.Scan.Mode = mode
			return err
		},
	},
	keyScanExtractor: {
		format: func(s *domain.AppSettings) string { return s.Scan.Extractor.String() },
		parse: func(s *domain.AppSettings, v string) error {
			backend := domain.ExtractorBackend(strings.ToLower(strings.TrimSpace(v)))
			if !backend.IsValid() {
				return fmt.Errorf("unknown extractor %q", v)
			}
			s.Scan.Extractor = backend
			return nil
		},
	},
	keyScanTimeout: {
		format: func(s *domain.AppSettings) string { return s.Scan.DocumentTimeout.String() },
		parse: func(s *domain.AppSettings, v string) error {
			d, err := parseDuration(v)
			s.Scan.DocumentTimeout = d
			return err
		},
	},
	keyScanSkipHidden: {
		format: func(s *domain.AppSettings) string { return strconv.FormatBool(s.Scan.SkipHidden) },
		parse: func(s *domain.AppSettings, v string) (err error) {
			s.Scan.SkipHidden, err = strconv.ParseBool(v)
			return err
		},
	},
	keyOutputDirectory: {
		format: func(s *domain.AppSettings) string { return s.Output.Directory },
		parse: func(s *domain.AppSettings, v string) error {
			s.Output.Directory = strings.TrimSpace(v)
			return nil
		},
	},
	keyHistoryEnabled: {
		format: func(s *domain.AppSettings) string { return strconv.FormatBool(s.History.Enabled) },
		parse: func(s *domain.AppSettings, v string) (err error) {
			s.History.Enabled, err = strconv.ParseBool(v)
			return err
		},
	},
	keyHistoryKeep: {
		format: func(s *domain.AppSettings) string { return strconv.Itoa(s.History.Keep) },
		parse: func(s *domain.AppSettings, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			if n < 0 {
				return fmt.Errorf("must not be negative")
			}
			s.History.Keep = n
			return nil
		},
	},
	keyWatchCooldown: {
		format: func(s *domain.AppSettings) string { return s.Watch.Cooldown.String() },
		parse: func(s *domain.AppSettings, v string) error {
			d, err := parseDuration(v)
			s.Watch.Cooldown = d
			return err
		},
	},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or invalid
// values fall back to their defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Scan: domain.ScanSettings{
			Mode:            s.getMode(defaults.Scan.Mode),
			Extractor:       s.getExtractor(defaults.Scan.Extractor),
			DocumentTimeout: s.getDuration(keyScanTimeout, defaults.Scan.DocumentTimeout),
			SkipHidden:      s.getBool(keyScanSkipHidden, defaults.Scan.SkipHidden),
		},
		Output: domain.OutputSettings{
			Directory: s.getString(keyOutputDirectory, defaults.Output.Directory),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
			Keep:    s.getInt(keyHistoryKeep, defaults.History.Keep),
		},
		Watch: domain.WatchSettings{
			Cooldown: s.getDuration(keyWatchCooldown, defaults.Watch.Cooldown),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyScanMode, settings.Scan.Mode.String()},
		{keyScanExtractor, settings.Scan.Extractor.String()},
		{keyScanTimeout, settings.Scan.DocumentTimeout.String()},
		{keyScanSkipHidden, settings.Scan.SkipHidden},
		{keyOutputDirectory, settings.Output.Directory},
		{keyHistoryEnabled, settings.History.Enabled},
		{keyHistoryKeep, settings.History.Keep},
		{keyWatchCooldown, settings.Watch.Cooldown.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// GetValue returns a single setting rendered as a string.
func (s *SettingsService) GetValue(key string) (string, error) {
	def, ok := settingsTable[key]
	if !ok {
		return "", fmt.Errorf("%w: setting %q", domain.ErrNotFound, key)
	}
	settings, err := s.Get()
	if err != nil {
		return "", err
	}
	return def.format(settings), nil
}

// SetValue parses and persists a single setting.
func (s *SettingsService) SetValue(key, value string) error {
	def, ok := settingsTable[key]
	if !ok {
		return fmt.Errorf("%w: setting %q", domain.ErrNotFound, key)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := def.parse(settings, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	// Store the canonical form so the file always reads back cleanly.
	var stored any = def.format(settings)
	switch key {
	case keyScanSkipHidden:
		stored = settings.Scan.SkipHidden
	case keyHistoryEnabled:
		stored = settings.History.Enabled
	case keyHistoryKeep:
		stored = settings.History.Keep
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists every known setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingsTable))
	for k := range settingsTable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := parseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getMode(defaultVal domain.Mode) domain.Mode {
	val := s.configStore.GetString(keyScanMode)
	if val == "" {
		return defaultVal
	}
	mode, err := domain.ParseMode(val)
	if err != nil {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getExtractor(defaultVal domain.ExtractorBackend) domain.ExtractorBackend {
	backend := domain.ExtractorBackend(s.configStore.GetString(keyScanExtractor))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// parseDuration accepts Go durations ("30s", "2m") and bare seconds ("30").
func parseDuration(str string) (time.Duration, error) {
	str = strings.TrimSpace(str)
	if n, err := strconv.Atoi(str); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("duration must not be negative")
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}
