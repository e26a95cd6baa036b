package driving

import "github.com/custodia-labs/pdfsift/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// GetValue returns a single setting rendered as a string.
	// Returns domain.ErrNotFound for unknown keys.
	GetValue(key string) (string, error)

	// SetValue parses and persists a single setting.
	// Returns domain.ErrNotFound for unknown keys and
	// domain.ErrInvalidInput for values that do not parse.
	SetValue(key, value string) error

	// Keys lists every known setting key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
