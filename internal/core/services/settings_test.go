package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// failingConfigStore fails Set for a specific key.
type failingConfigStore struct {
	*memory.ConfigStore
	failOn string
}

func (f *failingConfigStore) Set(key string, value any) error {
	if key == f.failOn {
		return errors.New("disk full")
	}
	return f.ConfigStore.Set(key, value)
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.Equal(t, domain.DefaultAppSettings(), svc.GetDefaults())
}

func TestSettingsService_Get_FromConfig(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(map[string]any{
		"scan.mode":             "docs",
		"scan.extractor":        "ledongthuc",
		"scan.document_timeout": "45",
		"scan.skip_hidden":      true,
		"output.directory":      "/srv/out",
		"history.enabled":       false,
		"history.keep":          int64(12),
		"watch.cooldown":        "1m",
	}))

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.ModeWholeDocuments, settings.Scan.Mode)
	assert.Equal(t, domain.ExtractorLedongthuc, settings.Scan.Extractor)
	assert.Equal(t, 45*time.Second, settings.Scan.DocumentTimeout)
	assert.True(t, settings.Scan.SkipHidden)
	assert.Equal(t, "/srv/out", settings.Output.Directory)
	assert.False(t, settings.History.Enabled)
	assert.Equal(t, 12, settings.History.Keep)
	assert.Equal(t, time.Minute, settings.Watch.Cooldown)
}

func TestSettingsService_Get_InvalidValuesFallBack(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore(map[string]any{
		"scan.mode":             "chapters",
		"scan.extractor":        "poppler",
		"scan.document_timeout": "soon",
		"history.keep":          -3,
		"watch.cooldown":        "-5s",
	}))

	settings, err := svc.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Scan.Mode, settings.Scan.Mode)
	assert.Equal(t, defaults.Scan.Extractor, settings.Scan.Extractor)
	assert.Equal(t, defaults.Scan.DocumentTimeout, settings.Scan.DocumentTimeout)
	assert.Equal(t, defaults.History.Keep, settings.History.Keep)
	assert.Equal(t, defaults.Watch.Cooldown, settings.Watch.Cooldown)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())
	settings := domain.DefaultAppSettings()
	settings.Scan.Mode = domain.ModeWholeDocuments
	settings.Scan.DocumentTimeout = 2 * time.Minute
	settings.Output.Directory = "/tmp/out"
	settings.History.Keep = 7

	require.NoError(t, svc.Save(&settings))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_Error(t *testing.T) {
	svc := NewSettingsService(&failingConfigStore{ConfigStore: memory.NewConfigStore(), failOn: "history.keep"})
	settings := domain.DefaultAppSettings()

	err := svc.Save(&settings)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.keep")
}

func TestSettingsService_SetValue(t *testing.T) {
	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{"scan.mode", "whole-documents", "documents"},
		{"scan.extractor", "LEDONGTHUC", "ledongthuc"},
		{"scan.document_timeout", "90", "1m30s"},
		{"scan.skip_hidden", "true", "true"},
		{"output.directory", " /data/results ", "/data/results"},
		{"history.enabled", "false", "false"},
		{"history.keep", "25", "25"},
		{"watch.cooldown", "750ms", "750ms"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			svc := NewSettingsService(store)

			require.NoError(t, svc.SetValue(tt.key, tt.value))

			got, err := svc.GetValue(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSettingsService_SetValue_StoresNativeTypes(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	require.NoError(t, svc.SetValue("history.keep", "9"))
	require.NoError(t, svc.SetValue("scan.skip_hidden", "1"))

	keep, _ := store.Get("history.keep")
	assert.Equal(t, 9, keep)
	hidden, _ := store.Get("scan.skip_hidden")
	assert.Equal(t, true, hidden)
}

func TestSettingsService_SetValue_Errors(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	err := svc.SetValue("search.mode", "hybrid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetValue("search.mode")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for key, value := range map[string]string{
		"scan.mode":             "chapters",
		"scan.extractor":        "poppler",
		"scan.document_timeout": "-1s",
		"scan.skip_hidden":      "maybe",
		"history.keep":          "-1",
		"watch.cooldown":        "later",
	} {
		err := svc.SetValue(key, value)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, key)
	}
}

func TestSettingsService_Keys(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	keys := svc.Keys()

	assert.Len(t, keys, 8)
	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "scan.extractor")
	for _, key := range keys {
		_, err := svc.GetValue(key)
		assert.NoError(t, err, key)
	}
}
