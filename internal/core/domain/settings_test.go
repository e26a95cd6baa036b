package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractorBackend_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		backend  ExtractorBackend
		expected bool
	}{
		{name: "tabula is valid", backend: ExtractorTabula, expected: true},
		{name: "ledongthuc is valid", backend: ExtractorLedongthuc, expected: true},
		{name: "empty is invalid", backend: ExtractorBackend(""), expected: false},
		{name: "unknown is invalid", backend: ExtractorBackend("poppler"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.backend.IsValid())
		})
	}
}

func TestExtractorBackend_Description(t *testing.T) {
	for _, b := range AllExtractorBackends() {
		assert.NotEqual(t, unknownDescription, b.Description())
		assert.Equal(t, string(b), b.String())
	}
	assert.Equal(t, unknownDescription, ExtractorBackend("x").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, ModePagesOnly, s.Scan.Mode)
	assert.Equal(t, ExtractorTabula, s.Scan.Extractor)
	assert.Zero(t, s.Scan.DocumentTimeout)
	assert.False(t, s.Scan.SkipHidden)
	assert.Empty(t, s.Output.Directory)
	assert.True(t, s.History.Enabled)
	assert.Equal(t, 100, s.History.Keep)
	assert.Equal(t, 5*time.Second, s.Watch.Cooldown)
}
