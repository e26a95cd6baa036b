package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name  string
		event domain.ScanEvent
		want  string
	}{
		{"start", domain.ProgressEvent(0, 4), "[----------] 0/4 (  0%)"},
		{"half", domain.ProgressEvent(2, 4), "[#####-----] 2/4 ( 50%)"},
		{"done", domain.ProgressEvent(4, 4), "[##########] 4/4 (100%)"},
		{"no documents", domain.ProgressEvent(0, 0), "[##########] 0/0 (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderBar(tt.event, 10))
		})
	}
}

func TestFormatLog(t *testing.T) {
	tests := []struct {
		name  string
		event domain.ScanEvent
		want  string
	}{
		{"info with path", domain.LogEvent(domain.LevelInfo, "/a.zip", "Extracted x.pdf"), "/a.zip: Extracted x.pdf"},
		{"warning", domain.LogEvent(domain.LevelWarn, "/b.pdf", "Skipping"), "warning: /b.pdf: Skipping"},
		{"error without path", domain.LogEvent(domain.LevelError, "", "disk full"), "error: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatLog(tt.event))
		})
	}
}

func TestProgressPrinter_NonTerminal(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newProgressPrinter(buf)
	assert.False(t, p.tty)

	p.Handle(domain.ProgressEvent(1, 2))
	p.Handle(domain.LogEvent(domain.LevelWarn, "/b.pdf", "Skipping"))
	p.Handle(domain.ProgressEvent(2, 2))
	p.Handle(domain.ScanEvent{Kind: domain.EventFinished})

	// Progress is only drawn on a terminal.
	assert.Equal(t, "warning: /b.pdf: Skipping\n", buf.String())
}

func TestProgressPrinter_Terminal(t *testing.T) {
	buf := new(bytes.Buffer)
	p := &progressPrinter{w: buf, tty: true, width: 4}

	p.Handle(domain.ProgressEvent(1, 2))
	assert.Equal(t, "[##--] 1/2 ( 50%)", buf.String())

	buf.Reset()
	p.Handle(domain.LogEvent(domain.LevelInfo, "", "hello"))
	// The bar is erased before the log line.
	assert.Equal(t, "\r                 \rhello\n", buf.String())

	buf.Reset()
	p.Handle(domain.ProgressEvent(2, 2))
	p.Handle(domain.ScanEvent{Kind: domain.EventFinished})
	assert.Equal(t, "[####] 2/2 (100%)\n", buf.String())
}

func TestProgressPrinter_QuietLog(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newProgressPrinter(buf)
	p.quietLog = true

	p.Handle(domain.LogEvent(domain.LevelInfo, "", "Extracted"))
	p.Handle(domain.LogEvent(domain.LevelError, "", "failed"))

	assert.Equal(t, "error: failed\n", buf.String())
}
