package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// Ensure scanRun implements the interface.
var _ driving.Run = (*scanRun)(nil)

const (
	eventBuffer = 256

	// reservedEvents keeps room for the final progress and finished events.
	reservedEvents = 2
)

// scanRun is a scan executing on a background worker.
type scanRun struct {
	id     string
	pump   *eventPump
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result *domain.ScanResult
	err    error
}

func newScanRun(id string, cancel context.CancelFunc) *scanRun {
	return &scanRun{
		id:     id,
		pump:   newEventPump(eventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the run ID.
func (r *scanRun) ID() string { return r.id }

// Events streams events until the run finishes.
func (r *scanRun) Events() <-chan domain.ScanEvent { return r.pump.ch }

// Cancel requests cooperative termination.
func (r *scanRun) Cancel() { r.cancel() }

// Wait blocks until the run ends.
func (r *scanRun) Wait() (*domain.ScanResult, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

func (r *scanRun) finish(result *domain.ScanResult, err error) {
	r.mu.Lock()
	r.result = result
	r.err = err
	r.mu.Unlock()

	r.pump.close(domain.ScanEvent{Kind: domain.EventFinished, Result: result})
	close(r.done)
}

// eventPump forwards events from a single producer without ever blocking it.
// Progress and log events are dropped when the consumer lags; the most
// recent undelivered progress event is kept and flushed before the
// finished event.
type eventPump struct {
	ch      chan domain.ScanEvent
	pending *domain.ScanEvent
}

func newEventPump(size int) *eventPump {
	if size < reservedEvents+1 {
		size = reservedEvents + 1
	}
	return &eventPump{ch: make(chan domain.ScanEvent, size)}
}

func (p *eventPump) hasRoom() bool {
	return len(p.ch) < cap(p.ch)-reservedEvents
}

func (p *eventPump) emit(e domain.ScanEvent) {
	switch e.Kind {
	case domain.EventProgress:
		if p.hasRoom() {
			p.ch <- e
			p.pending = nil
			return
		}
		p.pending = &e
	case domain.EventFinished:
		// Delivered by close.
	default:
		if p.hasRoom() {
			p.ch <- e
		}
	}
}

// close flushes the pending progress event, sends the finished event and
// closes the channel. Both sends use the reserved capacity.
func (p *eventPump) close(finished domain.ScanEvent) {
	if p.pending != nil {
		p.ch <- *p.pending
		p.pending = nil
	}
	p.ch <- finished
	close(p.ch)
}
