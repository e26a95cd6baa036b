package domain

// EventKind identifies the type of a ScanEvent.
type EventKind string

// Event kinds emitted during a run.
const (
	// EventProgress reports documents processed so far.
	EventProgress EventKind = "progress"

	// EventLog carries a human-readable line for display.
	EventLog EventKind = "log"

	// EventFinished is the last event of a run and carries the result.
	EventFinished EventKind = "finished"
)

// LogLevel grades log events.
type LogLevel string

// Log levels.
const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// ScanEvent flows one way, from the worker to the caller.
// It is for display only and never drives control flow.
type ScanEvent struct {
	Kind EventKind

	// Processed and Total are set on progress events.
	Processed int
	Total     int

	// Level, Message and Path are set on log events.
	Level   LogLevel
	Message string
	Path    string

	// Result is set on the finished event.
	Result *ScanResult
}

// Fraction returns progress in [0, 1]. A run with no documents is complete.
func (e ScanEvent) Fraction() float64 {
	if e.Total <= 0 {
		return 1
	}
	return float64(e.Processed) / float64(e.Total)
}

// EventSink receives events from a running scan.
// It is called from the worker goroutine and must not block for long.
type EventSink func(ScanEvent)

// Emit calls the sink if it is set.
func (s EventSink) Emit(e ScanEvent) {
	if s != nil {
		s(e)
	}
}

// ProgressEvent builds a progress event.
func ProgressEvent(processed, total int) ScanEvent {
	return ScanEvent{Kind: EventProgress, Processed: processed, Total: total}
}

// LogEvent builds a log event.
func LogEvent(level LogLevel, path, message string) ScanEvent {
	return ScanEvent{Kind: EventLog, Level: level, Path: path, Message: message}
}
