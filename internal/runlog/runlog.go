// Package runlog captures the structured, per-run event log of an ingestion
// run: one append-only sequence of events recording every decision made
// (fetches, rule evaluations, fallbacks, skips, failures). The recorder is
// owned by a single run and must never itself fail the run; internal
// failures degrade to a synthetic error event.
//
// The package also decodes historical log encodings back into the canonical
// event list (see Decode).
package runlog

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Event levels.
const (
	LevelInfo  = "info"
	LevelOK    = "ok"
	LevelWarn  = "warn"
	LevelSkip  = "skip"
	LevelError = "error"
)

// StageLogger is the stage tag used by synthetic events the recorder emits
// about itself.
const StageLogger = "logger"

// tsLayout is the wall-clock format events carry, kept from the legacy log
// format so old and new logs render the same.
const tsLayout = "15:04:05"

// shortTraceLines bounds the stack capture attached to error events.
const shortTraceLines = 12

// Event is a single structured log entry of a run.
type Event struct {
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Stage   string            `json:"stage"`
	URL     string            `json:"url,omitempty"`
	Rule    string            `json:"rule,omitempty"`
	Time    string            `json:"ts"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Envelope is the canonical serialized shape: one object holding the ordered
// event list.
type Envelope struct {
	Events []Event `json:"events"`
}

// Field is an extra key/value attached to an event. The reserved keys "url"
// and "rule" populate the event's dedicated fields instead of Extra.
type Field struct {
	Key   string
	Value string
}

// F builds a Field.
func F(key, value string) Field {
	return Field{Key: key, Value: value}
}

// URL attaches the URL context to an event.
func URL(u string) Field { return Field{Key: "url", Value: u} }

// Rule attaches the rule-expression context to an event.
func Rule(r string) Field { return Field{Key: "rule", Value: r} }

// Recorder is a thread-safe, append-only event sink for one run.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	clock  func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the event timestamp source. Tests use this to pin ts.
func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) { r.clock = clock }
}

// NewRecorder creates an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{clock: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Info appends an info-level event.
func (r *Recorder) Info(stage, msg string, fields ...Field) {
	r.append(LevelInfo, stage, msg, fields)
}

// OK appends an ok-level event.
func (r *Recorder) OK(stage, msg string, fields ...Field) {
	r.append(LevelOK, stage, msg, fields)
}

// Warn appends a warn-level event.
func (r *Recorder) Warn(stage, msg string, fields ...Field) {
	r.append(LevelWarn, stage, msg, fields)
}

// Skip appends a skip-level event.
func (r *Recorder) Skip(stage, msg string, fields ...Field) {
	r.append(LevelSkip, stage, msg, fields)
}

// Error appends an error-level event. When err is non-nil the event carries
// the failure's type name and a short stack trace.
func (r *Recorder) Error(stage, msg string, err error, fields ...Field) {
	if err != nil {
		fields = append(fields,
			F("exc_type", errKind(err)),
			F("error", err.Error()),
			F("trace", shortTrace()),
		)
	}
	r.append(LevelError, stage, msg, fields)
}

// append builds and stores the event. It must never propagate a failure: any
// panic while assembling the event is swallowed and replaced by a synthetic
// error event describing the logging failure.
func (r *Recorder) append(level, stage, msg string, fields []Field) {
	defer func() {
		if rec := recover(); rec != nil {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, Event{
				Level:   LevelError,
				Message: fmt.Sprintf("[logger-fail] %v", rec),
				Stage:   StageLogger,
				Time:    r.clock().Format(tsLayout),
			})
		}
	}()

	ev := Event{
		Level:   level,
		Message: strings.TrimSpace(msg),
		Stage:   stage,
		Time:    r.clock().Format(tsLayout),
	}
	for _, f := range fields {
		switch {
		case f.Value == "":
			// drop empty context, matching the legacy logs
		case f.Key == "url":
			ev.URL = f.Value
		case f.Key == "rule":
			ev.Rule = f.Value
		default:
			if ev.Extra == nil {
				ev.Extra = make(map[string]string, len(fields))
			}
			ev.Extra[f.Key] = f.Value
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded sequence in append order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Serialize renders the whole sequence as the canonical single JSON object.
// A serialization failure degrades to an envelope holding one synthetic
// error event rather than an error return.
func (r *Recorder) Serialize() string {
	data, err := json.Marshal(Envelope{Events: r.Events()})
	if err != nil {
		fallback, _ := json.Marshal(Envelope{Events: []Event{{
			Level:   LevelError,
			Message: fmt.Sprintf("[logger-fail] serialize: %v", err),
			Stage:   StageLogger,
			Time:    r.clock().Format(tsLayout),
		}}})
		return string(fallback)
	}
	return string(data)
}

// errKind names an error's concrete type without the pointer marker.
func errKind(err error) string {
	kind := fmt.Sprintf("%T", err)
	kind = strings.TrimPrefix(kind, "*")
	if i := strings.LastIndexByte(kind, '.'); i >= 0 && i < len(kind)-1 {
		kind = kind[i+1:]
	}
	return kind
}

// shortTrace returns the first few frames of the current stack.
func shortTrace() string {
	lines := strings.Split(string(debug.Stack()), "\n")
	if len(lines) > shortTraceLines {
		lines = lines[:shortTraceLines]
	}
	return strings.Join(lines, "\n")
}
