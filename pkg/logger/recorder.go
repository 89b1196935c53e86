package logger

import (
	"strings"
	"sync"
)

// Level names the severity of a recorded entry.
type Level string

const (
	LevelLog   Level = "log"
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Entry is one recorded log call.
type Entry struct {
	Level   Level
	Message string
	Keyvals []any
}

// Recorder is an in-memory backend. It keeps every entry, which makes it
// usable in tests to assert on emitted diagnostics. Fatal does not exit.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level Level, message string, keyvals []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: message, Keyvals: append([]any(nil), keyvals...)})
}

// Entries returns a copy of the recorded entries in call order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Contains reports whether any recorded message contains substr.
func (r *Recorder) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Count returns the number of entries recorded at level.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) Log(message string, keyvals ...any)   { r.record(LevelLog, message, keyvals) }
func (r *Recorder) Debug(message string, keyvals ...any) { r.record(LevelDebug, message, keyvals) }
func (r *Recorder) Info(message string, keyvals ...any)  { r.record(LevelInfo, message, keyvals) }
func (r *Recorder) Warn(message string, keyvals ...any)  { r.record(LevelWarn, message, keyvals) }
func (r *Recorder) Error(message string, keyvals ...any) { r.record(LevelError, message, keyvals) }
func (r *Recorder) Fatal(message string, keyvals ...any) { r.record(LevelFatal, message, keyvals) }
