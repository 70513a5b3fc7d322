// Package testutil provides shared test doubles used across docrisk test
// suites.
package testutil

import (
	"sync"

	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
)

// LogEntry is a single captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []logging.Field
}

// MockLogger records every log call for later inspection.  It satisfies
// logging.Logger and is safe for concurrent use, which matters for tests
// that exercise worker pools and singleflight paths.
type MockLogger struct {
	mu      sync.Mutex
	entries []LogEntry
	with    []logging.Field
}

// NewMockLogger returns an empty recording logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]logging.Field, 0, len(m.with)+len(fields))
	all = append(all, m.with...)
	all = append(all, fields...)
	m.entries = append(m.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.record("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.record("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.record("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.record("error", msg, fields) }

// Fatal records the entry but does not exit, so tests can assert on fatal
// paths without terminating the test binary.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.record("fatal", msg, fields) }

// With returns a child logger that records through the parent, so
// assertions on the parent see entries logged through the child.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	bound := append(append([]logging.Field{}, m.with...), fields...)
	return &sharedMockLogger{parent: m, with: bound}
}

// Named is a no-op for the mock; the name is not recorded.
func (m *MockLogger) Named(_ string) logging.Logger { return m }

// Entries returns a copy of all recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// CountLevel returns how many entries were recorded at the given level.
func (m *MockLogger) CountLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// HasMessage reports whether any entry carries the exact message.
func (m *MockLogger) HasMessage(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

// Reset discards all recorded entries.
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

// sharedMockLogger forwards to a parent MockLogger with extra bound fields.
type sharedMockLogger struct {
	parent *MockLogger
	with   []logging.Field
}

func (s *sharedMockLogger) merge(fields []logging.Field) []logging.Field {
	all := make([]logging.Field, 0, len(s.with)+len(fields))
	all = append(all, s.with...)
	all = append(all, fields...)
	return all
}

func (s *sharedMockLogger) Debug(msg string, fields ...logging.Field) {
	s.parent.record("debug", msg, s.merge(fields))
}
func (s *sharedMockLogger) Info(msg string, fields ...logging.Field) {
	s.parent.record("info", msg, s.merge(fields))
}
func (s *sharedMockLogger) Warn(msg string, fields ...logging.Field) {
	s.parent.record("warn", msg, s.merge(fields))
}
func (s *sharedMockLogger) Error(msg string, fields ...logging.Field) {
	s.parent.record("error", msg, s.merge(fields))
}
func (s *sharedMockLogger) Fatal(msg string, fields ...logging.Field) {
	s.parent.record("fatal", msg, s.merge(fields))
}
func (s *sharedMockLogger) With(fields ...logging.Field) logging.Logger {
	return &sharedMockLogger{parent: s.parent, with: s.merge(fields)}
}
func (s *sharedMockLogger) Named(_ string) logging.Logger { return s }
