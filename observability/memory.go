package observability

import (
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Entry is one message captured by MemoryLogger.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]interface{}
}

type entryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// MemoryLogger keeps every logged entry in memory.
type MemoryLogger struct {
	store  *entryStore
	fields []Field
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{store: &entryStore{}}
}

func (m *MemoryLogger) Debug(msg string, fields ...Field) { m.add(LevelDebug, msg, fields) }
func (m *MemoryLogger) Info(msg string, fields ...Field)  { m.add(LevelInfo, msg, fields) }
func (m *MemoryLogger) Warn(msg string, fields ...Field)  { m.add(LevelWarn, msg, fields) }
func (m *MemoryLogger) Error(msg string, fields ...Field) { m.add(LevelError, msg, fields) }

// With returns a logger sharing m's entries that adds fields to each entry.
func (m *MemoryLogger) With(fields ...Field) Logger {
	return &MemoryLogger{store: m.store, fields: append(append([]Field(nil), m.fields...), fields...)}
}

func (m *MemoryLogger) add(level Level, msg string, fields []Field) {
	e := Entry{Level: level, Message: msg, Fields: make(map[string]interface{}, len(fields)+len(m.fields))}
	for _, f := range m.fields {
		e.Fields[f.Key] = f.Value
	}
	for _, f := range fields {
		e.Fields[f.Key] = f.Value
	}
	m.store.mu.Lock()
	m.store.entries = append(m.store.entries, e)
	m.store.mu.Unlock()
}

// Entries returns a copy of the captured entries.
func (m *MemoryLogger) Entries() []Entry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return append([]Entry(nil), m.store.entries...)
}

// Count returns the number of entries logged at level.
func (m *MemoryLogger) Count(level Level) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether any entry at level has a message containing substr.
func (m *MemoryLogger) Contains(level Level, substr string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
