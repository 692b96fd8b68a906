package logger

import (
	"strings"
	"sync"
)

// Record is one line captured by Memory.
type Record struct {
	Level string
	Msg   string
	Err   error
	Args  []any
}

// Memory keeps every record in process so tests can assert on what was logged.
type Memory struct {
	mu      sync.Mutex
	level   string
	records []Record
}

func NewMemory() *Memory {
	return &Memory{level: "trace"}
}

func (m *Memory) SetLogLevel(levelStr string) {
	m.mu.Lock()
	m.level = levelStr
	m.mu.Unlock()
}

func (m *Memory) GetLogLevel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *Memory) Trace(msg string, args ...any) { m.add("trace", msg, nil, args) }
func (m *Memory) Debug(msg string, args ...any) { m.add("debug", msg, nil, args) }
func (m *Memory) Info(msg string, args ...any)  { m.add("info", msg, nil, args) }
func (m *Memory) Warn(msg string, args ...any)  { m.add("warn", msg, nil, args) }

func (m *Memory) Error(msg string, err error, args ...any) { m.add("error", msg, err, args) }

// Fatal records the line without exiting.
func (m *Memory) Fatal(msg string, err error, args ...any) { m.add("fatal", msg, err, args) }

func (m *Memory) add(level, msg string, err error, args []any) {
	m.mu.Lock()
	m.records = append(m.records, Record{Level: level, Msg: msg, Err: err, Args: args})
	m.mu.Unlock()
}

func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Count returns how many records at level contain substr.
func (m *Memory) Count(level, substr string) int {
	n := 0
	for _, r := range m.Records() {
		if r.Level == level && strings.Contains(r.Msg, substr) {
			n++
		}
	}
	return n
}

func (m *Memory) Reset() {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
}
