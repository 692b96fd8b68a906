package logger

import (
	"bytes"
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Stdout: &buf, Level: "warn"})

	l.Info("hidden")
	l.Warn("shown")
	l.Error("failed", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "boom")
	assert.Equal(t, "warn", l.GetLogLevel())
}

func TestSlogLogger_SetLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"bogus", "info"},
	}

	l := New(Options{Stdout: &bytes.Buffer{}})
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l.SetLogLevel(tt.in)
			assert.Equal(t, tt.want, l.GetLogLevel())
		})
	}
}

func TestSlogLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Stdout: &buf, Level: "trace"})

	l.Trace("tick")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestTaggedLogger(t *testing.T) {
	mem := NewMemory()
	tagged := NewTagged(NewTagged(mem, "backend", "gtk"), "caller", "gps")

	tagged.Error("can't remove timeout", nil, "id", 3)

	records := mem.Records()
	if assert.Len(t, records, 1) {
		assert.Equal(t, "error", records[0].Level)
		assert.Equal(t, []any{"backend", "gtk", "caller", "gps", "id", 3}, records[0].Args)
	}
	assert.Equal(t, 1, mem.Count("error", "remove timeout"))
}

func TestSlogLogger_FatalUsesExitHook(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	l := New(Options{Stdout: &buf, Exit: func(c int) { code = c }})

	l.Fatal("bind failed", errors.New("address in use"), "addr", ":8080")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "level=FATAL")
	assert.Contains(t, buf.String(), "address in use")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel(" TRACE "))
	assert.Equal(t, LevelFatal, ParseLevel("fatal"))
	assert.Equal(t, ParseLevel("info"), ParseLevel(""))
}
