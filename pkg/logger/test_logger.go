package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewTestLogger returns a logger that writes through t.Log, and installs
// it globally for the duration of the test.
func NewTestLogger(t *testing.T) *Logger {
	l := &Logger{Logger: zaptest.NewLogger(t, zaptest.Level(zap.DebugLevel))}
	prev := globalLogger
	SetGlobalLogger(l)
	t.Cleanup(func() { SetGlobalLogger(prev) })
	return l
}
