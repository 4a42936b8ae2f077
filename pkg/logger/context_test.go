package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToGlobal(t *testing.T) {
	l := NewTestLogger(t)
	assert.Same(t, l, FromContext(context.Background()))
	assert.Same(t, l, FromContext(nil))
}

func TestIntoContextCarriesLogger(t *testing.T) {
	NewTestLogger(t)

	core, _ := observer.New(zap.DebugLevel)
	injected := &Logger{Logger: zap.New(core)}
	ctx := IntoContext(context.Background(), injected)
	assert.Same(t, injected, FromContext(ctx))
}
