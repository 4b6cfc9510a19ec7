package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "restostock/internal/core/context"
)

func TestFromContext_AddsTraceAndUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := appctx.WithTrace(context.Background(), &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "u-1"})
	ctx = WithLogger(ctx, l)

	Info(ctx, "count approved", "number", "SAY-2024-001")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, "u-1", fields["user_id"])
		assert.Equal(t, "SAY-2024-001", fields["number"])
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.NoError(t, err)
	assert.NotNil(t, l)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
}
