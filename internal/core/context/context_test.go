package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetUserID(ctx))

	ctx = WithUser(ctx, &UserContext{UserID: "u-42"})
	assert.Equal(t, "u-42", GetUserID(ctx))
}

func TestNewTraceContext(t *testing.T) {
	tc := NewTraceContext(context.Background(), "req-1")
	assert.Equal(t, "req-1", tc.RequestID)
	assert.NotEmpty(t, tc.TraceID)

	ctx := WithTrace(context.Background(), tc)
	assert.Equal(t, "req-1", GetRequestID(ctx))

	generated := NewTraceContext(context.Background(), "")
	assert.NotEmpty(t, generated.RequestID)
}
