package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskdesk/pkg/logger"
)

func TestAttach(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("X-Request-ID", "req-42")
	ctx.Request.Header.SetUserAgent("taskdesk-test")
	SetActor(ctx, Actor{UserID: "u1", SessionID: "s1"})

	stdCtx, cancel := NewAdapter(time.Second).Attach(ctx)
	defer cancel()

	_, hasDeadline := stdCtx.Deadline()
	assert.True(t, hasDeadline)
	assert.Equal(t, "req-42", appLogger.RequestID(stdCtx))
	assert.Equal(t, "req-42", string(ctx.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "taskdesk-test", stdCtx.Value(KeyUserAgent))
	assert.Equal(t, "u1", ActorID(stdCtx))
}

func TestAttach_GeneratesRequestID(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	stdCtx, cancel := NewAdapter(0).Attach(ctx)
	defer cancel()

	id := appLogger.RequestID(stdCtx)
	require.NotEmpty(t, id)
	assert.Equal(t, id, string(ctx.Response.Header.Peek("X-Request-ID")))
	assert.Empty(t, ActorID(stdCtx))

	_, ok := ActorFrom(ctx)
	assert.False(t, ok)
}
