// Package httpcontext bridges fasthttp request handling and the stdlib
// context plumbing the rest of the service uses.
package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/mailsig/sigsync/pkg/logger"
)

// Key identifies request metadata attached to the derived context.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// Adapter derives a deadline-bound stdlib context from a fasthttp request.
// The request's correlation ID doubles as the run ID for runs triggered over
// the API, so API-triggered runs are traceable end to end from the response
// header.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach returns a context bounded by the adapter timeout, carrying the
// correlation ID and request metadata. The ID is echoed in X-Request-ID.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	id := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if id == "" {
		id = uuid.NewString()
	}
	stdCtx = appLogger.ContextWithRunID(stdCtx, id)
	ctx.Response.Header.Set("X-Request-ID", id)

	if addr := ctx.RemoteAddr(); addr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, addr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}
