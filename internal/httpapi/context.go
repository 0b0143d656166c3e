package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
)

// shutdownCtx is canceled when the process starts shutting down. Long-lived
// responses such as /events end with it.
var shutdownCtx atomic.Pointer[context.Context]

// SetBaseContext installs the shutdown context. nil resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx.Store(&ctx)
}

func baseContext() context.Context {
	if p := shutdownCtx.Load(); p != nil {
		return *p
	}
	return context.Background()
}

// streamContext is canceled when either the client goes away or the base
// context is done. Call the returned func when the handler returns.
func streamContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(baseContext(), cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
