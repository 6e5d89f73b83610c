package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/tabcheck/internal/core"
	"github.com/JonMunkholm/tabcheck/internal/web/middleware"
)

// withRequester adds the client IP and User-Agent to ctx for check history.
func withRequester(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithRequester(ctx, core.Requester{
		IP:        middleware.ClientIP(r), // already rewritten by TrustedRealIP
		UserAgent: r.UserAgent(),
	})
}
