package core

import "context"

type contextKey string

const ctxKeyRequester contextKey = "requester"

// Requester describes who asked for a check. It is stored with history rows.
type Requester struct {
	IP        string
	UserAgent string
}

// ContextWithRequester attaches request metadata for history records.
func ContextWithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, ctxKeyRequester, r)
}

// RequesterFromContext returns the metadata set by ContextWithRequester,
// or the zero Requester for checks started outside a request.
func RequesterFromContext(ctx context.Context) Requester {
	if r, ok := ctx.Value(ctxKeyRequester).(Requester); ok {
		return r
	}
	return Requester{}
}
