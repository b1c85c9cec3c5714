// Package net carries request-scoped identifiers and the transport-neutral error envelope
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey uint8

const keyCallerID ctxKey = iota

// WithRequest stores the request id (where chi's RequestID middleware would) and
// the admission identifier of the caller
func WithRequest(ctx context.Context, reqID, callerID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if callerID != "" {
		ctx = context.WithValue(ctx, keyCallerID, callerID)
	}
	return ctx
}

// RequestID returns the request id, if any
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// CallerID returns the identifier quotas are counted against, if resolved
func CallerID(ctx context.Context) string {
	v, _ := ctx.Value(keyCallerID).(string)
	return v
}
