package identity

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const callerKey contextKey = "caller"

// ErrCallerNotFound is returned when no caller address exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrCallerNotFound = errors.New("caller not found in context")

// CallerFromCtx extracts the connected account address from the request context.
func CallerFromCtx(ctx context.Context) (Address, error) {
	caller, ok := ctx.Value(callerKey).(Address)
	if !ok || caller.IsZero() {
		return "", ErrCallerNotFound
	}
	return caller, nil
}

// WithCaller returns a new context carrying the given caller address.
// Used by the session middleware after it has read the connected wallet.
func WithCaller(ctx context.Context, caller Address) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}
