package services

import (
	"context"
	"time"
)

// detachedContext keeps the values of ctx (the forwarded bearer token among them) but is not
// canceled with it, for cleanup that must finish after the request is gone.
func detachedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
