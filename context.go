package goAuthClient

import (
	"context"

	"github.com/MrEthical07/goAuthClient/middleware"
)

// WithAttemptID tags ctx with an attempt ID. Exchanges carry it so request logs and
// custom exchangers can correlate with signals and audit events.
func WithAttemptID(ctx context.Context, id string) context.Context {
	return middleware.WithAttemptID(ctx, id)
}

// AttemptIDFromContext returns the attempt ID carried by ctx, if any.
func AttemptIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	return middleware.AttemptIDFromContext(ctx)
}
