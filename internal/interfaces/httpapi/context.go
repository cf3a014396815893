package httpapi

import (
	"context"

	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type contextKey string

const capabilityContextKey contextKey = "admin_capability"

func withCapability(ctx context.Context, c usecase.Capability) context.Context {
	return context.WithValue(ctx, capabilityContextKey, c)
}

// capabilityFromContext returns the zero (unauthorized) capability when none was set.
func capabilityFromContext(ctx context.Context) usecase.Capability {
	c, _ := ctx.Value(capabilityContextKey).(usecase.Capability)
	return c
}
