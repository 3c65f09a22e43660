package interfaces

import (
	"context"

	"stockadvisor/internal/types"
)

// Generator is the language-model gateway consumed by the orchestrator.
type Generator interface {
	Generate(ctx context.Context, req types.GenerateRequest) (string, error)
	GenerateStream(ctx context.Context, req types.GenerateRequest) (<-chan string, <-chan error)
	HealthCheck(ctx context.Context) bool
}
