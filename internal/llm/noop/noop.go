package noop

import (
	"context"

	"stockadvisor/internal/logger"
	"stockadvisor/internal/types"
)

const fallbackReply = "The language model is not configured. Tool results are unavailable in conversational form."

// Generator is the fallback generator used when no model server is configured.
// It never calls out anywhere and never requests tools.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	logger.Debug(ctx, "Noop generator called")
	return fallbackReply, nil
}

func (g *Generator) GenerateStream(ctx context.Context, req types.GenerateRequest) (<-chan string, <-chan error) {
	chunks := make(chan string, 1)
	errc := make(chan error)
	chunks <- fallbackReply
	close(chunks)
	close(errc)
	return chunks, errc
}

func (g *Generator) HealthCheck(ctx context.Context) bool {
	return false
}
