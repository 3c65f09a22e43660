package llm

import (
	"stockadvisor/internal/interfaces"
	"stockadvisor/internal/llm/noop"
	"stockadvisor/internal/llm/ollama"
	"stockadvisor/internal/store"
)

// Sentinel errors re-exported so callers do not need to know which backend
// produced them.
var (
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = ollama.ErrUnavailable
	// ErrGateway means the backend was reached but returned an error response.
	ErrGateway = ollama.ErrGateway
)

// New returns the generator for the configured backend. Setting
// `ollama.host: "none"` selects the noop generator, which keeps the rest of
// the service usable without a model server.
func New(cfg *store.Config) interfaces.Generator {
	if cfg.Ollama.Host == "" || cfg.Ollama.Host == store.OllamaHostNone {
		return noop.NewGenerator()
	}
	return ollama.NewClient(cfg)
}
