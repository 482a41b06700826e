// Package ai holds the embedding/generation backends. Both are plain HTTP
// clients; the rest of the system only sees the Provider interface.
package ai

import (
	"context"
	"fmt"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/config"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

// Provider computes embeddings and generates answers. Implementations are
// opaque to the pipeline: it never inspects model names or endpoints.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Registry maps provider names to configured clients.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		providers: map[string]Provider{
			model.ProviderOllama: NewOllamaClient(cfg.Ollama),
			model.ProviderOpenAI: NewOpenAIClient(cfg.OpenAI),
		},
	}
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown embedding provider %q", name)
	}
	return p, nil
}
