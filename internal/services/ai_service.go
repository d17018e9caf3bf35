// File: internal/services/ai_service.go
package services

import (
	"context"

	"github.com/vmelnikov/relaybot/internal/domain"
	"github.com/vmelnikov/relaybot/internal/services/ai"
)

// AIService selects and fronts the configured completion provider.
type AIService struct {
	config   *ai.Config
	provider ai.CompletionProvider
}

func NewAIService(config *ai.Config) (*AIService, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, ai.NewConfigError(err.Error())
	}

	var provider ai.CompletionProvider
	switch config.Provider {
	case ai.ProviderGemini:
		provider = ai.NewGeminiProvider(config)
	case ai.ProviderOpenAI:
		provider = ai.NewOpenAIProvider(config)
	}

	return &AIService{config: config, provider: provider}, nil
}

// Complete relays the full history and returns the model reply.
func (s *AIService) Complete(ctx context.Context, history []domain.Turn) (string, error) {
	return s.provider.Complete(ctx, history)
}

// CompleteOnce answers a single prompt with no accumulated history. Used
// by the stateless web chat endpoint.
func (s *AIService) CompleteOnce(ctx context.Context, text string) (string, error) {
	return s.provider.Complete(ctx, []domain.Turn{{Role: domain.RoleUser, Text: text}})
}

// HealthCheck delegates to the active provider.
func (s *AIService) HealthCheck(ctx context.Context) error {
	return s.provider.HealthCheck(ctx)
}
