// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vmelnikov/relaybot/internal/domain"
)

// OpenAIProvider adapts any OpenAI-compatible chat completion endpoint to
// the CompletionProvider interface. The internal "model" role maps to the
// API's "assistant" role.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.OpenAIAPIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, history []domain.Turn) (string, error) {
	if len(history) == 0 {
		return "", &AIError{Type: ErrTypeValidation, Operation: "completion", Message: "history cannot be empty"}
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.config.OpenAIModel,
		Messages: messages,
	})
	if err != nil {
		if apiErr, ok := err.(*openai.APIError); ok {
			return "", NewUpstreamError("completion", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", NewNetworkError("completion", "request to completion API failed", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Type: ErrTypeProvider, Operation: "completion", Message: "empty completion response"}
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	if p.config.OpenAIAPIKey == "" {
		return NewConfigError("OPENAI_API_KEY is not set")
	}
	return nil
}
