// File: internal/services/ai/gemini_provider.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vmelnikov/relaybot/internal/domain"
)

// Gemini generateContent wire shapes (v1beta REST).
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiProvider speaks the generativelanguage.googleapis.com REST API.
type GeminiProvider struct {
	config     *Config
	httpClient *http.Client
}

func NewGeminiProvider(config *Config) *GeminiProvider {
	return &GeminiProvider{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Complete sends the full history and returns the first candidate's text.
// A response carrying neither a candidate nor an explicit error payload is
// reported as an opaque provider failure.
func (p *GeminiProvider) Complete(ctx context.Context, history []domain.Turn) (string, error) {
	if len(history) == 0 {
		return "", &AIError{Type: ErrTypeValidation, Operation: "completion", Message: "history cannot be empty"}
	}

	payload := generateContentRequest{Contents: make([]geminiContent, 0, len(history))}
	for _, turn := range history {
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  string(turn.Role),
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewProviderError("completion", "could not encode request", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(p.config.GeminiBaseURL, "/"),
		p.config.GeminiModel,
		url.QueryEscape(p.config.GeminiAPIKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", NewProviderError("completion", "could not build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", NewNetworkError("completion", "request to Gemini failed", err)
	}
	defer resp.Body.Close()

	var decoded generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", NewProviderError("completion", "undecodable response", fmt.Errorf("HTTP %d: %w", resp.StatusCode, err))
	}

	if decoded.Error != nil {
		return "", NewUpstreamError("completion", decoded.Error.Code, decoded.Error.Message)
	}

	if len(decoded.Candidates) > 0 && len(decoded.Candidates[0].Content.Parts) > 0 {
		text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
		if text != "" {
			return text, nil
		}
	}

	// Neither a candidate nor an error payload: opaque failure.
	return "", NewProviderError("completion", "unrecognized response shape",
		fmt.Errorf("response carried neither candidates nor an error (HTTP %d)", resp.StatusCode))
}

// HealthCheck verifies the provider is configured well enough to be called.
func (p *GeminiProvider) HealthCheck(ctx context.Context) error {
	if p.config.GeminiAPIKey == "" {
		return NewConfigError("GEMINI_API_KEY is not set")
	}
	return nil
}
