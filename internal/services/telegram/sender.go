// File: internal/services/telegram/sender.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HTTPSender delivers replies through the Telegram Bot API sendMessage
// method.
type HTTPSender struct {
	config      *Config
	retryConfig *RetryConfig
	httpClient  *http.Client
}

func NewHTTPSender(config *Config) (*HTTPSender, error) {
	if config == nil {
		return nil, NewConfigError("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	return &HTTPSender{
		config:      config,
		retryConfig: DefaultRetryConfig(),
		httpClient:  &http.Client{Timeout: config.Timeout},
	}, nil
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage posts one message to the chat, retrying transient transport
// failures a bounded number of times.
func (s *HTTPSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return NewValidationError("send_message", "chat ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return NewValidationError("send_message", "text cannot be empty")
	}

	return RetryWithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		return s.sendOnce(ctx, chatID, text)
	})
}

func (s *HTTPSender) sendOnce(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: s.config.ParseMode,
	})
	if err != nil {
		return NewValidationError("send_message", err.Error())
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(s.config.BaseURL, "/"), s.config.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return NewNetworkError("send_message", "could not build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return NewNetworkError("send_message", "request to Telegram failed", err)
	}
	defer resp.Body.Close()

	var decoded sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return NewNetworkError("send_message", "undecodable Telegram response", err)
	}
	if !decoded.OK {
		return NewAPIError("send_message", decoded.ErrorCode, decoded.Description)
	}

	return nil
}
