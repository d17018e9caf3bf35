// File: internal/handlers/webhook_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/vmelnikov/relaybot/internal/bot"
	"github.com/vmelnikov/relaybot/internal/services"
)

// telegramUpdate is the slice of the Telegram webhook envelope the relay
// cares about. Everything else in the update is ignored.
type telegramUpdate struct {
	Message *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// WebhookHandler receives Telegram webhook updates. It always acknowledges
// with 200 so Telegram never re-delivers; failures are handled as replies
// or logged inside the dispatcher.
type WebhookHandler struct {
	dispatcher *bot.Dispatcher
	logger     services.Logger
}

func NewWebhookHandler(dispatcher *bot.Dispatcher, logger services.Logger) *WebhookHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &WebhookHandler{dispatcher: dispatcher, logger: logger}
}

func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	defer acknowledge(w)

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("undecodable webhook payload", "error", err)
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		// Non-text updates (stickers, edits, joins) are acknowledged and
		// dropped.
		return
	}

	h.dispatcher.HandleMessage(r.Context(), update.Message.Chat.ID, update.Message.Text)
}

func acknowledge(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
