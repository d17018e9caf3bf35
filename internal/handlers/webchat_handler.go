// File: internal/handlers/webchat_handler.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/vmelnikov/relaybot/internal/services"
)

// WebChatHandler backs the stateless chat box on the index page. Each
// request is a one-shot completion with no accumulated history.
type WebChatHandler struct {
	aiService *services.AIService
	logger    services.Logger
	markdown  goldmark.Markdown
}

func NewWebChatHandler(aiService *services.AIService, logger services.Logger) *WebChatHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &WebChatHandler{
		aiService: aiService,
		logger:    logger,
		markdown:  goldmark.New(),
	}
}

func (h *WebChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.aiService.CompleteOnce(r.Context(), req.Message)
	if err != nil {
		h.logger.Warn("web chat completion failed", "error", err)
		writeError(w, "completion API error", http.StatusBadGateway)
		return
	}

	// Model replies are Markdown; render them for the web page.
	var rendered bytes.Buffer
	if err := h.markdown.Convert([]byte(reply), &rendered); err != nil {
		h.logger.Error("markdown rendering failed", "error", err)
		rendered.Reset()
		rendered.WriteString(reply)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response": reply,
		"html":     rendered.String(),
	})
}
