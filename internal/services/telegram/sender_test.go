package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *HTTPSender {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.Token = "test-token"
	config.BaseURL = server.URL
	config.Timeout = 5 * time.Second

	sender, err := NewHTTPSender(config)
	require.NoError(t, err)
	sender.retryConfig = &RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}
	return sender
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	err := sender.SendMessage(context.Background(), 42, "Hi!")
	require.NoError(t, err)
	require.Equal(t, "/bottest-token/sendMessage", gotPath)
	require.EqualValues(t, 42, gotBody.ChatID)
	require.Equal(t, "Hi!", gotBody.Text)
	require.Equal(t, "Markdown", gotBody.ParseMode)
}

func TestSendMessageAPIFailure(t *testing.T) {
	attempts := 0
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"chat not found"}`))
	})

	err := sender.SendMessage(context.Background(), 42, "Hi!")
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
	require.Equal(t, 2, attempts) // API errors are retried up to the bound
}

func TestSendMessageValidation(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	require.Error(t, sender.SendMessage(context.Background(), 0, "Hi!"))
	require.Error(t, sender.SendMessage(context.Background(), 42, "  "))
}

func TestNewHTTPSenderRequiresToken(t *testing.T) {
	config := DefaultConfig()
	_, err := NewHTTPSender(config)
	require.Error(t, err)
}
