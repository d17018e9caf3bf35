package telegram

import "context"

// Sender delivers outbound replies to a chat. The relay does not depend on
// delivery confirmation; a failed send is logged, not retried beyond the
// transport's own bounded retry.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
