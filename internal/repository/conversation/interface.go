package conversation

import (
	"context"

	"github.com/vmelnikov/relaybot/internal/domain"
)

// ConversationRepository handles conversation bookkeeping. Implementations
// must flip the is_active flag and move the active pointer inside a single
// storage transaction so that a sender never has two active conversations.
type ConversationRepository interface {
	CreateActive(ctx context.Context, senderID int64, title string) (*domain.Conversation, error)
	FindByID(ctx context.Context, conversationID uint) (*domain.Conversation, error)
	FindActiveBySender(ctx context.Context, senderID int64) (*domain.Conversation, error)
	ListBySender(ctx context.Context, senderID int64) ([]domain.Conversation, error)
	SwitchActive(ctx context.Context, senderID int64, conversationID uint) (*domain.Conversation, error)
	CountActiveBySender(ctx context.Context, senderID int64) (int64, error)
}
