package turn

import (
	"context"

	"github.com/vmelnikov/relaybot/internal/domain"
)

// TurnRepository handles the append-only turn log of a conversation.
type TurnRepository interface {
	Append(ctx context.Context, turn *domain.Turn) (*domain.Turn, error)
	FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Turn, error)
	CountByConversationID(ctx context.Context, conversationID uint) (int64, error)
}
