// File: internal/repository/turn/turn_repository.go

package turn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/vmelnikov/relaybot/internal/domain"
)

type gormTurnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) TurnRepository {
	return &gormTurnRepository{db: db}
}

// Append persists one turn. Appends are not idempotent; the caller must
// invoke this exactly once per logical turn.
func (r *gormTurnRepository) Append(ctx context.Context, turn *domain.Turn) (*domain.Turn, error) {
	if err := r.validateTurnInput(turn); err != nil {
		log.Printf("[TurnRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	err := r.db.WithContext(ctx).Create(turn).Error
	if err != nil {
		log.Printf("[TurnRepository] Database error appending turn for conversation %d: %v", turn.ConversationID, err)
		return nil, errors.New("database error appending turn")
	}

	return turn, nil
}

// FindByConversationID returns the full history in append order.
func (r *gormTurnRepository) FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Turn, error) {
	if conversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}

	var turns []domain.Turn
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&turns).Error
	if err != nil {
		log.Printf("[TurnRepository] Database error fetching turns for conversation %d: %v", conversationID, err)
		return nil, errors.New("database error fetching turns")
	}

	return turns, nil
}

// CountByConversationID counts the turns of one conversation.
func (r *gormTurnRepository) CountByConversationID(ctx context.Context, conversationID uint) (int64, error) {
	if conversationID == 0 {
		return 0, errors.New("invalid conversation ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Turn{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		log.Printf("[TurnRepository] Database error counting turns for conversation %d: %v", conversationID, err)
		return 0, errors.New("database error counting turns")
	}

	return count, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormTurnRepository) validateTurnInput(turn *domain.Turn) error {
	if turn == nil {
		return errors.New("turn cannot be nil")
	}
	if turn.ConversationID == 0 {
		return errors.New("conversation ID is required")
	}
	if !turn.Role.Valid() {
		return fmt.Errorf("invalid turn role %q", turn.Role)
	}
	if strings.TrimSpace(turn.Text) == "" {
		return errors.New("turn text cannot be empty")
	}
	if len(turn.Text) > 100000 {
		return errors.New("turn text too long")
	}
	return nil
}
