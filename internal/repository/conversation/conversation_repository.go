// File: internal/repository/conversation/conversation_repository.go

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vmelnikov/relaybot/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")
var ErrNoActiveConversation = errors.New("sender has no active conversation")

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// CreateActive inserts a new active conversation for the sender. Any
// previously active conversation is deactivated in the same transaction,
// and the sender's active pointer is moved to the new row.
func (r *gormConversationRepository) CreateActive(ctx context.Context, senderID int64, title string) (*domain.Conversation, error) {
	if senderID == 0 {
		return nil, errors.New("invalid sender ID")
	}
	if err := r.validateTitle(title); err != nil {
		log.Printf("[ConversationRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	conversation := &domain.Conversation{SenderID: senderID, Title: title, IsActive: true}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Conversation{}).
			Where("sender_id = ? AND is_active = ?", senderID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}
		return r.upsertPointer(tx, senderID, conversation.ID)
	})
	if err != nil {
		log.Printf("[ConversationRepository] Database error creating conversation for sender %d: %v", senderID, err)
		return nil, errors.New("database error creating conversation")
	}

	log.Printf("[ConversationRepository] Conversation created with ID: %d for sender: %d", conversation.ID, senderID)
	return conversation, nil
}

// FindByID loads a conversation by its primary key.
func (r *gormConversationRepository) FindByID(ctx context.Context, conversationID uint) (*domain.Conversation, error) {
	if conversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}

	var conversation domain.Conversation
	err := r.db.WithContext(ctx).First(&conversation, conversationID).Error
	return r.handleFindError(err, &conversation, "FindByID")
}

// FindActiveBySender resolves the sender's active conversation through the
// active pointer. Returns ErrNoActiveConversation when the sender has never
// talked to the bot or every conversation has been superseded.
func (r *gormConversationRepository) FindActiveBySender(ctx context.Context, senderID int64) (*domain.Conversation, error) {
	if senderID == 0 {
		return nil, errors.New("invalid sender ID")
	}

	var pointer domain.ActivePointer
	err := r.db.WithContext(ctx).First(&pointer, "sender_id = ?", senderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveConversation
		}
		log.Printf("[ConversationRepository] Database error resolving active pointer for sender %d: %v", senderID, err)
		return nil, errors.New("database error resolving active conversation")
	}

	var conversation domain.Conversation
	err = r.db.WithContext(ctx).First(&conversation, pointer.ConversationID).Error
	return r.handleFindError(err, &conversation, "FindActiveBySender")
}

// ListBySender returns every conversation the sender owns, most recent
// first. An empty slice is not an error.
func (r *gormConversationRepository) ListBySender(ctx context.Context, senderID int64) ([]domain.Conversation, error) {
	if senderID == 0 {
		return nil, errors.New("invalid sender ID")
	}

	var conversations []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id DESC").
		Find(&conversations).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error listing conversations for sender %d: %v", senderID, err)
		return nil, errors.New("database error listing conversations")
	}

	return conversations, nil
}

// SwitchActive reactivates a conversation the sender owns. Ownership is
// checked inside the transaction so an id belonging to another sender is
// indistinguishable from a missing one. Switching to the conversation that
// is already active succeeds without touching any rows.
func (r *gormConversationRepository) SwitchActive(ctx context.Context, senderID int64, conversationID uint) (*domain.Conversation, error) {
	if senderID == 0 || conversationID == 0 {
		return nil, errors.New("invalid sender ID or conversation ID")
	}

	var target domain.Conversation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND sender_id = ?", conversationID, senderID).
			First(&target).Error; err != nil {
			return err
		}
		if target.IsActive {
			return nil
		}
		if err := tx.Model(&domain.Conversation{}).
			Where("sender_id = ? AND is_active = ?", senderID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Update("is_active", true).Error; err != nil {
			return err
		}
		target.IsActive = true
		return r.upsertPointer(tx, senderID, conversationID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		log.Printf("[ConversationRepository] Database error switching sender %d to conversation %d: %v", senderID, conversationID, err)
		return nil, errors.New("database error switching conversation")
	}

	log.Printf("[ConversationRepository] Sender %d switched to conversation %d", senderID, conversationID)
	return &target, nil
}

// CountActiveBySender counts conversations flagged active for a sender.
// The invariant keeps this at 0 or 1; the count is exposed so callers and
// tests can verify it directly.
func (r *gormConversationRepository) CountActiveBySender(ctx context.Context, senderID int64) (int64, error) {
	if senderID == 0 {
		return 0, errors.New("invalid sender ID")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Conversation{}).
		Where("sender_id = ? AND is_active = ?", senderID, true).
		Count(&count).Error
	if err != nil {
		log.Printf("[ConversationRepository] Database error counting active conversations for sender %d: %v", senderID, err)
		return 0, errors.New("database error counting active conversations")
	}

	return count, nil
}

// upsertPointer moves the sender's active pointer inside the caller's
// transaction.
func (r *gormConversationRepository) upsertPointer(tx *gorm.DB, senderID int64, conversationID uint) error {
	pointer := domain.ActivePointer{SenderID: senderID, ConversationID: conversationID}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sender_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"conversation_id"}),
	}).Create(&pointer).Error
}

// ===== VALIDATION HELPERS =====

func (r *gormConversationRepository) validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}
	if len(title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	return nil
}

// ===== ERROR HANDLING HELPERS =====

// handleFindError keeps technical detail in the log and returns either the
// not-found sentinel or a generic error to the caller.
func (r *gormConversationRepository) handleFindError(err error, conversation *domain.Conversation, operation string) (*domain.Conversation, error) {
	if err == nil {
		return conversation, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}

	log.Printf("[ConversationRepository] %s database error: %v", operation, err)
	return nil, errors.New("database query failed")
}
