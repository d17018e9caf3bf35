// File: internal/services/conversation_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vmelnikov/relaybot/internal/domain"
	conversationrepo "github.com/vmelnikov/relaybot/internal/repository/conversation"
	turnrepo "github.com/vmelnikov/relaybot/internal/repository/turn"
	convstore "github.com/vmelnikov/relaybot/internal/services/conversation"
)

// ConversationService is the conversation store: it owns all conversation
// records and enforces the at-most-one-active-conversation-per-sender
// invariant. Create and switch transitions for one sender are serialized
// through a per-sender mutex on top of the repository's transactions.
type ConversationService struct {
	config           *convstore.Config
	conversationRepo conversationrepo.ConversationRepository
	turnRepo         turnrepo.TurnRepository
	logger           Logger

	mu          sync.Mutex
	senderLocks map[int64]*sync.Mutex
}

func NewConversationService(
	conversationRepo conversationrepo.ConversationRepository,
	turnRepo turnrepo.TurnRepository,
	logger Logger,
) (*ConversationService, error) {
	if conversationRepo == nil {
		return nil, convstore.NewValidationError("constructor", "conversation repository is required")
	}
	if turnRepo == nil {
		return nil, convstore.NewValidationError("constructor", "turn repository is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	config := convstore.DefaultConfig()
	if err := config.Validate(); err != nil {
		return nil, convstore.NewConfigError(err.Error())
	}

	return &ConversationService{
		config:           config,
		conversationRepo: conversationRepo,
		turnRepo:         turnRepo,
		logger:           logger,
		senderLocks:      make(map[int64]*sync.Mutex),
	}, nil
}

// lockSender serializes active-state transitions for one sender. Operations
// for different senders are fully independent.
func (s *ConversationService) lockSender(senderID int64) func() {
	s.mu.Lock()
	lock, ok := s.senderLocks[senderID]
	if !ok {
		lock = &sync.Mutex{}
		s.senderLocks[senderID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// GetOrCreateActive returns the sender's active conversation and its full
// history, lazily creating an empty conversation for first contact.
func (s *ConversationService) GetOrCreateActive(ctx context.Context, senderID int64) (*domain.Conversation, []domain.Turn, error) {
	if senderID == 0 {
		return nil, nil, convstore.NewValidationError("get_or_create_active", "sender ID is required")
	}

	unlock := s.lockSender(senderID)
	defer unlock()

	conversation, err := s.conversationRepo.FindActiveBySender(ctx, senderID)
	if err != nil {
		if !errors.Is(err, conversationrepo.ErrNoActiveConversation) {
			return nil, nil, convstore.NewStorageError("get_or_create_active", "could not resolve active conversation", err)
		}
		conversation, err = s.conversationRepo.CreateActive(ctx, senderID, s.newTitle())
		if err != nil {
			return nil, nil, convstore.NewStorageError("get_or_create_active", "could not create conversation", err)
		}
		s.logger.Info("created conversation on first contact", "sender_id", senderID, "conversation_id", conversation.ID)
		return conversation, []domain.Turn{}, nil
	}

	history, err := s.turnRepo.FindByConversationID(ctx, conversation.ID)
	if err != nil {
		return nil, nil, convstore.NewStorageError("get_or_create_active", "could not load history", err)
	}
	return conversation, history, nil
}

// StartNew deactivates the sender's current active conversation, if any,
// and creates a fresh empty one marked active. The deactivation is
// permanent; only an explicit switch brings an old conversation back.
func (s *ConversationService) StartNew(ctx context.Context, senderID int64) (*domain.Conversation, error) {
	if senderID == 0 {
		return nil, convstore.NewValidationError("start_new", "sender ID is required")
	}

	unlock := s.lockSender(senderID)
	defer unlock()

	conversation, err := s.conversationRepo.CreateActive(ctx, senderID, s.newTitle())
	if err != nil {
		return nil, convstore.NewStorageError("start_new", "could not create conversation", err)
	}

	s.logger.Info("started new conversation", "sender_id", senderID, "conversation_id", conversation.ID)
	return conversation, nil
}

// AppendTurn appends one turn to the named conversation. The conversation
// does not have to be the active one; switching reactivates old
// conversations with their history intact.
func (s *ConversationService) AppendTurn(ctx context.Context, conversationID uint, role domain.TurnRole, text string) error {
	if conversationID == 0 {
		return convstore.NewValidationError("append_turn", "conversation ID is required")
	}
	if !role.Valid() {
		return convstore.NewValidationError("append_turn", "role must be user or model")
	}
	if strings.TrimSpace(text) == "" {
		return convstore.NewValidationError("append_turn", "turn text cannot be empty")
	}
	if len(text) > s.config.MaxTurnLength {
		text = text[:s.config.MaxTurnLength]
	}

	if _, err := s.conversationRepo.FindByID(ctx, conversationID); err != nil {
		if errors.Is(err, conversationrepo.ErrConversationNotFound) {
			return convstore.NewNotFoundError("append_turn", 0, conversationID)
		}
		return convstore.NewStorageError("append_turn", "could not load conversation", err)
	}

	turn := &domain.Turn{ConversationID: conversationID, Role: role, Text: text}
	if _, err := s.turnRepo.Append(ctx, turn); err != nil {
		return convstore.NewStorageError("append_turn", "could not append turn", err)
	}
	return nil
}

// ListConversations returns the sender's conversations, most recent first.
func (s *ConversationService) ListConversations(ctx context.Context, senderID int64) ([]domain.Conversation, error) {
	if senderID == 0 {
		return nil, convstore.NewValidationError("list_conversations", "sender ID is required")
	}

	conversations, err := s.conversationRepo.ListBySender(ctx, senderID)
	if err != nil {
		return nil, convstore.NewStorageError("list_conversations", "could not list conversations", err)
	}
	return conversations, nil
}

// SwitchActive reactivates one of the sender's own conversations and
// returns its title for display. Ids owned by other senders report
// not-found; switching to the already-active conversation is a no-op that
// still succeeds.
func (s *ConversationService) SwitchActive(ctx context.Context, senderID int64, conversationID uint) (string, error) {
	if senderID == 0 || conversationID == 0 {
		return "", convstore.NewValidationError("switch_active", "sender ID and conversation ID are required")
	}

	unlock := s.lockSender(senderID)
	defer unlock()

	conversation, err := s.conversationRepo.SwitchActive(ctx, senderID, conversationID)
	if err != nil {
		if errors.Is(err, conversationrepo.ErrConversationNotFound) {
			return "", convstore.NewNotFoundError("switch_active", senderID, conversationID)
		}
		return "", convstore.NewStorageError("switch_active", "could not switch conversation", err)
	}

	s.logger.Info("switched active conversation", "sender_id", senderID, "conversation_id", conversationID)
	return conversation.Title, nil
}

// History returns the full turn sequence of one conversation in append
// order.
func (s *ConversationService) History(ctx context.Context, conversationID uint) ([]domain.Turn, error) {
	if conversationID == 0 {
		return nil, convstore.NewValidationError("history", "conversation ID is required")
	}

	turns, err := s.turnRepo.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, convstore.NewStorageError("history", "could not load history", err)
	}
	return turns, nil
}

func (s *ConversationService) newTitle() string {
	return s.config.TitlePrefix + time.Now().Format(s.config.TitleLayout)
}
