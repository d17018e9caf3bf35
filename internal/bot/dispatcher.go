// File: internal/bot/dispatcher.go
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmelnikov/relaybot/internal/domain"
	"github.com/vmelnikov/relaybot/internal/services"
	"github.com/vmelnikov/relaybot/internal/services/ai"
	convstore "github.com/vmelnikov/relaybot/internal/services/conversation"
	"github.com/vmelnikov/relaybot/internal/services/telegram"
)

// ConversationStore is the slice of the conversation service the
// dispatcher needs.
type ConversationStore interface {
	GetOrCreateActive(ctx context.Context, senderID int64) (*domain.Conversation, []domain.Turn, error)
	StartNew(ctx context.Context, senderID int64) (*domain.Conversation, error)
	AppendTurn(ctx context.Context, conversationID uint, role domain.TurnRole, text string) error
	ListConversations(ctx context.Context, senderID int64) ([]domain.Conversation, error)
	SwitchActive(ctx context.Context, senderID int64, conversationID uint) (string, error)
}

// Completer relays a full history to the completion API.
type Completer interface {
	Complete(ctx context.Context, history []domain.Turn) (string, error)
}

const (
	replyWelcome = "*Hi! I am a bot with memory.*\n\n" +
		"I remember our conversation.\n\n" +
		"*Commands:*\n" +
		"/new - Start a new conversation\n" +
		"/history - Show saved conversations"
	replyNewConversation   = "🆕 *Started a new conversation.* The previous one is saved."
	replyNoConversations   = "You have no saved conversations yet."
	replySwitched          = "🔄 *Conversation switched* to: *%s*"
	replySwitchNotFound    = "❌ No conversation with that ID, or it does not belong to you."
	replySwitchBadFormat   = "❌ Wrong command format. Use: */switch ID*"
	replyInternalError     = "Something went wrong on our end. Please try again."
	replyUpstreamError     = "Completion API error: %s"
	replyUnrecognizedShape = "The completion API returned an unrecognized response. Please try again."
)

// Dispatcher parses the leading token of inbound text against the fixed
// command set and drives the conversation store. Every inbound message is
// answered; failures become user-visible replies, never dropped requests.
type Dispatcher struct {
	store     ConversationStore
	completer Completer
	sender    telegram.Sender
	logger    services.Logger
}

func NewDispatcher(store ConversationStore, completer Completer, sender telegram.Sender, logger services.Logger) (*Dispatcher, error) {
	if store == nil {
		return nil, convstore.NewValidationError("constructor", "conversation store is required")
	}
	if completer == nil {
		return nil, convstore.NewValidationError("constructor", "completer is required")
	}
	if sender == nil {
		return nil, convstore.NewValidationError("constructor", "sender is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Dispatcher{store: store, completer: completer, sender: sender, logger: logger}, nil
}

// HandleMessage processes one inbound message from a sender.
func (d *Dispatcher) HandleMessage(ctx context.Context, senderID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	fields := strings.Fields(text)
	switch fields[0] {
	case "/start":
		d.reply(ctx, senderID, replyWelcome)
	case "/new":
		d.handleNew(ctx, senderID)
	case "/history":
		d.handleHistory(ctx, senderID)
	case "/switch":
		d.handleSwitch(ctx, senderID, fields)
	default:
		d.handleText(ctx, senderID, text)
	}
}

func (d *Dispatcher) handleNew(ctx context.Context, senderID int64) {
	if _, err := d.store.StartNew(ctx, senderID); err != nil {
		d.logger.Error("start_new failed", "sender_id", senderID, "error", err)
		d.reply(ctx, senderID, replyInternalError)
		return
	}
	d.reply(ctx, senderID, replyNewConversation)
}

func (d *Dispatcher) handleHistory(ctx context.Context, senderID int64) {
	conversations, err := d.store.ListConversations(ctx, senderID)
	if err != nil {
		d.logger.Error("list_conversations failed", "sender_id", senderID, "error", err)
		d.reply(ctx, senderID, replyInternalError)
		return
	}
	if len(conversations) == 0 {
		d.reply(ctx, senderID, replyNoConversations)
		return
	}
	d.reply(ctx, senderID, FormatConversationList(conversations))
}

func (d *Dispatcher) handleSwitch(ctx context.Context, senderID int64, fields []string) {
	if len(fields) != 2 {
		d.reply(ctx, senderID, replySwitchBadFormat)
		return
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil || id == 0 {
		d.reply(ctx, senderID, replySwitchBadFormat)
		return
	}

	title, err := d.store.SwitchActive(ctx, senderID, uint(id))
	if err != nil {
		if convstore.IsNotFound(err) {
			d.reply(ctx, senderID, replySwitchNotFound)
			return
		}
		d.logger.Error("switch_active failed", "sender_id", senderID, "conversation_id", id, "error", err)
		d.reply(ctx, senderID, replyInternalError)
		return
	}
	d.reply(ctx, senderID, fmt.Sprintf(replySwitched, title))
}

// handleText is the conversational path: resolve the active conversation,
// append the user turn, relay the full history to the completion API, and
// on success persist and relay the model reply. An API failure is relayed
// as a message but never appended to history.
func (d *Dispatcher) handleText(ctx context.Context, senderID int64, text string) {
	conversation, history, err := d.store.GetOrCreateActive(ctx, senderID)
	if err != nil {
		d.logger.Error("get_or_create_active failed", "sender_id", senderID, "error", err)
		d.reply(ctx, senderID, replyInternalError)
		return
	}

	if err := d.store.AppendTurn(ctx, conversation.ID, domain.RoleUser, text); err != nil {
		d.logger.Error("append user turn failed", "conversation_id", conversation.ID, "error", err)
		d.reply(ctx, senderID, replyInternalError)
		return
	}
	history = append(history, domain.Turn{ConversationID: conversation.ID, Role: domain.RoleUser, Text: text})

	replyText, err := d.completer.Complete(ctx, history)
	if err != nil {
		d.logger.Warn("completion failed", "conversation_id", conversation.ID, "error", err)
		if msg, ok := ai.UpstreamMessage(err); ok {
			d.reply(ctx, senderID, fmt.Sprintf(replyUpstreamError, msg))
			return
		}
		d.reply(ctx, senderID, replyUnrecognizedShape)
		return
	}

	if err := d.store.AppendTurn(ctx, conversation.ID, domain.RoleModel, replyText); err != nil {
		// The reply is still relayed; losing the persisted model turn is
		// logged, not surfaced.
		d.logger.Error("append model turn failed", "conversation_id", conversation.ID, "error", err)
	}

	d.reply(ctx, senderID, replyText)
}

func (d *Dispatcher) reply(ctx context.Context, senderID int64, text string) {
	if err := d.sender.SendMessage(ctx, senderID, text); err != nil {
		d.logger.Error("outbound send failed", "sender_id", senderID, "error", err)
	}
}
