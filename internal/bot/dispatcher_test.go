package bot

import (
	"context"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vmelnikov/relaybot/internal/domain"
	conversationrepo "github.com/vmelnikov/relaybot/internal/repository/conversation"
	turnrepo "github.com/vmelnikov/relaybot/internal/repository/turn"
	"github.com/vmelnikov/relaybot/internal/services"
	"github.com/vmelnikov/relaybot/internal/services/ai"
)

type fakeCompleter struct {
	reply   string
	err     error
	history []domain.Turn
	calls   int
}

func (f *fakeCompleter) Complete(ctx context.Context, history []domain.Turn) (string, error) {
	f.calls++
	f.history = append([]domain.Turn(nil), history...)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSender struct {
	messages []string
	chatIDs  []int64
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.chatIDs = append(f.chatIDs, chatID)
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.messages)
	return f.messages[len(f.messages)-1]
}

func newTestDispatcher(t *testing.T, completer *fakeCompleter) (*Dispatcher, *fakeSender, *services.ConversationService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Turn{}, &domain.ActivePointer{}))

	store, err := services.NewConversationService(
		conversationrepo.NewConversationRepository(db),
		turnrepo.NewTurnRepository(db),
		&services.NoOpLogger{},
	)
	require.NoError(t, err)

	sender := &fakeSender{}
	dispatcher, err := NewDispatcher(store, completer, sender, &services.NoOpLogger{})
	require.NoError(t, err)
	return dispatcher, sender, store
}

func TestHandleMessageText(t *testing.T) {
	completer := &fakeCompleter{reply: "Hi there!"}
	dispatcher, sender, store := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "hello")

	require.Equal(t, 1, completer.calls)
	require.Len(t, completer.history, 1)
	require.Equal(t, domain.RoleUser, completer.history[0].Role)
	require.Equal(t, "hello", completer.history[0].Text)
	require.Equal(t, "Hi there!", sender.last(t))
	require.Equal(t, []int64{42}, sender.chatIDs)

	// Both turns were persisted in order.
	conversation, history, err := store.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.RoleUser, history[0].Role)
	require.Equal(t, domain.RoleModel, history[1].Role)
	require.Equal(t, "Hi there!", history[1].Text)
	require.NotZero(t, conversation.ID)
}

func TestHandleMessageTextCarriesFullHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	dispatcher, _, _ := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "first")
	dispatcher.HandleMessage(ctx, 42, "second")

	require.Len(t, completer.history, 3)
	require.Equal(t, "first", completer.history[0].Text)
	require.Equal(t, "ok", completer.history[1].Text)
	require.Equal(t, domain.RoleModel, completer.history[1].Role)
	require.Equal(t, "second", completer.history[2].Text)
}

func TestHandleMessageNewStartsFreshConversation(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	dispatcher, sender, store := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "first message")
	dispatcher.HandleMessage(ctx, 42, "/new")
	require.Equal(t, replyNewConversation, sender.last(t))

	dispatcher.HandleMessage(ctx, 42, "second message")

	conversations, err := store.ListConversations(ctx, 42)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	require.True(t, conversations[0].IsActive)
	require.False(t, conversations[1].IsActive)

	// The new active conversation does not inherit history.
	require.Len(t, completer.history, 1)
	require.Equal(t, "second message", completer.history[0].Text)
}

func TestHandleMessageStart(t *testing.T) {
	completer := &fakeCompleter{}
	dispatcher, sender, store := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "/start")

	require.Equal(t, replyWelcome, sender.last(t))
	require.Zero(t, completer.calls)
	conversations, err := store.ListConversations(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, conversations)
}

func TestHandleMessageHistoryEmpty(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t, &fakeCompleter{})

	dispatcher.HandleMessage(context.Background(), 42, "/history")

	require.Equal(t, replyNoConversations, sender.last(t))
}

func TestHandleMessageHistoryListsConversations(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	dispatcher, sender, _ := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "hello")
	dispatcher.HandleMessage(ctx, 42, "/new")
	dispatcher.HandleMessage(ctx, 42, "/history")

	reply := sender.last(t)
	require.Contains(t, reply, "Your saved conversations")
	require.Contains(t, reply, "(✅ active)")
}

func TestHandleMessageSwitch(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	dispatcher, sender, store := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "old history")
	first, _, err := store.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	dispatcher.HandleMessage(ctx, 42, "/new")

	dispatcher.HandleMessage(ctx, 42, "/switch "+strconv.FormatUint(uint64(first.ID), 10))
	require.Contains(t, sender.last(t), "Conversation switched")
	require.Contains(t, sender.last(t), first.Title)

	// The reactivated conversation carries its prior exchange.
	active, history, err := store.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, first.ID, active.ID)
	require.Len(t, history, 2)
}

func TestHandleMessageSwitchUnknownID(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	dispatcher, sender, store := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "hello")
	active, _, err := store.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)

	dispatcher.HandleMessage(ctx, 42, "/switch 9999")
	require.Equal(t, replySwitchNotFound, sender.last(t))

	// The active conversation is unchanged.
	stillActive, _, err := store.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, active.ID, stillActive.ID)
}

func TestHandleMessageSwitchBadFormat(t *testing.T) {
	dispatcher, sender, store := newTestDispatcher(t, &fakeCompleter{})
	ctx := context.Background()

	for _, text := range []string{"/switch", "/switch abc", "/switch 1 2", "/switch 0"} {
		dispatcher.HandleMessage(ctx, 42, text)
		require.Equal(t, replySwitchBadFormat, sender.last(t))
	}

	// Malformed commands never touch stored state.
	conversations, err := store.ListConversations(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, conversations)
}

func TestHandleMessageUpstreamErrorRelayed(t *testing.T) {
	completer := &fakeCompleter{err: ai.NewUpstreamError("completion", 429, "quota exceeded")}
	dispatcher, sender, store := newTestDispatcher(t, completer)
	ctx := context.Background()

	dispatcher.HandleMessage(ctx, 42, "hello")

	require.Equal(t, "Completion API error: quota exceeded", sender.last(t))

	// The failed model turn is never appended; the user turn is kept.
	_, history, err := store.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.RoleUser, history[0].Role)
}

func TestHandleMessageUnrecognizedResponse(t *testing.T) {
	completer := &fakeCompleter{err: ai.NewProviderError("completion", "unrecognized response shape", nil)}
	dispatcher, sender, _ := newTestDispatcher(t, completer)

	dispatcher.HandleMessage(context.Background(), 42, "hello")

	require.Equal(t, replyUnrecognizedShape, sender.last(t))
}

func TestHandleMessageIgnoresBlankText(t *testing.T) {
	dispatcher, sender, _ := newTestDispatcher(t, &fakeCompleter{})

	dispatcher.HandleMessage(context.Background(), 42, "   ")

	require.Empty(t, sender.messages)
}
