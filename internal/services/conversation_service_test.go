package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vmelnikov/relaybot/internal/domain"
	conversationrepo "github.com/vmelnikov/relaybot/internal/repository/conversation"
	turnrepo "github.com/vmelnikov/relaybot/internal/repository/turn"
	convstore "github.com/vmelnikov/relaybot/internal/services/conversation"
)

func newTestConversationService(t *testing.T) (*ConversationService, conversationrepo.ConversationRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Turn{}, &domain.ActivePointer{}))

	convRepo := conversationrepo.NewConversationRepository(db)
	service, err := NewConversationService(convRepo, turnrepo.NewTurnRepository(db), &NoOpLogger{})
	require.NoError(t, err)
	return service, convRepo
}

func TestGetOrCreateActiveFirstContact(t *testing.T) {
	service, repo := newTestConversationService(t)
	ctx := context.Background()

	count, err := repo.CountActiveBySender(ctx, 42)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	conversation, history, err := service.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.True(t, conversation.IsActive)
	require.Contains(t, conversation.Title, "New chat: ")
	require.Empty(t, history)

	// Second call returns the same conversation, not a new one.
	again, _, err := service.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, conversation.ID, again.ID)

	count, err = repo.CountActiveBySender(ctx, 42)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestStartNewTwiceYieldsDistinctConversations(t *testing.T) {
	service, repo := newTestConversationService(t)
	ctx := context.Background()

	first, err := service.StartNew(ctx, 42)
	require.NoError(t, err)
	second, err := service.StartNew(ctx, 42)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	conversations, err := service.ListConversations(ctx, 42)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	require.Equal(t, second.ID, conversations[0].ID)
	require.True(t, conversations[0].IsActive)
	require.Equal(t, first.ID, conversations[1].ID)
	require.False(t, conversations[1].IsActive)

	count, err := repo.CountActiveBySender(ctx, 42)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestAppendAlternatingTurns(t *testing.T) {
	service, _ := newTestConversationService(t)
	ctx := context.Background()

	conversation, _, err := service.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)

	const n = 4
	for i := 0; i < n; i++ {
		require.NoError(t, service.AppendTurn(ctx, conversation.ID, domain.RoleUser, fmt.Sprintf("question %d", i)))
		require.NoError(t, service.AppendTurn(ctx, conversation.ID, domain.RoleModel, fmt.Sprintf("answer %d", i)))
	}

	_, history, err := service.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Len(t, history, 2*n)
	for i, turn := range history {
		if i%2 == 0 {
			require.Equal(t, domain.RoleUser, turn.Role)
		} else {
			require.Equal(t, domain.RoleModel, turn.Role)
		}
	}
}

func TestAppendTurnUnknownConversation(t *testing.T) {
	service, _ := newTestConversationService(t)

	err := service.AppendTurn(context.Background(), 9999, domain.RoleUser, "hello")
	require.True(t, convstore.IsNotFound(err))
}

func TestAppendTurnToInactiveConversation(t *testing.T) {
	service, _ := newTestConversationService(t)
	ctx := context.Background()

	old, err := service.StartNew(ctx, 42)
	require.NoError(t, err)
	_, err = service.StartNew(ctx, 42)
	require.NoError(t, err)

	// Appends do not require the conversation to be the active one.
	require.NoError(t, service.AppendTurn(ctx, old.ID, domain.RoleUser, "late append"))

	history, err := service.History(ctx, old.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestSwitchActiveCrossSender(t *testing.T) {
	service, repo := newTestConversationService(t)
	ctx := context.Background()

	mine, err := service.StartNew(ctx, 42)
	require.NoError(t, err)
	theirs, err := service.StartNew(ctx, 43)
	require.NoError(t, err)

	_, err = service.SwitchActive(ctx, 42, theirs.ID)
	require.True(t, convstore.IsNotFound(err))

	active, err := repo.FindActiveBySender(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, mine.ID, active.ID)
	active, err = repo.FindActiveBySender(ctx, 43)
	require.NoError(t, err)
	require.Equal(t, theirs.ID, active.ID)
}

func TestSwitchActiveKeepsHistoryIntact(t *testing.T) {
	service, _ := newTestConversationService(t)
	ctx := context.Background()

	first, err := service.StartNew(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, service.AppendTurn(ctx, first.ID, domain.RoleUser, "hello"))
	require.NoError(t, service.AppendTurn(ctx, first.ID, domain.RoleModel, "Hi!"))

	_, err = service.StartNew(ctx, 42)
	require.NoError(t, err)

	title, err := service.SwitchActive(ctx, 42, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.Title, title)

	conversation, history, err := service.GetOrCreateActive(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, first.ID, conversation.ID)
	require.Len(t, history, 2)
	require.Equal(t, "hello", history[0].Text)
	require.Equal(t, "Hi!", history[1].Text)
}

func TestAppendTurnValidation(t *testing.T) {
	service, _ := newTestConversationService(t)
	ctx := context.Background()

	conversation, err := service.StartNew(ctx, 42)
	require.NoError(t, err)

	require.Error(t, service.AppendTurn(ctx, conversation.ID, "narrator", "x"))
	require.Error(t, service.AppendTurn(ctx, conversation.ID, domain.RoleUser, "  "))
	require.Error(t, service.AppendTurn(ctx, 0, domain.RoleUser, "x"))
}
