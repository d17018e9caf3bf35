package turn

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vmelnikov/relaybot/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Conversation{}, &domain.Turn{}, &domain.ActivePointer{}))
	return db
}

func TestAppendAndFetchInOrder(t *testing.T) {
	repo := NewTurnRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleModel
		}
		_, err := repo.Append(ctx, &domain.Turn{ConversationID: 1, Role: role, Text: fmt.Sprintf("turn %d", i)})
		require.NoError(t, err)
	}

	turns, err := repo.FindByConversationID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	for i, turn := range turns {
		require.Equal(t, fmt.Sprintf("turn %d", i), turn.Text)
	}

	count, err := repo.CountByConversationID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestAppendIsNotIdempotent(t *testing.T) {
	repo := NewTurnRepository(newTestDB(t))
	ctx := context.Background()

	turn := domain.Turn{ConversationID: 1, Role: domain.RoleUser, Text: "same text"}
	for i := 0; i < 2; i++ {
		fresh := turn
		_, err := repo.Append(ctx, &fresh)
		require.NoError(t, err)
	}

	count, err := repo.CountByConversationID(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestAppendValidation(t *testing.T) {
	repo := NewTurnRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Append(ctx, nil)
	require.Error(t, err)

	_, err = repo.Append(ctx, &domain.Turn{ConversationID: 0, Role: domain.RoleUser, Text: "x"})
	require.Error(t, err)

	_, err = repo.Append(ctx, &domain.Turn{ConversationID: 1, Role: "system", Text: "x"})
	require.Error(t, err)

	_, err = repo.Append(ctx, &domain.Turn{ConversationID: 1, Role: domain.RoleUser, Text: "   "})
	require.Error(t, err)
}

func TestFindByConversationIDEmpty(t *testing.T) {
	repo := NewTurnRepository(newTestDB(t))

	turns, err := repo.FindByConversationID(context.Background(), 7)
	require.NoError(t, err)
	require.Empty(t, turns)
}
