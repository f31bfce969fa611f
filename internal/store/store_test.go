package store

import (
	"context"
	"fmt"
	"testing"

	"chatbot-backend/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())

	return NewStore(db)
}

func TestUpsertUserLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 42, "old_handle", "Old", "Name"))
	require.NoError(t, s.UpsertUser(ctx, 42, "new_handle", "New", "Name"))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	assert.Equal(t, int64(42), users[0].TelegramID)
	assert.Equal(t, "new_handle", users[0].Username)
	assert.Equal(t, "New", users[0].FirstName)
}

func TestRecentMessagesChronologicalAndCapped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 7, "u", "", ""))
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.AppendMessage(ctx, 7, database.RoleUser, fmt.Sprintf("msg %d", i)))
	}

	messages, err := s.RecentMessages(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// most recent 3, oldest first
	assert.Equal(t, "msg 3", messages[0].Content)
	assert.Equal(t, "msg 4", messages[1].Content)
	assert.Equal(t, "msg 5", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestRecentMessagesEmptyCases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	messages, err := s.RecentMessages(ctx, 999, 10)
	require.NoError(t, err)
	assert.Empty(t, messages)

	messages, err = s.RecentMessages(ctx, 999, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestGetOrCreateSettingsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 42, "u", "", ""))

	first, err := s.GetOrCreateSettings(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, database.DefaultGreeting, first.GreetingMessage)
	assert.Equal(t, database.DefaultBotName, first.BotName)
	assert.True(t, first.ContextEnabled)
	assert.Equal(t, database.DefaultMaxContextMessages, first.MaxContextMessages)

	second, err := s.GetOrCreateSettings(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, s.db.Model(&database.BotSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSettingsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 42, "u", "", ""))
	_, err := s.GetOrCreateSettings(ctx, 42)
	require.NoError(t, err)

	updated := database.BotSettings{
		TelegramID:         42,
		GreetingMessage:    "Добро пожаловать!",
		BotName:            "Помощник",
		ContextEnabled:     false,
		MaxContextMessages: 5,
	}
	require.NoError(t, s.UpdateSettings(ctx, updated))

	settings, err := s.GetOrCreateSettings(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, updated, settings)
}

func TestListUsersMessageCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 1, "a", "", ""))
	require.NoError(t, s.UpsertUser(ctx, 2, "b", "", ""))
	require.NoError(t, s.AppendMessage(ctx, 1, database.RoleUser, "hi"))
	require.NoError(t, s.AppendMessage(ctx, 1, database.RoleAssistant, "hello"))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	counts := map[int64]int64{}
	for _, u := range users {
		counts[u.TelegramID] = u.MessageCount
	}
	assert.Equal(t, int64(2), counts[1])
	assert.Equal(t, int64(0), counts[2])
}

func TestMessagesPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, 9, "u", "", ""))
	for i := 1; i <= 4; i++ {
		require.NoError(t, s.AppendMessage(ctx, 9, database.RoleUser, fmt.Sprintf("msg %d", i)))
	}

	page, err := s.Messages(ctx, 9, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "msg 2", page[0].Content)
	assert.Equal(t, "msg 3", page[1].Content)
}
