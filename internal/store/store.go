package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chatbot-backend/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLite only supports one writer at a time, so we need a lock
// whenever we write to the database
var dbMutex sync.Mutex

// Store owns all reads and writes against the users, messages, and
// bot_settings tables.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpsertUser inserts the user or refreshes its profile fields, keyed by
// telegram id. Last write wins on the name fields.
func (s *Store) UpsertUser(ctx context.Context, telegramID int64, username, firstName, lastName string) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	user := database.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		UpdatedAt:  time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("could not upsert user %d: %w", telegramID, err)
	}
	return nil
}

// AppendMessage adds one row to the append-only message log.
func (s *Store) AppendMessage(ctx context.Context, telegramID int64, role, content string) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	message := database.Message{
		TelegramID: telegramID,
		Role:       role,
		Content:    content,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return fmt.Errorf("could not save %s message for user %d: %w", role, telegramID, err)
	}
	return nil
}

// RecentMessages returns up to limit most recent messages for the user in
// chronological order (oldest first). The underlying query fetches newest
// first, so the result is reversed before returning.
func (s *Store) RecentMessages(ctx context.Context, telegramID int64, limit int) ([]database.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	var messages []database.Message
	err := s.db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("could not fetch messages for user %d: %w", telegramID, err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetUser returns the user row, or gorm.ErrRecordNotFound if the chat id has
// never been seen.
func (s *Store) GetUser(ctx context.Context, telegramID int64) (database.User, error) {
	var user database.User
	err := s.db.WithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error
	return user, err
}

// CountMessages returns the total number of messages stored for the user.
func (s *Store) CountMessages(ctx context.Context, telegramID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Message{}).
		Where("telegram_id = ?", telegramID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("could not count messages for user %d: %w", telegramID, err)
	}
	return count, nil
}

// GetOrCreateSettings returns the settings row for the user, inserting one
// with defaults on first access. FirstOrCreate keeps the lazy create a single
// statement, so the one-row-per-user invariant holds even if the transport
// runs handlers concurrently.
func (s *Store) GetOrCreateSettings(ctx context.Context, telegramID int64) (database.BotSettings, error) {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	var settings database.BotSettings
	err := s.db.WithContext(ctx).
		Where(database.BotSettings{TelegramID: telegramID}).
		Attrs(database.DefaultSettings(telegramID)).
		FirstOrCreate(&settings).Error
	if err != nil {
		return database.BotSettings{}, fmt.Errorf("could not resolve settings for user %d: %w", telegramID, err)
	}
	return settings, nil
}

// UpdateSettings overwrites the mutable settings fields for the user. The row
// is created first if the user has never been seen.
func (s *Store) UpdateSettings(ctx context.Context, settings database.BotSettings) error {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"greeting_message", "bot_name", "context_enabled", "max_context_messages"}),
	}).Create(&settings).Error
	if err != nil {
		return fmt.Errorf("could not update settings for user %d: %w", settings.TelegramID, err)
	}
	return nil
}

// UserWithStats is a user row joined with aggregates over its message log.
type UserWithStats struct {
	database.User
	MessageCount int64 `json:"message_count"`
}

// ListUsers returns all known users with their message counts, most recently
// active first.
func (s *Store) ListUsers(ctx context.Context) ([]UserWithStats, error) {
	var users []UserWithStats
	err := s.db.WithContext(ctx).
		Model(&database.User{}).
		Select("users.*, count(messages.id) as message_count").
		Joins("left join messages on messages.telegram_id = users.telegram_id").
		Group("users.telegram_id").
		Order("users.updated_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	return users, nil
}

// Messages returns a chronological page of the user's message log.
func (s *Store) Messages(ctx context.Context, telegramID int64, limit, offset int) ([]database.Message, error) {
	var messages []database.Message
	err := s.db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("could not fetch message page for user %d: %w", telegramID, err)
	}
	return messages, nil
}
