package database

import (
	"time"
)

const (
	RoleUser      string = "user"
	RoleAssistant string = "assistant"
)

const (
	DefaultGreeting           = "Привет! Я ваш AI-ассистент. Чем могу помочь?"
	DefaultBotName            = "AI Ассистент"
	DefaultMaxContextMessages = 10
)

type User struct {
	TelegramID int64  `gorm:"primaryKey" json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`

	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message    `gorm:"foreignKey:TelegramID;constraint:OnDelete:CASCADE" json:"-"`
	Settings *BotSettings `gorm:"foreignKey:TelegramID;constraint:OnDelete:CASCADE" json:"-"`
}

// Message rows are append-only; nothing in this service updates or deletes them.
type Message struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	TelegramID int64  `gorm:"index;not null" json:"telegram_id"`
	Role       string `gorm:"size:20;not null" json:"role"` // "user" or "assistant"
	Content    string `gorm:"not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

type BotSettings struct {
	TelegramID         int64  `gorm:"primaryKey" json:"telegram_id"`
	GreetingMessage    string `json:"greeting_message"`
	BotName            string `json:"bot_name"`
	ContextEnabled     bool   `json:"context_enabled"`
	MaxContextMessages int    `json:"max_context_messages"`
}

func DefaultSettings(telegramID int64) BotSettings {
	return BotSettings{
		TelegramID:         telegramID,
		GreetingMessage:    DefaultGreeting,
		BotName:            DefaultBotName,
		ContextEnabled:     true,
		MaxContextMessages: DefaultMaxContextMessages,
	}
}
