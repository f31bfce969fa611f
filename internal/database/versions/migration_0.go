package versions

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type User struct {
	TelegramID int64  `gorm:"primaryKey"`
	Username   string
	FirstName  string
	LastName   string

	UpdatedAt time.Time

	Messages []Message    `gorm:"foreignKey:TelegramID;constraint:OnDelete:CASCADE"`
	Settings *BotSettings `gorm:"foreignKey:TelegramID;constraint:OnDelete:CASCADE"`
}

type Message struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID int64  `gorm:"index;not null"`
	Role       string `gorm:"size:20;not null"`
	Content    string `gorm:"not null"`

	CreatedAt time.Time
}

type BotSettings struct {
	TelegramID         int64 `gorm:"primaryKey"`
	GreetingMessage    string
	BotName            string
	ContextEnabled     bool
	MaxContextMessages int
}

func Migration0(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Message{}, &BotSettings{}); err != nil {
		return fmt.Errorf("initial migration failed: %w", err)
	}
	return nil
}
