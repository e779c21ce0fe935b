package model

import "time"

// User stores Telegram user metadata and notification preferences.
type User struct {
	ID            uint  `gorm:"primaryKey"`
	TelegramID    int64 `gorm:"uniqueIndex"`
	ChatID        int64
	FirstName     string
	LastName      string
	Username      string
	AgendaEnabled bool `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Exports       []ExportArchive `gorm:"foreignKey:UserID"`
}
