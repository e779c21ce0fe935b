package model

import "time"

// ExportArchive keeps a copy of every template document a user exported.
type ExportArchive struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"index"`
	FileName      string
	TemplateCount int
	Document      []byte
	CreatedAt     time.Time
}
