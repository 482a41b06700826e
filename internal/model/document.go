package model

import "time"

// Document is an uploaded PDF. Filename and ContentHash are immutable after
// creation; EmbeddingType may be rewritten once if the chunk insert had to
// fall back to the alternate provider table.
type Document struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Filename      string    `gorm:"type:text;not null" json:"filename"`
	ContentHash   string    `gorm:"size:64;index" json:"content_hash"`
	EmbeddingType string    `gorm:"size:16;not null" json:"embedding_type"`
	PageCount     int       `json:"page_count"`
	StoragePath   string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Document) TableName() string { return "pdfs" }
