package model

import "time"

// ChunkSpan links a chunk to a rectangular region on one page of its PDF,
// in PDF coordinate space. At most one span exists per chunk; the first
// located match wins and the row is never mutated.
type ChunkSpan struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ChunkTable string    `gorm:"size:32;not null;uniqueIndex:idx_chunk_span,priority:1" json:"chunk_table"`
	ChunkID    uint      `gorm:"not null;uniqueIndex:idx_chunk_span,priority:2" json:"chunk_id"`
	PDFID      uint      `gorm:"column:pdf_id;not null;index" json:"pdf_id"`
	PageNumber int       `gorm:"not null" json:"page_number"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ChunkSpan) TableName() string { return "pdf_chunk_spans" }
