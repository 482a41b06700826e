package model

import "github.com/pgvector/pgvector-go"

// Chunk is a paragraph-aligned slice of a document's page-marked text.
// The raw text keeps its [PAGE_n] and [CHUNK_PARAGRAPHS_a-b] markers so the
// stored rows stay byte-compatible with the original tables.
//
// Chunks live in a per-provider table (ChunkTable), so every query must set
// the table name explicitly; there is no gorm TableName here on purpose.
type Chunk struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PDFID     uint            `gorm:"column:pdf_id;not null;index" json:"pdf_id"`
	Text      string          `gorm:"column:chunk;type:text;not null" json:"text"`
	Embedding pgvector.Vector `gorm:"column:embedding" json:"-"`
}

// SetEmbedding wraps a raw vector in the pgvector column type.
func (c *Chunk) SetEmbedding(v []float32) {
	c.Embedding = pgvector.NewVector(v)
}
