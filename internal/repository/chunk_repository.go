package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

// ErrDimensionMismatch reports that the embedding width did not fit the
// target table's vector column; the caller may retry against the alternate
// provider table.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// Insert stores one chunk in the given provider table and fills in its id.
func (r *ChunkRepository) Insert(table string, chunk *model.Chunk) error {
	if err := validChunkTable(table); err != nil {
		return err
	}
	if err := r.db.Table(table).Create(chunk).Error; err != nil {
		if isDimensionError(err) {
			return fmt.Errorf("insert chunk into %s: %w", table, ErrDimensionMismatch)
		}
		return fmt.Errorf("insert chunk into %s failed: %w", table, err)
	}
	return nil
}

// NearestNeighbors returns the k chunks of the document closest to the
// query embedding, most similar first, using the store's native distance
// operator.
func (r *ChunkRepository) NearestNeighbors(table string, pdfID uint, query []float32, k int) ([]model.Chunk, error) {
	if err := validChunkTable(table); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 3
	}
	var chunks []model.Chunk
	err := r.db.
		Table(table).
		Select("id, pdf_id, chunk").
		Where("pdf_id = ?", pdfID).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:  "embedding <-> ?",
				Vars: []interface{}{pgvector.NewVector(query)},
			},
		}).
		Limit(k).
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("nearest neighbor search in %s failed: %w", table, err)
	}
	return chunks, nil
}

// ListByPDFID returns all chunks of a document in insertion order, without
// their embeddings.
func (r *ChunkRepository) ListByPDFID(table string, pdfID uint) ([]model.Chunk, error) {
	if err := validChunkTable(table); err != nil {
		return nil, err
	}
	var chunks []model.Chunk
	err := r.db.
		Table(table).
		Select("id, pdf_id, chunk").
		Where("pdf_id = ?", pdfID).
		Order("id ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("list chunks in %s failed: %w", table, err)
	}
	return chunks, nil
}

func (r *ChunkRepository) DeleteByPDFID(table string, pdfID uint) error {
	if err := validChunkTable(table); err != nil {
		return err
	}
	if err := r.db.Table(table).Where("pdf_id = ?", pdfID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks in %s failed: %w", table, err)
	}
	return nil
}

// validChunkTable guards the interpolated table name; only the two known
// provider tables are ever legal.
func validChunkTable(table string) error {
	if table != model.ChunkTableOllama && table != model.ChunkTableOpenAI {
		return fmt.Errorf("unknown chunk table %q", table)
	}
	return nil
}

// isDimensionError matches pgvector's "expected N dimensions, not M".
func isDimensionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "dimensions")
}
