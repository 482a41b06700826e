package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

type SpanRepository struct {
	db *gorm.DB
}

func NewSpanRepository(db *gorm.DB) *SpanRepository {
	return &SpanRepository{db: db}
}

// GetByChunk returns the stored span for one chunk, or nil when the locator
// never found that chunk on a page.
func (r *SpanRepository) GetByChunk(chunkTable string, chunkID uint) (*model.ChunkSpan, error) {
	var span model.ChunkSpan
	err := r.db.
		Where("chunk_table = ? AND chunk_id = ?", chunkTable, chunkID).
		First(&span).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chunk span failed: %w", err)
	}
	return &span, nil
}

// ListByPDFID returns every span of a document keyed by chunk id, so the
// assembler can annotate a batch of retrieved chunks with one query.
func (r *SpanRepository) ListByPDFID(chunkTable string, pdfID uint) (map[uint]model.ChunkSpan, error) {
	var spans []model.ChunkSpan
	err := r.db.
		Where("chunk_table = ? AND pdf_id = ?", chunkTable, pdfID).
		Find(&spans).Error
	if err != nil {
		return nil, fmt.Errorf("list chunk spans failed: %w", err)
	}
	byChunk := make(map[uint]model.ChunkSpan, len(spans))
	for _, s := range spans {
		byChunk[s.ChunkID] = s
	}
	return byChunk, nil
}

// CreateIfAbsent stores a span once; a concurrent or repeated locate run for
// the same chunk is silently ignored.
func (r *SpanRepository) CreateIfAbsent(span *model.ChunkSpan) error {
	err := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chunk_table"}, {Name: "chunk_id"}},
			DoNothing: true,
		}).
		Create(span).Error
	if err != nil {
		return fmt.Errorf("create chunk span failed: %w", err)
	}
	return nil
}

func (r *SpanRepository) DeleteByPDFID(pdfID uint) error {
	err := r.db.
		Where("pdf_id = ?", pdfID).
		Delete(&model.ChunkSpan{}).Error
	if err != nil {
		return fmt.Errorf("delete chunk spans failed: %w", err)
	}
	return nil
}
