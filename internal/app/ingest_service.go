package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/ai"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/chunker"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/markers"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/pdfextract"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/repository"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrNoExtractableText   = errors.New("no extractable text in pdf")
	ErrDocumentNotFound    = errors.New("document not found")

	// ErrExtractionFailed and ErrEmbeddingFailed tag which ingestion stage
	// broke, so the operator can tell an unreadable pdf from an unreachable
	// embedding backend or vector store.
	ErrExtractionFailed = errors.New("pdf extraction failed")
	ErrEmbeddingFailed  = errors.New("embed and store failed")
)

// TextExtractor produces the page-marked text of a stored PDF.
type TextExtractor interface {
	Extract(path string) (*pdfextract.Result, error)
}

// DocumentStore persists document metadata.
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	List() ([]model.Document, error)
	UpdateEmbeddingType(id uint, provider string) error
	DeleteByID(id uint) error
}

// ChunkStore persists chunk text and embeddings in per-provider tables.
type ChunkStore interface {
	Insert(table string, chunk *model.Chunk) error
	NearestNeighbors(table string, pdfID uint, query []float32, k int) ([]model.Chunk, error)
	ListByPDFID(table string, pdfID uint) ([]model.Chunk, error)
	DeleteByPDFID(table string, pdfID uint) error
}

// SpanStore persists located bounding boxes, one per chunk at most.
type SpanStore interface {
	GetByChunk(chunkTable string, chunkID uint) (*model.ChunkSpan, error)
	ListByPDFID(chunkTable string, pdfID uint) (map[uint]model.ChunkSpan, error)
	CreateIfAbsent(span *model.ChunkSpan) error
	DeleteByPDFID(pdfID uint) error
}

// SpanTaskPublisher enqueues background span-location work.
type SpanTaskPublisher interface {
	Publish(ctx context.Context, task model.SpanLocateTask) error
}

// EmbeddingProviders resolves a provider name to a configured backend.
type EmbeddingProviders interface {
	Get(name string) (ai.Provider, error)
}

// AnswerStore caches finished answers per document, provider and question.
type AnswerStore interface {
	Get(ctx context.Context, pdfID uint, provider, question string) (*model.ChatAnswer, bool, error)
	Set(ctx context.Context, pdfID uint, provider, question string, answer *model.ChatAnswer) error
	DeleteByPDF(ctx context.Context, pdfID uint) error
}

type IngestService struct {
	docs       DocumentStore
	chunks     ChunkStore
	spans      SpanStore
	providers  EmbeddingProviders
	publisher  SpanTaskPublisher
	answers    AnswerStore
	extractor  TextExtractor
	chunker    *chunker.Chunker
	storageDir string
}

func NewIngestService(
	docs DocumentStore,
	chunks ChunkStore,
	spans SpanStore,
	providers EmbeddingProviders,
	publisher SpanTaskPublisher,
	answers AnswerStore,
	extractor TextExtractor,
	chunkSplitter *chunker.Chunker,
	storageDir string,
) *IngestService {
	return &IngestService{
		docs:       docs,
		chunks:     chunks,
		spans:      spans,
		providers:  providers,
		publisher:  publisher,
		answers:    answers,
		extractor:  extractor,
		chunker:    chunkSplitter,
		storageDir: storageDir,
	}
}

// IngestInput carries one uploaded PDF and the embedding provider to index
// it with.
type IngestInput struct {
	Filename string
	Provider string
	File     io.Reader
}

type IngestResult struct {
	Document   model.Document `json:"document"`
	ChunkCount int            `json:"chunk_count"`
	UsedOCR    bool           `json:"used_ocr"`
}

// Ingest runs the full pipeline: store the file, extract page-marked text,
// chunk, embed, persist, then enqueue span location in the background.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" || input.File == nil {
		return nil, ErrInvalidInput
	}
	provider := strings.TrimSpace(input.Provider)
	if !model.ValidProvider(provider) {
		return nil, ErrUnsupportedProvider
	}

	path, hash, err := s.saveUpload(input.File)
	if err != nil {
		return nil, err
	}

	extracted, err := s.extractor.Extract(path)
	if err != nil {
		s.discard(path)
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	if strings.TrimSpace(markers.Strip(extracted.Text)) == "" {
		s.discard(path)
		return nil, ErrNoExtractableText
	}

	texts := s.chunker.Split(extracted.Text)
	if len(texts) == 0 {
		s.discard(path)
		return nil, ErrNoExtractableText
	}

	doc := &model.Document{
		Filename:      filename,
		ContentHash:   hash,
		EmbeddingType: provider,
		PageCount:     extracted.PageCount,
		StoragePath:   path,
	}
	if err := s.docs.Create(doc); err != nil {
		s.discard(path)
		return nil, err
	}

	if err := s.embedAndStore(ctx, doc, provider, texts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}

	// Best effort; chunks without spans just have no coordinates yet.
	if err := s.publisher.Publish(ctx, model.SpanLocateTask{PDFID: doc.ID}); err != nil {
		log.Printf("enqueue span locate for pdf %d failed: %v", doc.ID, err)
	}

	return &IngestResult{
		Document:   *doc,
		ChunkCount: len(texts),
		UsedOCR:    extracted.UsedOCR,
	}, nil
}

// embedAndStore embeds every chunk and inserts it into the provider's table.
// A dimension mismatch on the first insert switches the whole document to
// the alternate provider table and records the switch on the document row.
func (s *IngestService) embedAndStore(ctx context.Context, doc *model.Document, provider string, texts []string) error {
	backend, err := s.providers.Get(provider)
	if err != nil {
		return err
	}
	table := model.ChunkTable(provider)

	for i, text := range texts {
		embedding, err := backend.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed chunk %d failed: %w", i+1, err)
		}

		chunk := &model.Chunk{PDFID: doc.ID, Text: text}
		chunk.SetEmbedding(embedding)
		err = s.chunks.Insert(table, chunk)
		if errors.Is(err, repository.ErrDimensionMismatch) && i == 0 {
			alternate := model.AlternateProvider(provider)
			table = model.ChunkTable(alternate)
			if err = s.chunks.Insert(table, chunk); err != nil {
				return err
			}
			if err := s.docs.UpdateEmbeddingType(doc.ID, alternate); err != nil {
				return err
			}
			doc.EmbeddingType = alternate
			provider = alternate
			log.Printf("pdf %d: embedding width fits %s, switched provider record", doc.ID, table)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *IngestService) List() ([]model.Document, error) {
	return s.docs.List()
}

func (s *IngestService) Get(id uint) (*model.Document, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Delete removes the document row, its chunks in both provider tables, its
// spans, cached answers and the stored file.
func (s *IngestService) Delete(ctx context.Context, id uint) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}

	for _, table := range []string{model.ChunkTableOllama, model.ChunkTableOpenAI} {
		if err := s.chunks.DeleteByPDFID(table, id); err != nil {
			return err
		}
	}
	if err := s.spans.DeleteByPDFID(id); err != nil {
		return err
	}
	if err := s.answers.DeleteByPDF(ctx, id); err != nil {
		log.Printf("drop cached answers for pdf %d failed: %v", id, err)
	}
	if doc.StoragePath != "" {
		s.discard(doc.StoragePath)
	}
	return s.docs.DeleteByID(id)
}

// Reprocess re-enqueues span location for a document, picking up chunks the
// worker has not located yet.
func (s *IngestService) Reprocess(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, model.SpanLocateTask{PDFID: id}); err != nil {
		return fmt.Errorf("enqueue span locate failed: %w", err)
	}
	return nil
}

// saveUpload streams the file to disk under a fresh uuid name and hashes it
// on the way through.
func (s *IngestService) saveUpload(file io.Reader) (string, string, error) {
	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create storage dir failed: %w", err)
	}
	path := filepath.Join(s.storageDir, uuid.NewString()+".pdf")

	out, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create pdf file failed: %w", err)
	}
	defer out.Close()

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), file); err != nil {
		s.discard(path)
		return "", "", fmt.Errorf("write pdf file failed: %w", err)
	}
	return path, hex.EncodeToString(hasher.Sum(nil)), nil
}

func (s *IngestService) discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove %s failed: %v", path, err)
	}
}
