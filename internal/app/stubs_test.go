package app

import (
	"context"
	"fmt"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/ai"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/pdfextract"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/repository"
)

type stubExtractor struct {
	result *pdfextract.Result
	err    error
	paths  []string
}

func (s *stubExtractor) Extract(path string) (*pdfextract.Result, error) {
	s.paths = append(s.paths, path)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubDocs struct {
	docs            map[uint]*model.Document
	updatedID       uint
	updatedProvider string
	deletedIDs      []uint
}

func newStubDocs(docs ...*model.Document) *stubDocs {
	s := &stubDocs{docs: make(map[uint]*model.Document)}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *stubDocs) Create(doc *model.Document) error {
	doc.ID = uint(len(s.docs) + 1)
	s.docs[doc.ID] = doc
	return nil
}

func (s *stubDocs) GetByID(id uint) (*model.Document, error) {
	return s.docs[id], nil
}

func (s *stubDocs) List() ([]model.Document, error) {
	out := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (s *stubDocs) UpdateEmbeddingType(id uint, provider string) error {
	s.updatedID = id
	s.updatedProvider = provider
	if d, ok := s.docs[id]; ok {
		d.EmbeddingType = provider
	}
	return nil
}

func (s *stubDocs) DeleteByID(id uint) error {
	s.deletedIDs = append(s.deletedIDs, id)
	delete(s.docs, id)
	return nil
}

type stubChunks struct {
	inserted      map[string][]model.Chunk
	rejectTable   string
	neighbors     []model.Chunk
	deletedTables []string
}

func newStubChunks() *stubChunks {
	return &stubChunks{inserted: make(map[string][]model.Chunk)}
}

func (s *stubChunks) Insert(table string, chunk *model.Chunk) error {
	if table == s.rejectTable {
		return fmt.Errorf("insert chunk into %s: %w", table, repository.ErrDimensionMismatch)
	}
	chunk.ID = uint(len(s.inserted[table]) + 1)
	s.inserted[table] = append(s.inserted[table], *chunk)
	return nil
}

func (s *stubChunks) NearestNeighbors(table string, pdfID uint, query []float32, k int) ([]model.Chunk, error) {
	if k < len(s.neighbors) {
		return s.neighbors[:k], nil
	}
	return s.neighbors, nil
}

func (s *stubChunks) ListByPDFID(table string, pdfID uint) ([]model.Chunk, error) {
	return s.inserted[table], nil
}

func (s *stubChunks) DeleteByPDFID(table string, pdfID uint) error {
	s.deletedTables = append(s.deletedTables, table)
	return nil
}

type stubSpans struct {
	byChunk    map[uint]model.ChunkSpan
	created    []model.ChunkSpan
	deletedFor []uint
}

func newStubSpans() *stubSpans {
	return &stubSpans{byChunk: make(map[uint]model.ChunkSpan)}
}

func (s *stubSpans) GetByChunk(chunkTable string, chunkID uint) (*model.ChunkSpan, error) {
	if span, ok := s.byChunk[chunkID]; ok {
		return &span, nil
	}
	return nil, nil
}

func (s *stubSpans) ListByPDFID(chunkTable string, pdfID uint) (map[uint]model.ChunkSpan, error) {
	return s.byChunk, nil
}

func (s *stubSpans) CreateIfAbsent(span *model.ChunkSpan) error {
	if _, ok := s.byChunk[span.ChunkID]; ok {
		return nil
	}
	s.byChunk[span.ChunkID] = *span
	s.created = append(s.created, *span)
	return nil
}

func (s *stubSpans) DeleteByPDFID(pdfID uint) error {
	s.deletedFor = append(s.deletedFor, pdfID)
	return nil
}

type stubProvider struct {
	name       string
	embedding  []float32
	embedErr   error
	answer     string
	embedCalls int
	genCalls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.embedCalls++
	return p.embedding, p.embedErr
}

func (p *stubProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	p.genCalls++
	return p.answer, nil
}

type stubProviders struct {
	provider *stubProvider
}

func (s *stubProviders) Get(name string) (ai.Provider, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("unknown embedding provider %q", name)
	}
	return s.provider, nil
}

type stubAnswers struct {
	cached     *model.ChatAnswer
	setCalls   int
	lastSet    *model.ChatAnswer
	deletedFor []uint
}

func (s *stubAnswers) Get(ctx context.Context, pdfID uint, provider, question string) (*model.ChatAnswer, bool, error) {
	if s.cached != nil {
		return s.cached, true, nil
	}
	return nil, false, nil
}

func (s *stubAnswers) Set(ctx context.Context, pdfID uint, provider, question string, answer *model.ChatAnswer) error {
	s.setCalls++
	s.lastSet = answer
	return nil
}

func (s *stubAnswers) DeleteByPDF(ctx context.Context, pdfID uint) error {
	s.deletedFor = append(s.deletedFor, pdfID)
	return nil
}

type stubPublisher struct {
	tasks []model.SpanLocateTask
	err   error
}

func (s *stubPublisher) Publish(ctx context.Context, task model.SpanLocateTask) error {
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}
