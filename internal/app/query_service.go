package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/citation"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/markers"
)

const DefaultTopK = 3

var (
	ErrProviderMismatch = errors.New("provider does not match document embedding type")
	ErrNoChunks         = errors.New("no chunks found for document")
)

const answerSystemPrompt = "You are a document question answering assistant. " +
	"Answer using only the numbered context sources. When a statement comes " +
	"from a source, cite it inline with its tag, for example [SOURCE_2]. " +
	"If the sources do not contain the answer, say so."

type QueryService struct {
	docs         DocumentStore
	chunks       ChunkStore
	spans        SpanStore
	providers    EmbeddingProviders
	answers      AnswerStore
	topK         int
	previewChars int
}

func NewQueryService(
	docs DocumentStore,
	chunks ChunkStore,
	spans SpanStore,
	providers EmbeddingProviders,
	answers AnswerStore,
	topK int,
	previewChars int,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &QueryService{
		docs:         docs,
		chunks:       chunks,
		spans:        spans,
		providers:    providers,
		answers:      answers,
		topK:         topK,
		previewChars: previewChars,
	}
}

type AskInput struct {
	PDFID    uint
	Provider string
	Question string
	TopK     int
}

// Ask retrieves the closest chunks of the document, generates an answer over
// them and resolves the citations back to source records.
func (s *QueryService) Ask(ctx context.Context, input AskInput) (*model.ChatAnswer, error) {
	question := strings.TrimSpace(input.Question)
	if input.PDFID == 0 || question == "" {
		return nil, ErrInvalidInput
	}
	provider := strings.TrimSpace(input.Provider)
	if !model.ValidProvider(provider) {
		return nil, ErrUnsupportedProvider
	}

	doc, err := s.docs.GetByID(input.PDFID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	if doc.EmbeddingType != provider {
		return nil, fmt.Errorf("%w: document was indexed with %s", ErrProviderMismatch, doc.EmbeddingType)
	}

	if cached, ok, err := s.answers.Get(ctx, doc.ID, provider, question); err != nil {
		log.Printf("answer cache read for pdf %d failed: %v", doc.ID, err)
	} else if ok {
		return cached, nil
	}

	backend, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}
	queryEmbedding, err := backend.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question failed: %w", err)
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}
	table := model.ChunkTable(provider)
	chunks, err := s.chunks.NearestNeighbors(table, doc.ID, queryEmbedding, topK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	spanMap, err := s.spans.ListByPDFID(table, doc.ID)
	if err != nil {
		// Missing spans degrade the sources, they never abort the query.
		log.Printf("span lookup for pdf %d failed: %v", doc.ID, err)
		spanMap = nil
	}

	sources := assembleSources(chunks, spanMap, s.previewChars)
	sources, chunks = reorderSpansFirst(sources, chunks)

	raw, err := backend.Generate(ctx, answerSystemPrompt, buildPrompt(question, chunks))
	if err != nil {
		return nil, fmt.Errorf("generate answer failed: %w", err)
	}

	cited, display := citation.Resolve(strings.TrimSpace(raw), sources)
	answer := &model.ChatAnswer{Answer: display, Sources: cited}

	if err := s.answers.Set(ctx, doc.ID, provider, question, answer); err != nil {
		log.Printf("answer cache write for pdf %d failed: %v", doc.ID, err)
	}
	return answer, nil
}

// buildPrompt tags every context chunk with the 1-based source index the
// model is asked to cite.
func buildPrompt(question string, chunks []model.Chunk) string {
	var b strings.Builder
	b.WriteString("Context sources:\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "\n[SOURCE_%d] %s\n", i+1, markers.Clean(chunk.Text))
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
