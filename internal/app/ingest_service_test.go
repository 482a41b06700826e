package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/chunker"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/pdfextract"
)

func newIngestFixture(docs *stubDocs, chunks *stubChunks, spans *stubSpans, provider *stubProvider, publisher *stubPublisher, answers *stubAnswers) *IngestService {
	return &IngestService{
		docs:      docs,
		chunks:    chunks,
		spans:     spans,
		providers: &stubProviders{provider: provider},
		publisher: publisher,
		answers:   answers,
	}
}

func TestEmbedAndStoreHappyPath(t *testing.T) {
	docs := newStubDocs()
	chunks := newStubChunks()
	provider := &stubProvider{name: model.ProviderOllama, embedding: []float32{0.1, 0.2}}
	svc := newIngestFixture(docs, chunks, newStubSpans(), provider, &stubPublisher{}, &stubAnswers{})

	doc := &model.Document{ID: 3, EmbeddingType: model.ProviderOllama}
	err := svc.embedAndStore(context.Background(), doc, model.ProviderOllama, []string{"one", "two"})

	require.NoError(t, err)
	assert.Len(t, chunks.inserted[model.ChunkTableOllama], 2)
	assert.Empty(t, chunks.inserted[model.ChunkTableOpenAI])
	assert.Equal(t, 2, provider.embedCalls)
}

func TestEmbedAndStoreDimensionFallback(t *testing.T) {
	docs := newStubDocs(&model.Document{ID: 3, EmbeddingType: model.ProviderOllama})
	chunks := newStubChunks()
	chunks.rejectTable = model.ChunkTableOllama
	provider := &stubProvider{name: model.ProviderOllama, embedding: []float32{0.1}}
	svc := newIngestFixture(docs, chunks, newStubSpans(), provider, &stubPublisher{}, &stubAnswers{})

	doc := docs.docs[3]
	err := svc.embedAndStore(context.Background(), doc, model.ProviderOllama, []string{"one", "two"})

	require.NoError(t, err)
	// Every chunk landed in the alternate table and the document records it.
	assert.Len(t, chunks.inserted[model.ChunkTableOpenAI], 2)
	assert.Equal(t, uint(3), docs.updatedID)
	assert.Equal(t, model.ProviderOpenAI, docs.updatedProvider)
	assert.Equal(t, model.ProviderOpenAI, doc.EmbeddingType)
}

func TestDeleteRemovesChunksSpansAndCache(t *testing.T) {
	docs := newStubDocs(&model.Document{ID: 5, EmbeddingType: model.ProviderOllama})
	chunks := newStubChunks()
	spans := newStubSpans()
	answers := &stubAnswers{}
	svc := newIngestFixture(docs, chunks, spans, &stubProvider{}, &stubPublisher{}, answers)

	err := svc.Delete(context.Background(), 5)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{model.ChunkTableOllama, model.ChunkTableOpenAI}, chunks.deletedTables)
	assert.Equal(t, []uint{5}, spans.deletedFor)
	assert.Equal(t, []uint{5}, answers.deletedFor)
	assert.Equal(t, []uint{5}, docs.deletedIDs)
}

func TestDeleteUnknownDocument(t *testing.T) {
	svc := newIngestFixture(newStubDocs(), newStubChunks(), newStubSpans(), &stubProvider{}, &stubPublisher{}, &stubAnswers{})

	err := svc.Delete(context.Background(), 42)

	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestReprocessEnqueuesLocateTask(t *testing.T) {
	docs := newStubDocs(&model.Document{ID: 8, EmbeddingType: model.ProviderOpenAI})
	publisher := &stubPublisher{}
	svc := newIngestFixture(docs, newStubChunks(), newStubSpans(), &stubProvider{}, publisher, &stubAnswers{})

	err := svc.Reprocess(context.Background(), 8)

	require.NoError(t, err)
	require.Len(t, publisher.tasks, 1)
	assert.Equal(t, uint(8), publisher.tasks[0].PDFID)
}

func TestIngestHappyPath(t *testing.T) {
	docs := newStubDocs()
	chunks := newStubChunks()
	publisher := &stubPublisher{}
	provider := &stubProvider{name: model.ProviderOllama, embedding: []float32{0.1, 0.2}}
	svc := newIngestFixture(docs, chunks, newStubSpans(), provider, publisher, &stubAnswers{})
	svc.extractor = &stubExtractor{result: &pdfextract.Result{
		Text:      "[PAGE_1]\nFirst paragraph of the document.\n\nSecond paragraph.",
		PageCount: 1,
	}}
	svc.chunker = chunker.New(1500)
	svc.storageDir = t.TempDir()

	got, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "doc.pdf",
		Provider: model.ProviderOllama,
		File:     strings.NewReader("%PDF-1.4 fake body"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, got.ChunkCount)
	assert.Equal(t, 1, got.Document.PageCount)
	assert.NotEmpty(t, got.Document.ContentHash)
	assert.Len(t, chunks.inserted[model.ChunkTableOllama], 1)
	require.Len(t, publisher.tasks, 1)
	assert.Equal(t, got.Document.ID, publisher.tasks[0].PDFID)
	_, statErr := os.Stat(got.Document.StoragePath)
	assert.NoError(t, statErr)
}

func TestIngestNoExtractableText(t *testing.T) {
	docs := newStubDocs()
	svc := newIngestFixture(docs, newStubChunks(), newStubSpans(), &stubProvider{}, &stubPublisher{}, &stubAnswers{})
	// Markers only; stripping them leaves nothing to index.
	svc.extractor = &stubExtractor{result: &pdfextract.Result{Text: "[PAGE_1]", PageCount: 1}}
	svc.chunker = chunker.New(1500)
	svc.storageDir = t.TempDir()

	_, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "scan.pdf",
		Provider: model.ProviderOllama,
		File:     strings.NewReader("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, ErrNoExtractableText)
	assert.Empty(t, docs.docs, "no document row is stored for an empty extraction")
	entries, readErr := os.ReadDir(svc.storageDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "the stored file is removed again")
}

func TestIngestExtractionBackendFailure(t *testing.T) {
	svc := newIngestFixture(newStubDocs(), newStubChunks(), newStubSpans(), &stubProvider{}, &stubPublisher{}, &stubAnswers{})
	svc.extractor = &stubExtractor{err: errors.New("open pdf failed: broken xref")}
	svc.chunker = chunker.New(1500)
	svc.storageDir = t.TempDir()

	_, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "broken.pdf",
		Provider: model.ProviderOllama,
		File:     strings.NewReader("not a pdf"),
	})

	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestIngestEmbedFailureTagsStage(t *testing.T) {
	provider := &stubProvider{name: model.ProviderOllama, embedErr: errors.New("connection refused")}
	svc := newIngestFixture(newStubDocs(), newStubChunks(), newStubSpans(), provider, &stubPublisher{}, &stubAnswers{})
	svc.extractor = &stubExtractor{result: &pdfextract.Result{Text: "[PAGE_1]\nSome real text.", PageCount: 1}}
	svc.chunker = chunker.New(1500)
	svc.storageDir = t.TempDir()

	_, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "doc.pdf",
		Provider: model.ProviderOllama,
		File:     strings.NewReader("%PDF-1.4"),
	})

	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestIngestRejectsUnknownProvider(t *testing.T) {
	svc := newIngestFixture(newStubDocs(), newStubChunks(), newStubSpans(), &stubProvider{}, &stubPublisher{}, &stubAnswers{})

	_, err := svc.Ingest(context.Background(), IngestInput{Filename: "a.pdf", Provider: "bedrock", File: strings.NewReader("%PDF")})

	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestIngestRejectsMissingFile(t *testing.T) {
	svc := newIngestFixture(newStubDocs(), newStubChunks(), newStubSpans(), &stubProvider{}, &stubPublisher{}, &stubAnswers{})

	_, err := svc.Ingest(context.Background(), IngestInput{Filename: "a.pdf", Provider: model.ProviderOllama})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
