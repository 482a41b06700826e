package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/app"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/locator"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

// ChunkLocator finds the page region a chunk's text came from.
type ChunkLocator interface {
	Locate(path, chunkText string) (*locator.Match, error)
}

// SpanLocateWorker consumes locate tasks enqueued at ingestion time and
// resolves a bounding box for every chunk of the document that does not
// have one yet. Tasks are idempotent; a chunk with a persisted span is
// skipped, so a requeued or duplicated task converges to the same state.
type SpanLocateWorker struct {
	conn      *amqp.Connection
	docs      app.DocumentStore
	chunks    app.ChunkStore
	spans     app.SpanStore
	locator   ChunkLocator
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSpanLocateWorker(
	conn *amqp.Connection,
	docs app.DocumentStore,
	chunks app.ChunkStore,
	spans app.SpanStore,
	loc ChunkLocator,
	queueName string,
) *SpanLocateWorker {
	return &SpanLocateWorker{
		conn:      conn,
		docs:      docs,
		chunks:    chunks,
		spans:     spans,
		locator:   loc,
		queueName: queueName,
	}
}

func (w *SpanLocateWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	// Locating is slow for large PDFs; take one document at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var task model.SpanLocateTask
				if err := json.Unmarshal(d.Body, &task); err != nil {
					log.Printf("worker decode locate task failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.locateDocument(task.PDFID); err != nil {
					log.Printf("worker locate pdf %d failed: %v", task.PDFID, err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// locateDocument walks every chunk of the document and persists the first
// match found on a page. Chunks the locator cannot place are left without a
// span; that absence is an expected outcome, not a task failure.
func (w *SpanLocateWorker) locateDocument(pdfID uint) error {
	doc, err := w.docs.GetByID(pdfID)
	if err != nil {
		return err
	}
	if doc == nil {
		// Deleted between enqueue and consume; nothing to do.
		return nil
	}

	table := model.ChunkTable(doc.EmbeddingType)
	chunks, err := w.chunks.ListByPDFID(table, pdfID)
	if err != nil {
		return err
	}

	located := 0
	for _, chunk := range chunks {
		existing, err := w.spans.GetByChunk(table, chunk.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		match, err := w.locator.Locate(doc.StoragePath, chunk.Text)
		if err != nil {
			return fmt.Errorf("locate chunk %d failed: %w", chunk.ID, err)
		}
		if match == nil {
			continue
		}

		span := &model.ChunkSpan{
			ChunkTable: table,
			ChunkID:    chunk.ID,
			PDFID:      pdfID,
			PageNumber: match.Page,
			X:          match.X,
			Y:          match.Y,
			Width:      match.Width,
			Height:     match.Height,
		}
		if err := w.spans.CreateIfAbsent(span); err != nil {
			return err
		}
		located++
	}

	log.Printf("worker located %d/%d chunks for pdf %d", located, len(chunks), pdfID)
	return nil
}

func (w *SpanLocateWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
