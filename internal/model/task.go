package model

// SpanLocateTask asks the background worker to resolve bounding boxes for
// every chunk of one document that does not have a span yet.
type SpanLocateTask struct {
	PDFID uint `json:"pdf_id"`
}
