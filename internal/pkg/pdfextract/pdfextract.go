// Package pdfextract turns a PDF into a single page-marked text stream:
// every page's text is prefixed with its [PAGE_n] marker so downstream
// chunks keep track of where they came from.
package pdfextract

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/markers"
)

// Result is the outcome of extracting one document. An empty Text means the
// document had no ingestible content; callers must fail ingestion on it
// instead of storing nothing.
type Result struct {
	Text      string
	PageCount int
	UsedOCR   bool
}

type Extractor struct {
	minNativeChars int
	ocrDPI         int
	ocrLang        string
}

func New(minNativeChars, ocrDPI int, ocrLang string) *Extractor {
	if minNativeChars <= 0 {
		minNativeChars = 50
	}
	if ocrDPI <= 0 {
		ocrDPI = 200
	}
	if ocrLang == "" {
		ocrLang = "eng"
	}
	return &Extractor{
		minNativeChars: minNativeChars,
		ocrDPI:         ocrDPI,
		ocrLang:        ocrLang,
	}
}

// Extract reads path and returns its page-marked text. Native per-page
// extraction is tried first; if the combined native text is shorter than
// the configured minimum, every page is rendered and run through OCR, and
// the OCR output wins only when it recovered at least as much text.
// Individual page failures are treated as empty pages.
func (e *Extractor) Extract(path string) (*Result, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	native := make([]string, pageCount)
	for i := 0; i < pageCount; i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		native[i] = strings.TrimSpace(text)
	}

	nativeMarked := markPages(native)
	if totalChars(native) >= e.minNativeChars {
		return &Result{Text: nativeMarked, PageCount: pageCount}, nil
	}

	ocr := e.ocrPages(doc, pageCount)
	ocrMarked := markPages(ocr)
	if ocrMarked != "" && totalChars(ocr) >= totalChars(native) {
		return &Result{Text: ocrMarked, PageCount: pageCount, UsedOCR: true}, nil
	}

	return &Result{Text: nativeMarked, PageCount: pageCount}, nil
}

// ocrPages renders every page at the configured DPI and runs OCR on it.
// Any per-page render or OCR failure leaves that page empty.
func (e *Extractor) ocrPages(doc *fitz.Document, pageCount int) []string {
	out := make([]string, pageCount)
	if !ocrAvailable() {
		return out
	}
	for i := 0; i < pageCount; i++ {
		img, err := doc.ImageDPI(i, float64(e.ocrDPI))
		if err != nil {
			continue
		}
		text, err := runOCR(img, e.ocrLang)
		if err != nil {
			continue
		}
		out[i] = strings.TrimSpace(text)
	}
	return out
}

// markPages joins non-empty page texts, each prefixed with its 1-based
// physical page marker, separated by blank lines.
func markPages(pages []string) string {
	var parts []string
	for i, text := range pages {
		if text == "" {
			continue
		}
		parts = append(parts, markers.Page(i+1)+"\n"+text)
	}
	return strings.Join(parts, "\n\n")
}

func totalChars(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(p)
	}
	return n
}
