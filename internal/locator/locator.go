// Package locator maps a stored chunk back to the page and bounding box
// where its text appears in the source PDF. Matching is exact-then-fuzzy:
// progressively shorter prefixes of the cleaned chunk text are searched in
// the word-level layout of each page, and the first hit across pages wins.
package locator

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/markers"
)

// snippetLengths is the descending ladder of prefix sizes tried per page.
// Longer snippets go first: they are far less likely to match spuriously.
var snippetLengths = []int{300, 150, 80, 40}

// Match is a located chunk position in PDF coordinate space.
type Match struct {
	Page   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type Locator struct{}

func New() *Locator { return &Locator{} }

// Locate finds where chunkText appears in the PDF at path. It returns
// (nil, nil) when no page contains the text, and a non-nil error only when
// the PDF backends themselves failed; callers treat both as "no span" but
// can log them apart.
func (l *Locator) Locate(path, chunkText string) (*Match, error) {
	cleaned := markers.Clean(chunkText)
	if cleaned == "" {
		return nil, nil
	}
	snippets := candidateSnippets(cleaned)

	match, err := l.locateByWords(path, snippets)
	if err == nil {
		return match, nil
	}
	// Word-level backend unavailable for this file; degrade to per-page
	// substring checks with a full-page rectangle.
	return l.locateByPageText(path, snippets)
}

// locateByWords scans word-level layout page by page. Pages whose content
// stream cannot be decoded fall back to plain page text individually.
func (l *Locator) locateByWords(path string, snippets []string) (m *Match, err error) {
	// The underlying reader panics on malformed objects; treat that as a
	// backend failure, not a crash.
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("pdf layout read panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf layout failed: %w", err)
	}
	defer f.Close()

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		words := pageWords(page)
		if len(words) > 0 {
			if box, ok := findInWords(words, snippets); ok {
				return &Match{
					Page:   pageNum,
					X:      box.x0,
					Y:      box.y0,
					Width:  box.x1 - box.x0,
					Height: box.y1 - box.y0,
				}, nil
			}
			continue
		}

		// No word data on this page: substring test on plain text, with
		// the page rectangle as the approximate position.
		text, textErr := page.GetPlainText(nil)
		if textErr != nil || text == "" {
			continue
		}
		if containsAnySnippet(text, snippets) {
			w, h := pageSize(page)
			return &Match{Page: pageNum, X: 0, Y: 0, Width: w, Height: h}, nil
		}
	}
	return nil, nil
}

// locateByPageText is the whole-document fallback used when the layout
// reader cannot open the file at all: per-page extracted text via MuPDF and
// a full-page bounding box.
func (l *Locator) locateByPageText(path string, snippets []string) (*Match, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	defer doc.Close()

	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil || text == "" {
			continue
		}
		if !containsAnySnippet(text, snippets) {
			continue
		}
		var w, h float64
		if bound, err := doc.Bound(i); err == nil {
			w = float64(bound.Dx())
			h = float64(bound.Dy())
		}
		return &Match{Page: i + 1, X: 0, Y: 0, Width: w, Height: h}, nil
	}
	return nil, nil
}

// candidateSnippets derives the descending prefix ladder from the cleaned
// chunk text. Lengths beyond the text itself are skipped; text shorter than
// the smallest rung is used whole.
func candidateSnippets(cleaned string) []string {
	runes := []rune(cleaned)
	var out []string
	for _, n := range snippetLengths {
		if n > len(runes) {
			continue
		}
		out = append(out, strings.TrimSpace(string(runes[:n])))
	}
	if len(out) == 0 {
		out = append(out, cleaned)
	}
	return out
}

// containsAnySnippet tests snippets longest-first, case-insensitively, as
// the last-resort substring check on page text with collapsed whitespace.
func containsAnySnippet(pageText string, snippets []string) bool {
	haystack := strings.ToLower(markers.Clean(pageText))
	for _, s := range snippets {
		if strings.Contains(haystack, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
