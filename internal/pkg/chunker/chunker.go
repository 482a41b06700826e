// Package chunker splits page-marked text into bounded-size chunks along
// paragraph boundaries, tagging each chunk with the 1-based paragraph range
// it covers.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/markers"
)

const DefaultMaxChars = 1500

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

type Chunker struct {
	maxChars int
}

func New(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// Split cuts text into chunks of at most maxChars characters, never
// breaking inside a paragraph. A single paragraph larger than the budget is
// emitted whole as its own chunk. Each chunk is prefixed with a
// [CHUNK_PARAGRAPHS_a-b] marker. Input with no paragraph boundaries at all
// falls back to plain fixed-size windows without markers.
func (c *Chunker) Split(text string) []string {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return fixedWindows(text, c.maxChars)
	}
	// A lone oversized paragraph has no boundaries to respect; plain
	// windows are the only way to honor the size bound.
	if len(paragraphs) == 1 && utf8.RuneCountInString(paragraphs[0]) > c.maxChars {
		return fixedWindows(paragraphs[0], c.maxChars)
	}

	var chunks []string
	var buf []string
	bufLen := 0
	start := 1 // 1-based index of the first paragraph in buf

	for i, para := range paragraphs {
		p := i + 1
		pLen := utf8.RuneCountInString(para)
		if bufLen > 0 && bufLen+pLen > c.maxChars {
			chunks = append(chunks, buildChunk(start, p-1, buf))
			buf = buf[:0]
			bufLen = 0
			start = p
		}
		buf = append(buf, para)
		bufLen += pLen
	}
	if len(buf) > 0 {
		chunks = append(chunks, buildChunk(start, len(paragraphs), buf))
	}
	return chunks
}

func buildChunk(start, end int, paragraphs []string) string {
	return markers.ParagraphRange(start, end) + "\n" + strings.Join(paragraphs, "\n\n")
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplitRe.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fixedWindows is the degenerate-input fallback: plain rune windows with no
// paragraph markers.
func fixedWindows(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
