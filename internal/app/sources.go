package app

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/markers"
)

const DefaultPreviewChars = 280

var (
	sentenceEndRe = regexp.MustCompile(`([.!?。])\s+`)

	// pageRefRe catches page references spelled out in the text itself, the
	// last resort when neither a span nor a page marker is available.
	pageRefRe = regexp.MustCompile(`(?i)\b(?:page|p\.|pg\.|página|pagina|seite)\s*(\d{1,4})\b`)
)

// assembleSources turns retrieved chunks into Source records, pairing each
// with its preview, location descriptor, page number and, when the locator
// already ran, its bounding box.
func assembleSources(chunks []model.Chunk, spans map[uint]model.ChunkSpan, previewChars int) []model.Source {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	sources := make([]model.Source, 0, len(chunks))
	for _, chunk := range chunks {
		src := model.Source{ChunkID: chunk.ID}

		cleaned := markers.Clean(chunk.Text)
		src.Preview = buildPreview(cleaned, previewChars)
		src.Location = locationDescriptor(chunk.Text)

		if span, ok := spans[chunk.ID]; ok {
			src.PageNumber = span.PageNumber
			src.BBox = &model.BoundingBox{
				X:      span.X,
				Y:      span.Y,
				Width:  span.Width,
				Height: span.Height,
			}
		} else if page, ok := markers.PageNumber(chunk.Text); ok {
			src.PageNumber = page
		} else if page, ok := pageReference(cleaned); ok {
			src.PageNumber = page
		}

		if src.PageNumber > 0 && src.Location != "" {
			src.Preview = fmt.Sprintf("[Page %d, %s] %s", src.PageNumber, src.Location, src.Preview)
		}
		sources = append(sources, src)
	}
	return sources
}

// reorderSpansFirst moves coordinate-bearing sources ahead of the rest,
// keeping similarity order within each group, and applies the same
// permutation to the parallel chunk slice.
func reorderSpansFirst(sources []model.Source, chunks []model.Chunk) ([]model.Source, []model.Chunk) {
	idx := make([]int, len(sources))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return sources[idx[a]].HasCoordinates() && !sources[idx[b]].HasCoordinates()
	})

	orderedSources := make([]model.Source, len(sources))
	orderedChunks := make([]model.Chunk, len(chunks))
	for to, from := range idx {
		orderedSources[to] = sources[from]
		orderedChunks[to] = chunks[from]
	}
	return orderedSources, orderedChunks
}

// buildPreview accumulates whole sentences until the budget is spent, then
// marks truncation with an ellipsis.
func buildPreview(text string, budget int) string {
	if utf8.RuneCountInString(text) <= budget {
		return text
	}

	var b strings.Builder
	rest := text
	for rest != "" {
		loc := sentenceEndRe.FindStringSubmatchIndex(rest)
		var sentence string
		if loc == nil {
			sentence = rest
			rest = ""
		} else {
			sentence = rest[:loc[3]]
			rest = rest[loc[1]:]
		}
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+utf8.RuneCountInString(sentence)+1 > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sentence)
		if utf8.RuneCountInString(b.String()) > budget {
			break
		}
	}

	preview := b.String()
	if utf8.RuneCountInString(preview) > budget {
		runes := []rune(preview)
		preview = strings.TrimSpace(string(runes[:budget]))
	}
	return preview + "..."
}

// locationDescriptor renders the chunk's paragraph range marker as prose.
func locationDescriptor(chunkText string) string {
	start, end, ok := markers.Paragraphs(chunkText)
	if !ok {
		return ""
	}
	if start == end {
		return fmt.Sprintf("Paragraph %d", start)
	}
	return fmt.Sprintf("Paragraphs %d-%d", start, end)
}

// pageReference scans the cleaned text for a written-out page reference.
func pageReference(text string) (int, bool) {
	m := pageRefRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
