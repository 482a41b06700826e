package locator

import (
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// word is one whitespace-delimited token on a page with its bounding box in
// PDF coordinates (y measured from the page bottom, as the reader reports).
type word struct {
	text string
	x0   float64
	y0   float64
	x1   float64
	y1   float64
}

type box struct {
	x0, y0, x1, y1 float64
}

// Vertical tolerance for treating two glyph runs as the same text line.
const lineTolerance = 0.5

func pageWords(p pdf.Page) []word {
	return wordsFromTexts(p.Content().Text)
}

// wordsFromTexts assembles glyph runs into words. Runs are split on
// whitespace and on horizontal gaps wider than a fraction of the font size
// (PDFs often omit explicit space glyphs). Multi-character runs distribute
// their width evenly across their runes so embedded spaces split at a
// sensible position.
func wordsFromTexts(texts []pdf.Text) []word {
	var words []word
	var cur *word
	var curLine float64

	flush := func() {
		if cur != nil && cur.text != "" {
			words = append(words, *cur)
		}
		cur = nil
	}

	for _, t := range texts {
		runes := []rune(t.S)
		if len(runes) == 0 {
			continue
		}
		charWidth := t.W / float64(len(runes))
		x := t.X
		for _, r := range runes {
			if unicode.IsSpace(r) {
				flush()
				x += charWidth
				continue
			}
			gap := 0.25 * t.FontSize
			if cur != nil && (math.Abs(t.Y-curLine) > lineTolerance || x-cur.x1 > gap) {
				flush()
			}
			if cur == nil {
				cur = &word{x0: x, y0: t.Y, x1: x, y1: t.Y + t.FontSize}
				curLine = t.Y
			}
			cur.text += string(r)
			cur.x1 = math.Max(cur.x1, x+charWidth)
			cur.y0 = math.Min(cur.y0, t.Y)
			cur.y1 = math.Max(cur.y1, t.Y+t.FontSize)
			x += charWidth
		}
	}
	flush()
	return words
}

// findInWords joins the word texts with single spaces and searches each
// snippet, exact first and then case-insensitive. A hit is mapped back to
// the contiguous words overlapping the matched character range, and their
// union box returned.
func findInWords(words []word, snippets []string) (box, bool) {
	var b strings.Builder
	starts := make([]int, len(words))
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		starts[i] = b.Len()
		b.WriteString(w.text)
	}
	joined := b.String()
	lowered := strings.ToLower(joined)

	for _, snippet := range snippets {
		idx := strings.Index(joined, snippet)
		if idx < 0 {
			idx = strings.Index(lowered, strings.ToLower(snippet))
		}
		if idx < 0 {
			continue
		}
		return unionBox(words, starts, idx, idx+len(snippet)), true
	}
	return box{}, false
}

// unionBox returns the union of the boxes of all words overlapping the
// [from, to) character range of the joined text.
func unionBox(words []word, starts []int, from, to int) box {
	var u box
	first := true
	for i, w := range words {
		wFrom := starts[i]
		wTo := wFrom + len(w.text)
		if wTo <= from || wFrom >= to {
			continue
		}
		if first {
			u = box{x0: w.x0, y0: w.y0, x1: w.x1, y1: w.y1}
			first = false
			continue
		}
		u.x0 = math.Min(u.x0, w.x0)
		u.y0 = math.Min(u.y0, w.y0)
		u.x1 = math.Max(u.x1, w.x1)
		u.y1 = math.Max(u.y1, w.y1)
	}
	return u
}

// pageSize reads the page MediaBox; zeroes when it is absent or malformed.
func pageSize(p pdf.Page) (width, height float64) {
	mediaBox := p.V.Key("MediaBox")
	if mediaBox.Kind() != pdf.Array || mediaBox.Len() < 4 {
		return 0, 0
	}
	x0 := mediaBox.Index(0).Float64()
	y0 := mediaBox.Index(1).Float64()
	x1 := mediaBox.Index(2).Float64()
	y1 := mediaBox.Index(3).Float64()
	return x1 - x0, y1 - y0
}
