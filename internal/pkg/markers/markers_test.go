package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNumber(t *testing.T) {
	n, ok := PageNumber("[PAGE_3]\nsome text")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = PageNumber("no marker here")
	assert.False(t, ok)

	// first marker wins
	n, _ = PageNumber("[PAGE_2] a [PAGE_7] b")
	assert.Equal(t, 2, n)
}

func TestParagraphs(t *testing.T) {
	start, end, ok := Paragraphs("[CHUNK_PARAGRAPHS_4-9]\ncontent")
	assert.True(t, ok)
	assert.Equal(t, 4, start)
	assert.Equal(t, 9, end)

	_, _, ok = Paragraphs("[PAGE_1] content")
	assert.False(t, ok)
}

func TestClean(t *testing.T) {
	in := "[CHUNK_PARAGRAPHS_1-2]\n[PAGE_1]\nThe  boiling\npoint\tis 100C"
	assert.Equal(t, "The boiling point is 100C", Clean(in))
	assert.Equal(t, "", Clean("[PAGE_1]"))
}

func TestRoundTrip(t *testing.T) {
	n, ok := PageNumber(Page(12))
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	a, b, ok := Paragraphs(ParagraphRange(5, 5))
	assert.True(t, ok)
	assert.Equal(t, 5, a)
	assert.Equal(t, 5, b)
}
