package locator

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineWords lays the given tokens out left to right on one line at the
// given baseline, 10 units wide per character with a 4-unit space.
func lineWords(baseline float64, tokens ...string) []word {
	var out []word
	x := 0.0
	for _, tok := range tokens {
		w := float64(len(tok)) * 10
		out = append(out, word{text: tok, x0: x, y0: baseline, x1: x + w, y1: baseline + 12})
		x += w + 4
	}
	return out
}

func TestCandidateSnippetsLadder(t *testing.T) {
	long := strings.Repeat("a", 400)
	snippets := candidateSnippets(long)

	require.Len(t, snippets, 4)
	assert.Equal(t, 300, len(snippets[0]))
	assert.Equal(t, 150, len(snippets[1]))
	assert.Equal(t, 80, len(snippets[2]))
	assert.Equal(t, 40, len(snippets[3]))
}

func TestCandidateSnippetsSkipsRungsLongerThanText(t *testing.T) {
	snippets := candidateSnippets(strings.Repeat("b", 100))

	require.Len(t, snippets, 2)
	assert.Equal(t, 80, len(snippets[0]))
	assert.Equal(t, 40, len(snippets[1]))
}

func TestCandidateSnippetsShortTextUsedWhole(t *testing.T) {
	snippets := candidateSnippets("boiling point")

	require.Len(t, snippets, 1)
	assert.Equal(t, "boiling point", snippets[0])
}

func TestFindInWordsExactMatch(t *testing.T) {
	words := lineWords(700, "The", "boiling", "point", "is", "100C")

	got, ok := findInWords(words, []string{"boiling point"})

	require.True(t, ok)
	// union of "boiling" and "point"
	assert.Equal(t, words[1].x0, got.x0)
	assert.Equal(t, words[2].x1, got.x1)
	assert.Equal(t, 700.0, got.y0)
	assert.Equal(t, 712.0, got.y1)
}

func TestFindInWordsCaseInsensitiveFallback(t *testing.T) {
	words := lineWords(100, "Chapter", "ONE", "begins")

	_, ok := findInWords(words, []string{"chapter one"})
	assert.True(t, ok)
}

func TestFindInWordsLongestSnippetWins(t *testing.T) {
	words := lineWords(50, "alpha", "beta", "gamma")

	got, ok := findInWords(words, []string{"alpha beta gamma", "beta"})

	require.True(t, ok)
	assert.Equal(t, words[0].x0, got.x0)
	assert.Equal(t, words[2].x1, got.x1)
}

func TestFindInWordsNoMatch(t *testing.T) {
	words := lineWords(50, "alpha", "beta")

	_, ok := findInWords(words, []string{"entirely absent text"})
	assert.False(t, ok)
}

func TestWordsFromTextsSplitsOnSpacesAndGaps(t *testing.T) {
	texts := []pdf.Text{
		{S: "ab", X: 0, Y: 700, W: 20, FontSize: 10},
		{S: " ", X: 20, Y: 700, W: 5, FontSize: 10},
		{S: "cd", X: 25, Y: 700, W: 20, FontSize: 10},
		// large horizontal gap forces a word break without a space glyph
		{S: "ef", X: 200, Y: 700, W: 20, FontSize: 10},
		// new line
		{S: "gh", X: 0, Y: 680, W: 20, FontSize: 10},
	}

	words := wordsFromTexts(texts)

	require.Len(t, words, 4)
	assert.Equal(t, "ab", words[0].text)
	assert.Equal(t, "cd", words[1].text)
	assert.Equal(t, "ef", words[2].text)
	assert.Equal(t, "gh", words[3].text)
	assert.Equal(t, 700.0, words[0].y0)
	assert.Equal(t, 710.0, words[0].y1)
	assert.Equal(t, 680.0, words[3].y0)
}

func TestWordsFromTextsEmbeddedSpaceInRun(t *testing.T) {
	words := wordsFromTexts([]pdf.Text{
		{S: "foo bar", X: 0, Y: 10, W: 70, FontSize: 10},
	})

	require.Len(t, words, 2)
	assert.Equal(t, "foo", words[0].text)
	assert.Equal(t, "bar", words[1].text)
	assert.InDelta(t, 30.0, words[0].x1, 0.01)
	assert.InDelta(t, 40.0, words[1].x0, 0.01)
}

func TestUnionBoxNonNegativeExtents(t *testing.T) {
	words := lineWords(300, "one", "two", "three")
	starts := []int{0, 4, 8}

	u := unionBox(words, starts, 0, 13)

	assert.GreaterOrEqual(t, u.x1-u.x0, 0.0)
	assert.GreaterOrEqual(t, u.y1-u.y0, 0.0)
}

func TestContainsAnySnippet(t *testing.T) {
	page := "Some header\n\nThe Boiling   Point is 100C on page three."

	assert.True(t, containsAnySnippet(page, []string{"the boiling point"}))
	assert.False(t, containsAnySnippet(page, []string{"freezing point"}))
}

func TestLocateEmptyChunkText(t *testing.T) {
	m, err := New().Locate("irrelevant.pdf", "[PAGE_1] [CHUNK_PARAGRAPHS_1-1]")

	assert.NoError(t, err)
	assert.Nil(t, m)
}
