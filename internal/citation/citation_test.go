package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

func makeSources(n int, coordsAt ...int) []model.Source {
	withCoords := make(map[int]bool)
	for _, i := range coordsAt {
		withCoords[i] = true
	}
	out := make([]model.Source, n)
	for i := range out {
		out[i] = model.Source{ChunkID: uint(i + 1), Preview: fmt.Sprintf("source %d", i+1)}
		if withCoords[i] {
			out[i].PageNumber = i + 1
			out[i].BBox = &model.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}
		}
	}
	return out
}

func TestResolveSingleCitation(t *testing.T) {
	sources := makeSources(3)

	filtered, display := Resolve("X is 42 [SOURCE_2].", sources)

	require.Len(t, filtered, 1)
	assert.Equal(t, sources[1].ChunkID, filtered[0].ChunkID)
	assert.Equal(t, "X is 42 [1].", display)
}

func TestResolveMultipleCitationsKeepRankOrder(t *testing.T) {
	sources := makeSources(4)

	filtered, display := Resolve("B [SOURCE_3] then A [SOURCE_1].", sources)

	require.Len(t, filtered, 2)
	assert.Equal(t, uint(1), filtered[0].ChunkID)
	assert.Equal(t, uint(3), filtered[1].ChunkID)
	assert.Equal(t, "B [2] then A [1].", display)
}

func TestResolveRepeatedCitationDeduplicated(t *testing.T) {
	sources := makeSources(2)

	filtered, display := Resolve("[SOURCE_1] and again [SOURCE_1].", sources)

	require.Len(t, filtered, 1)
	assert.Equal(t, "[1] and again [1].", display)
}

func TestResolveOutOfRangeMarkerDeleted(t *testing.T) {
	sources := makeSources(2)

	filtered, display := Resolve("Valid [SOURCE_2] and bogus [SOURCE_9].", sources)

	require.Len(t, filtered, 1)
	assert.Equal(t, uint(2), filtered[0].ChunkID)
	assert.Equal(t, "Valid [1] and bogus.", display)
}

func TestResolveNoCitationsFallback(t *testing.T) {
	// second source carries coordinates
	sources := makeSources(2, 1)

	filtered, display := Resolve("An answer with no markers.", sources)

	require.Len(t, filtered, 2)
	assert.Equal(t, uint(1), filtered[0].ChunkID)
	assert.Equal(t, uint(2), filtered[1].ChunkID)
	assert.Equal(t, "An answer with no markers.", display)
}

func TestResolveNoCitationsNoCoordinates(t *testing.T) {
	sources := makeSources(3)

	filtered, _ := Resolve("Nothing cited here.", sources)

	require.Len(t, filtered, 1)
	assert.Equal(t, uint(1), filtered[0].ChunkID)
}

func TestResolveSafetyNetInsertsCoordinateSource(t *testing.T) {
	// only the last source has coordinates and it was not cited
	sources := makeSources(4, 3)

	filtered, display := Resolve("Claim [SOURCE_1].", sources)

	require.Len(t, filtered, 2)
	assert.True(t, filtered[0].HasCoordinates())
	assert.Equal(t, uint(4), filtered[0].ChunkID)
	assert.Equal(t, uint(1), filtered[1].ChunkID)
	// the cited marker now points at position 2
	assert.Equal(t, "Claim [2].", display)
}

func TestResolveEmptySources(t *testing.T) {
	filtered, display := Resolve("Answer [SOURCE_1].", nil)

	assert.Empty(t, filtered)
	assert.Equal(t, "Answer.", display)
}

// Every display marker [k] must satisfy 1 <= k <= len(filtered), and the
// number of distinct markers must not exceed len(filtered).
func TestResolveDisplayMarkerInvariant(t *testing.T) {
	displayMarkerRe := regexp.MustCompile(`\[(\d+)\]`)
	answers := []string{
		"plain text",
		"[SOURCE_1][SOURCE_2][SOURCE_3]",
		"[SOURCE_5] out of range [SOURCE_2]",
		"dup [SOURCE_2] dup [SOURCE_2] [SOURCE_4]",
	}
	sources := makeSources(4, 3)

	for _, answer := range answers {
		filtered, display := Resolve(answer, sources)

		require.NotEmpty(t, filtered, "answer %q", answer)
		distinct := make(map[int]bool)
		for _, m := range displayMarkerRe.FindAllStringSubmatch(display, -1) {
			k, err := strconv.Atoi(m[1])
			require.NoError(t, err)
			assert.GreaterOrEqual(t, k, 1)
			assert.LessOrEqual(t, k, len(filtered))
			distinct[k] = true
		}
		assert.LessOrEqual(t, len(distinct), len(filtered))
	}
}
