// Package citation parses the [SOURCE_i] markers a generation model leaves
// in its answer, filters the source list down to what was actually cited,
// and rewrites the answer with compact renumbered markers. It guarantees
// the caller never ends up with zero evidence when any was retrieved, and
// that at least one returned source carries coordinates whenever one exists.
package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/model"
)

var (
	sourceMarkerRe     = regexp.MustCompile(`\[SOURCE_(\d+)\]`)
	spaceBeforePunctRe = regexp.MustCompile(`[ \t]+([.,;:!?])`)
	doubleSpaceRe      = regexp.MustCompile(`[ \t]{2,}`)
)

// fallbackScanDepth is how many of the top sources are checked for
// coordinates when the answer cited nothing.
const fallbackScanDepth = 3

// Resolve returns the deduplicated sources the answer actually cites, in
// their original rank order, and a display version of the answer where each
// cited marker is renumbered to its 1-based position in the returned list
// and stray markers are removed.
func Resolve(answer string, sources []model.Source) ([]model.Source, string) {
	if len(sources) == 0 {
		return nil, rewriteAnswer(answer, nil)
	}

	cited := citedIndices(answer, len(sources))

	selected := make(map[int]bool, len(cited))
	for _, i := range cited {
		selected[i] = true
	}
	if len(cited) == 0 {
		// Nothing cited: keep the top-ranked source, plus the first
		// coordinate-bearing one near the top so the UI can still jump
		// to a location.
		selected[1] = true
		depth := fallbackScanDepth
		if len(sources) < depth {
			depth = len(sources)
		}
		for i := 0; i < depth; i++ {
			if sources[i].HasCoordinates() {
				selected[i+1] = true
				break
			}
		}
	}

	var filtered []model.Source
	positions := make(map[int]int) // source index (1-based) -> filtered position (1-based)
	for i := 1; i <= len(sources); i++ {
		if selected[i] {
			filtered = append(filtered, sources[i-1])
			positions[i] = len(filtered)
		}
	}

	if !anyCoordinates(filtered) {
		for _, s := range sources {
			if s.HasCoordinates() {
				filtered = append([]model.Source{s}, filtered...)
				for k := range positions {
					positions[k]++
				}
				break
			}
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, sources...)
	}

	return filtered, rewriteAnswer(answer, positions)
}

// citedIndices returns the distinct in-range marker indices in first
// occurrence order. Out-of-range indices are dropped.
func citedIndices(answer string, sourceCount int) []int {
	var out []int
	seen := make(map[int]bool)
	for _, m := range sourceMarkerRe.FindAllStringSubmatch(answer, -1) {
		i, err := strconv.Atoi(m[1])
		if err != nil || i < 1 || i > sourceCount || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out
}

// rewriteAnswer replaces each mapped [SOURCE_i] with [k], deletes unmapped
// markers, and tidies the spacing the deletions leave behind.
func rewriteAnswer(answer string, positions map[int]int) string {
	out := sourceMarkerRe.ReplaceAllStringFunc(answer, func(marker string) string {
		sub := sourceMarkerRe.FindStringSubmatch(marker)
		i, err := strconv.Atoi(sub[1])
		if err != nil {
			return ""
		}
		if k, ok := positions[i]; ok {
			return "[" + strconv.Itoa(k) + "]"
		}
		return ""
	})
	out = spaceBeforePunctRe.ReplaceAllString(out, "$1")
	out = doubleSpaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func anyCoordinates(sources []model.Source) bool {
	for _, s := range sources {
		if s.HasCoordinates() {
			return true
		}
	}
	return false
}
