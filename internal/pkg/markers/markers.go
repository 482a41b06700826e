// Package markers defines the inline position markers embedded in stored
// chunk text: [PAGE_n] for page boundaries and [CHUNK_PARAGRAPHS_a-b] for
// the paragraph range a chunk covers. Keeping the markers inside the text
// keeps the chunk tables byte-compatible with the original schema; this
// package is the single place that writes and parses them.
package markers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	pageRe      = regexp.MustCompile(`\[PAGE_(\d+)\]`)
	paragraphRe = regexp.MustCompile(`\[CHUNK_PARAGRAPHS_(\d+)-(\d+)\]`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// Page returns the boundary marker for a 1-based page number.
func Page(n int) string {
	return fmt.Sprintf("[PAGE_%d]", n)
}

// ParagraphRange returns the range marker for 1-based, inclusive paragraph
// indices.
func ParagraphRange(start, end int) string {
	return fmt.Sprintf("[CHUNK_PARAGRAPHS_%d-%d]", start, end)
}

// Strip removes all page and paragraph markers from s.
func Strip(s string) string {
	s = pageRe.ReplaceAllString(s, "")
	s = paragraphRe.ReplaceAllString(s, "")
	return s
}

// Clean strips markers and collapses runs of whitespace to single spaces.
func Clean(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(Strip(s), " "))
}

// PageNumber returns the first [PAGE_n] marker value in s, if any.
func PageNumber(s string) (int, bool) {
	m := pageRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Paragraphs returns the paragraph range of the first range marker in s.
func Paragraphs(s string) (start, end int, ok bool) {
	m := paragraphRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
