package model

// ChatAnswer is the final result of one question against one document: the
// generated text with display citations rewritten, plus the sources the
// citations point into.
type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
