package models

// Token is a contiguous run of letter characters extracted from a text node.
// Tokens are ephemeral: produced per annotation pass, never persisted.
type Token struct {
	Text      string `json:"text"`
	Start     int    `json:"start"` // Byte offset into the source text
	End       int    `json:"end"`
	Difficult bool   `json:"difficult"`
}

// Span is one annotated word over an immutable text buffer. It is the non-DOM
// equivalent of a marker element: callers look up spans by offset instead of
// attaching click handlers.
type Span struct {
	Word     string `json:"word"`
	Start    int    `json:"start"` // Byte offset into the source text
	End      int    `json:"end"`
	Sentence string `json:"sentence"` // Trimmed enclosing text-node sentence
}
