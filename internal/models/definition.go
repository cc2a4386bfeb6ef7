package models

import (
	"strings"
	"time"
)

// Definition is one resolved explanation for a (word, sentence) pair.
// Fallback marks entries stored after a failed remote call so they can be
// distinguished from real explanations (and skipped when fallback caching is
// disabled).
type Definition struct {
	Word      string    `json:"word" badgerhold:"index"`
	Sentence  string    `json:"sentence"`
	Text      string    `json:"text"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefinitionKey builds the storage key for a (word, sentence) pair. The word
// is lowercased; the sentence is used exactly as submitted.
func DefinitionKey(word, sentence string) string {
	return strings.ToLower(word) + "||" + sentence
}
