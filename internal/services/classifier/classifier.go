// Package classifier decides whether a token is worth explaining. The
// heuristic is deliberately cheap: length, a common-word reference set, and a
// letters-only check. It runs once per token on every annotation pass, so it
// must stay allocation-free on the hot path.
package classifier

import (
	"bufio"
	_ "embed"
	"strings"
	"unicode"
)

//go:embed common_words.txt
var commonWordsFile string

// DefaultMinWordLength is the annotation threshold: tokens shorter than four
// letters are never flagged.
const DefaultMinWordLength = 4

// Classifier flags difficult words. It is pure and safe for concurrent use
// after construction.
type Classifier struct {
	minWordLength int
	commonWords   map[string]struct{}
}

// New creates a classifier with the embedded common-word set. A minWordLength
// of zero or less falls back to DefaultMinWordLength.
func New(minWordLength int) *Classifier {
	if minWordLength <= 0 {
		minWordLength = DefaultMinWordLength
	}

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(commonWordsFile))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		words[strings.ToLower(word)] = struct{}{}
	}

	return &Classifier{
		minWordLength: minWordLength,
		commonWords:   words,
	}
}

// MinWordLength returns the configured minimum token length.
func (c *Classifier) MinWordLength() int {
	return c.minWordLength
}

// IsDifficult reports whether a token qualifies for annotation: at least
// minWordLength runes, not in the common-word set (case-insensitive), and
// composed entirely of Unicode letters.
func (c *Classifier) IsDifficult(word string) bool {
	runes := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
		runes++
	}
	if runes < c.minWordLength {
		return false
	}

	_, common := c.commonWords[strings.ToLower(word)]
	return !common
}
