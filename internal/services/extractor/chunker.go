package extractor

import (
	"strings"
	"unicode"
)

// DefaultChunkWords is the word budget of one embedding chunk.
const DefaultChunkWords = 400

// Chunk splits extracted text into pieces of roughly budget words each,
// preferring sentence boundaries. A chunk is closed at the first sentence end
// at or past the budget, so sentences are never cut mid-way; a single
// sentence longer than the budget becomes its own oversized chunk.
func Chunk(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultChunkWords
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	words := 0

	for _, s := range sentences {
		current = append(current, s)
		words += len(strings.Fields(s))
		if words >= budget {
			chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
			current = nil
			words = 0
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
	}

	return chunks
}

// splitSentences cuts text after terminal punctuation followed by whitespace.
// Trailing quotes and brackets stay with their sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Absorb closing quotes or brackets after the terminator.
		for i+1 < len(runes) && isClosing(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}

		if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}
