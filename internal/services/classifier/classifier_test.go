package classifier

import (
	"testing"
)

func TestIsDifficult(t *testing.T) {
	c := New(4)

	tests := []struct {
		name string
		word string
		want bool
	}{
		{"short word", "cat", false},
		{"three letters", "the", false},
		{"empty string", "", false},
		{"common word lowercase", "people", false},
		{"common word uppercase", "PEOPLE", false},
		{"common word mixed case", "People", false},
		{"difficult word", "extraordinary", true},
		{"difficult four letters", "apex", true},
		{"contains digit", "abc123", false},
		{"contains hyphen", "well-known", false},
		{"contains apostrophe", "don't", false},
		{"contains space", "two words", false},
		{"unicode letters", "flüchtig", true},
		{"cyrillic word", "невероятный", true},
		{"emoji", "🎉🎉🎉🎉", false},
		{"punctuation only", "....", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDifficult(tt.word); got != tt.want {
				t.Errorf("IsDifficult(%q) = %v, want %v", tt.word, got, tt.want)
			}
		})
	}
}

func TestIsDifficultMinLengthIsRunes(t *testing.T) {
	c := New(4)

	// Three runes, more than four bytes. Length checks must count runes.
	if c.IsDifficult("äöü") {
		t.Error("expected three-rune word to be rejected")
	}
}

func TestNewDefaultsMinLength(t *testing.T) {
	c := New(0)
	if got := c.MinWordLength(); got != DefaultMinWordLength {
		t.Errorf("MinWordLength() = %d, want %d", got, DefaultMinWordLength)
	}
}

func TestCustomMinLength(t *testing.T) {
	c := New(8)

	if c.IsDifficult("quantum") { // 7 letters
		t.Error("expected 7-letter word to be rejected with min length 8")
	}
	if !c.IsDifficult("quantums") { // 8 letters
		t.Error("expected 8-letter word to be accepted with min length 8")
	}
}
