package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePageURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"drops fragment", "https://example.com/docs#section-2", "https://example.com/docs"},
		{"lowercases host", "https://Example.COM/docs", "https://example.com/docs"},
		{"lowercases scheme", "HTTPS://example.com/docs", "https://example.com/docs"},
		{"trims trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"keeps query string", "https://example.com/page?id=7", "https://example.com/page?id=7"},
		{"trims whitespace", "  https://example.com/docs  ", "https://example.com/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePageURL(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizePageURLEmpty(t *testing.T) {
	_, err := NormalizePageURL("")
	assert.Error(t, err)

	_, err = NormalizePageURL("   ")
	assert.Error(t, err)
}
