// Package llm routes completion, chat, and embedding calls to the configured
// cloud providers. Completions follow the default provider unless the
// requested model names another one; embeddings always go to Gemini, the only
// configured provider with an embedding API.
package llm

import (
	"strings"

	"github.com/ternarybob/lexia/internal/common"
)

// DetectProvider infers the provider from a model name. An empty or
// unrecognized model falls back to the given default.
func DetectProvider(model string, fallback common.LLMProvider) common.LLMProvider {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "claude"):
		return common.LLMProviderClaude
	case strings.HasPrefix(m, "gemini"), strings.HasPrefix(m, "models/gemini"):
		return common.LLMProviderGemini
	default:
		return fallback
	}
}
