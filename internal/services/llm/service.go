package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
)

// Service implements interfaces.LLMService over the configured providers.
// Missing API keys are tolerated at construction time: the corresponding
// provider stays nil and calls routed to it return ErrMissingCredential, so
// the server runs in degraded mode rather than refusing to start.
type Service struct {
	config common.Config
	logger arbor.ILogger
	gemini *geminiClient
	claude *claudeClient
}

// NewService builds the provider clients that have credentials configured.
func NewService(cfg *common.Config, logger arbor.ILogger) (*Service, error) {
	s := &Service{config: *cfg, logger: logger}

	if cfg.Gemini.APIKey != "" {
		client, err := newGeminiClient(cfg.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		s.gemini = client
	}

	if cfg.Claude.APIKey != "" {
		client, err := newClaudeClient(cfg.Claude, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize claude client: %w", err)
		}
		s.claude = client
	}

	if s.gemini == nil && s.claude == nil {
		logger.Warn().Msg("No LLM credentials configured, definitions and QA run in fallback mode")
	}

	return s, nil
}

// Complete generates a single completion, routed by the requested model.
func (s *Service) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	switch DetectProvider(req.Model, s.config.LLM.DefaultProvider) {
	case common.LLMProviderClaude:
		if s.claude == nil {
			return "", interfaces.ErrMissingCredential
		}
		return s.claude.complete(ctx, req)
	default:
		if s.gemini == nil {
			return "", interfaces.ErrMissingCredential
		}
		return s.gemini.complete(ctx, req)
	}
}

// Chat generates a completion from a conversation history, routed by model.
func (s *Service) Chat(ctx context.Context, messages []interfaces.Message, model string, temperature float32) (string, error) {
	switch DetectProvider(model, s.config.LLM.DefaultProvider) {
	case common.LLMProviderClaude:
		if s.claude == nil {
			return "", interfaces.ErrMissingCredential
		}
		return s.claude.chat(ctx, messages, model, temperature, 0)
	default:
		if s.gemini == nil {
			return "", interfaces.ErrMissingCredential
		}
		return s.gemini.chat(ctx, messages, model, temperature)
	}
}

// Embed generates one embedding vector. Embeddings always use Gemini.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates one vector per input text, preserving order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.gemini == nil {
		return nil, interfaces.ErrMissingCredential
	}
	return s.gemini.embedBatch(ctx, texts)
}

// HasCredential reports whether the provider for the default route is usable.
// Embedding-dependent callers also need Gemini specifically; they discover a
// missing Gemini key through ErrMissingCredential from EmbedBatch.
func (s *Service) HasCredential() bool {
	switch s.config.LLM.DefaultProvider {
	case common.LLMProviderClaude:
		return s.claude != nil
	default:
		return s.gemini != nil
	}
}

// Close releases both provider clients.
func (s *Service) Close() error {
	if s.gemini != nil {
		if err := s.gemini.close(); err != nil {
			return err
		}
	}
	if s.claude != nil {
		if err := s.claude.close(); err != nil {
			return err
		}
	}
	return nil
}
