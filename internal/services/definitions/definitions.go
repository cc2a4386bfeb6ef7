// Package definitions resolves short contextual word explanations through a
// two-tier cache: an in-process map in front of durable storage, with the
// language model as the source of last resort. Every resolved definition is
// written back to both tiers, including the fallback text for failed lookups
// when fallback caching is enabled, so a word that produced no definition is
// not retried on every click.
package definitions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
)

// FallbackText is served and cached when the model returns nothing usable.
const FallbackText = "No definition found."

const explainPromptFormat = `In the context of the sentence "%s", explain the word "%s" in at most 15 words. Answer in the same language as the context.`

// Service resolves definitions. Safe for concurrent use.
type Service struct {
	storage interfaces.DefinitionStorage
	llm     interfaces.LLMService
	config  common.AnnotateConfig
	logger  arbor.ILogger

	mu     sync.RWMutex
	memory map[string]string
}

func NewService(storage interfaces.DefinitionStorage, llm interfaces.LLMService, cfg common.AnnotateConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		llm:     llm,
		config:  cfg,
		logger:  logger,
		memory:  make(map[string]string),
	}
}

// Define returns the definition of word as used in sentence. Tiers are
// consulted in order: memory, durable storage, model. Whatever tier answers,
// the tiers above it are populated before returning.
func (s *Service) Define(ctx context.Context, word, sentence string) (string, error) {
	if word == "" {
		return "", errors.New("word is required")
	}

	key := models.DefinitionKey(word, sentence)

	s.mu.RLock()
	text, ok := s.memory[key]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	if def, err := s.storage.Get(ctx, word, sentence); err == nil {
		s.remember(key, def.Text)
		return def.Text, nil
	} else if !errors.Is(err, interfaces.ErrKeyNotFound) {
		s.logger.Warn().Err(err).Str("word", word).Msg("Definition cache read failed")
	}

	text, fallback, err := s.explain(ctx, word, sentence)
	if err != nil {
		return "", err
	}

	if !fallback || s.config.CacheFallbacks {
		s.persist(ctx, word, sentence, text, fallback)
		s.remember(key, text)
	}

	return text, nil
}

// CachedCount reports the number of durable cache entries.
func (s *Service) CachedCount(ctx context.Context) (int, error) {
	return s.storage.Count(ctx)
}

// ClearCache drops both cache tiers.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.storage.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear definition storage: %w", err)
	}
	s.mu.Lock()
	s.memory = make(map[string]string)
	s.mu.Unlock()
	return nil
}

// explain asks the model for a definition. A missing credential or an empty
// model answer resolves to the fallback text rather than an error; transport
// failures propagate.
func (s *Service) explain(ctx context.Context, word, sentence string) (text string, fallback bool, err error) {
	if !s.llm.HasCredential() {
		s.logger.Debug().Str("word", word).Msg("No LLM credential, serving fallback definition")
		return FallbackText, true, nil
	}

	answer, err := s.llm.Complete(ctx, &interfaces.CompletionRequest{
		Prompt:      fmt.Sprintf(explainPromptFormat, sentence, word),
		Model:       s.config.Model,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrMissingCredential) {
			return FallbackText, true, nil
		}
		return "", false, fmt.Errorf("definition lookup failed: %w", err)
	}

	if answer == "" {
		return FallbackText, true, nil
	}
	return answer, false, nil
}

func (s *Service) remember(key, text string) {
	s.mu.Lock()
	s.memory[key] = text
	s.mu.Unlock()
}

func (s *Service) persist(ctx context.Context, word, sentence, text string, fallback bool) {
	now := time.Now()
	def := &models.Definition{
		Word:      word,
		Sentence:  sentence,
		Text:      text,
		Fallback:  fallback,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.Put(ctx, def); err != nil {
		// The caller still gets the definition; only durability is lost.
		s.logger.Warn().Err(err).Str("word", word).Msg("Failed to persist definition")
	}
}
