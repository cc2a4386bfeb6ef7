// Package qa implements page embedding and retrieval-grounded question
// answering. A page is embedded once: its text is chunked at sentence
// boundaries, each chunk embedded, and the vectors stored. A question is
// embedded, ranked against the stored chunks by cosine similarity, and the
// best chunks become the grounding context of a chat call.
package qa

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
	"github.com/ternarybob/lexia/internal/services/extractor"
)

// NotEmbeddedMessage is returned by Answer when no chunks exist for the URL.
const NotEmbeddedMessage = "This page is not embedded yet. Please try again later."

// NoAnswerMessage is both the model's instructed refusal and the fallback for
// an empty model response.
const NoAnswerMessage = "I could not find anything about that on this page."

const groundingSystemPrompt = `You are a helpful assistant. You are only allowed to answer based on the context provided.
If the answer is not clearly present or cannot be confidently inferred from the context, respond with:
"` + NoAnswerMessage + `"`

const contextSeparator = "\n\n---\n\n"

// Service embeds pages and answers questions about them.
type Service struct {
	storage   interfaces.PageEmbeddingStorage
	llm       interfaces.LLMService
	extractor *extractor.Extractor
	config    common.QAConfig
	logger    arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(storage interfaces.PageEmbeddingStorage, llm interfaces.LLMService, ext *extractor.Extractor, cfg common.QAConfig, logger arbor.ILogger) *Service {
	if cfg.ChunkWords <= 0 {
		cfg.ChunkWords = extractor.DefaultChunkWords
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	return &Service{
		storage:   storage,
		llm:       llm,
		extractor: ext,
		config:    cfg,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// EnsureEmbedded embeds a page unless its chunks already exist. Returns true
// when embedding work was performed. Concurrent calls for the same URL are
// serialized so the existence check and the write form one critical section;
// the loser of the race observes the winner's chunks and performs no work.
func (s *Service) EnsureEmbedded(ctx context.Context, pageURL, pageHTML string) (bool, error) {
	normalized, err := common.NormalizePageURL(pageURL)
	if err != nil {
		return false, fmt.Errorf("invalid page URL: %w", err)
	}

	lock := s.urlLock(normalized)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.storage.HasPage(ctx, normalized)
	if err != nil {
		return false, fmt.Errorf("failed to check embedding cache: %w", err)
	}
	if exists {
		s.logger.Debug().Str("url", normalized).Msg("Page already embedded")
		return false, nil
	}

	if !s.llm.HasCredential() {
		return false, interfaces.ErrMissingCredential
	}

	text, err := s.extractor.Text(pageHTML)
	if err != nil {
		return false, err
	}
	if text == "" {
		return false, errors.New("page has no extractable text")
	}

	chunks := extractor.Chunk(text, s.config.ChunkWords)

	started := time.Now()
	vectors, err := s.llm.EmbedBatch(ctx, chunks)
	if err != nil {
		return false, fmt.Errorf("failed to embed page chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return false, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	markdown, err := s.extractor.Markdown(pageHTML)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", normalized).Msg("Markdown snapshot failed, storing without it")
		markdown = ""
	}

	now := time.Now()
	page := &models.Page{
		URL:        normalized,
		Title:      s.extractor.Title(pageHTML),
		Markdown:   markdown,
		ChunkCount: len(chunks),
		EmbeddedAt: now,
	}

	records := make([]*models.PageChunk, len(chunks))
	for i, chunk := range chunks {
		records[i] = &models.PageChunk{
			URL:       normalized,
			Index:     i,
			Text:      chunk,
			Vector:    vectors[i],
			CreatedAt: now,
		}
	}

	if err := s.storage.PutPage(ctx, page, records); err != nil {
		return false, fmt.Errorf("failed to store page embeddings: %w", err)
	}

	s.logger.Info().
		Str("url", normalized).
		Int("chunks", len(chunks)).
		Str("duration", time.Since(started).String()).
		Msg("Page embedded")

	return true, nil
}

// Answer responds to a question about an embedded page. The question is
// embedded, stored chunks ranked by cosine similarity, and the top chunks in
// descending score order become the grounding context.
func (s *Service) Answer(ctx context.Context, pageURL, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("question is required")
	}

	normalized, err := common.NormalizePageURL(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	chunks, err := s.storage.GetChunks(ctx, normalized)
	if err != nil {
		if errors.Is(err, interfaces.ErrPageNotEmbedded) {
			return NotEmbeddedMessage, nil
		}
		return "", fmt.Errorf("failed to load page chunks: %w", err)
	}
	if len(chunks) == 0 {
		return NotEmbeddedMessage, nil
	}

	if !s.llm.HasCredential() {
		return "", interfaces.ErrMissingCredential
	}

	queryVec, err := s.llm.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	ranked := RankChunks(chunks, queryVec, s.config.TopK)

	parts := make([]string, len(ranked))
	for i, c := range ranked {
		parts[i] = c.Text
	}
	grounding := strings.Join(parts, contextSeparator)

	answer, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: groundingSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", grounding, question)},
	}, s.config.Model, s.config.Temperature)
	if err != nil {
		return "", fmt.Errorf("grounded chat call failed: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return NoAnswerMessage, nil
	}
	return answer, nil
}

// IsEmbedded reports whether chunks exist for the URL.
func (s *Service) IsEmbedded(ctx context.Context, pageURL string) (bool, error) {
	normalized, err := common.NormalizePageURL(pageURL)
	if err != nil {
		return false, fmt.Errorf("invalid page URL: %w", err)
	}
	return s.storage.HasPage(ctx, normalized)
}

// Pages lists all embedded page snapshots.
func (s *Service) Pages(ctx context.Context) ([]*models.Page, error) {
	return s.storage.ListPages(ctx)
}

// Forget removes a page and its chunks so it can be re-embedded.
func (s *Service) Forget(ctx context.Context, pageURL string) error {
	normalized, err := common.NormalizePageURL(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}

	lock := s.urlLock(normalized)
	lock.Lock()
	defer lock.Unlock()

	return s.storage.DeletePage(ctx, normalized)
}

// RankChunks returns the topK highest-scoring chunks against the query vector
// in descending score order. Ties keep chunk-index order so ranking is stable.
func RankChunks(chunks []*models.PageChunk, query []float32, topK int) []*models.PageChunk {
	type scored struct {
		chunk *models.PageChunk
		score float64
	}

	scores := make([]scored, len(chunks))
	for i, c := range chunks {
		scores[i] = scored{chunk: c, score: CosineSimilarity(query, c.Vector)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if topK > len(scores) {
		topK = len(scores)
	}

	out := make([]*models.PageChunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = scores[i].chunk
	}
	return out
}

func (s *Service) urlLock(url string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[url]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[url] = lock
	}
	return lock
}
