package qa

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
	"github.com/ternarybob/lexia/internal/services/extractor"
)

type mockLLM struct {
	mu         sync.Mutex
	credential bool
	queryVec   []float32
	chatAnswer string
	chatErr    error

	embedCalls     int
	batchCalls     int
	chatCalls      int
	lastChatPrompt string
}

func (m *mockLLM) Complete(context.Context, *interfaces.CompletionRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockLLM) Chat(_ context.Context, messages []interfaces.Message, _ string, _ float32) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatCalls++
	for _, msg := range messages {
		if msg.Role == "user" {
			m.lastChatPrompt = msg.Content
		}
	}
	return m.chatAnswer, m.chatErr
}

func (m *mockLLM) Embed(context.Context, string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	return m.queryVec, nil
}

func (m *mockLLM) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i + 1), 0, 0}
	}
	return vectors, nil
}

func (m *mockLLM) HasCredential() bool { return m.credential }
func (m *mockLLM) Close() error        { return nil }

type memEmbeddingStorage struct {
	mu     sync.Mutex
	pages  map[string]*models.Page
	chunks map[string][]*models.PageChunk
}

func newMemEmbeddingStorage() *memEmbeddingStorage {
	return &memEmbeddingStorage{
		pages:  make(map[string]*models.Page),
		chunks: make(map[string][]*models.PageChunk),
	}
}

func (s *memEmbeddingStorage) HasPage(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chunks[url]
	return ok, nil
}

func (s *memEmbeddingStorage) PutPage(_ context.Context, page *models.Page, chunks []*models.PageChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.URL] = page
	s.chunks[page.URL] = chunks
	return nil
}

func (s *memEmbeddingStorage) GetChunks(_ context.Context, url string) ([]*models.PageChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunks, ok := s.chunks[url]
	if !ok {
		return nil, interfaces.ErrPageNotEmbedded
	}
	return chunks, nil
}

func (s *memEmbeddingStorage) GetPage(_ context.Context, url string) (*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	page, ok := s.pages[url]
	if !ok {
		return nil, interfaces.ErrPageNotEmbedded
	}
	return page, nil
}

func (s *memEmbeddingStorage) ListPages(context.Context) ([]*models.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pages []*models.Page
	for _, p := range s.pages {
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *memEmbeddingStorage) DeletePage(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, url)
	delete(s.chunks, url)
	return nil
}

func newTestService(llm *mockLLM, storage interfaces.PageEmbeddingStorage) *Service {
	cfg := common.QAConfig{ChunkWords: 400, TopK: 4, Temperature: 0.2}
	return NewService(storage, llm, extractor.New(arbor.NewLogger()), cfg, arbor.NewLogger())
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Zero vectors and mismatched lengths score 0 instead of NaN.
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func chunk(idx int, text string, vec []float32) *models.PageChunk {
	return &models.PageChunk{URL: "https://example.com", Index: idx, Text: text, Vector: vec}
}

func TestRankChunksOrdersByScore(t *testing.T) {
	// Scores against the query [1,0]: 0.9, 0.4, 0.7.
	chunks := []*models.PageChunk{
		chunk(0, "first", []float32{0.9, 0.4358899}),
		chunk(1, "second", []float32{0.4, 0.9165151}),
		chunk(2, "third", []float32{0.7, 0.7141428}),
	}

	ranked := RankChunks(chunks, []float32{1, 0}, 4)

	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].Text)
	assert.Equal(t, "third", ranked[1].Text)
	assert.Equal(t, "second", ranked[2].Text)
}

func TestRankChunksTopKLimit(t *testing.T) {
	var chunks []*models.PageChunk
	for i := 0; i < 10; i++ {
		chunks = append(chunks, chunk(i, "c", []float32{float32(i), 1}))
	}

	ranked := RankChunks(chunks, []float32{1, 0}, 4)
	assert.Len(t, ranked, 4)
}

func TestEnsureEmbeddedStoresChunksOnce(t *testing.T) {
	llm := &mockLLM{credential: true}
	storage := newMemEmbeddingStorage()
	s := newTestService(llm, storage)

	ctx := context.Background()
	page := "<html><head><title>Doc</title></head><body><p>Some page text to embed.</p></body></html>"

	did, err := s.EnsureEmbedded(ctx, "https://example.com/doc", page)
	require.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, 1, llm.batchCalls)

	// Second call is a no-op: no embedding calls, no work.
	did, err = s.EnsureEmbedded(ctx, "https://example.com/doc", page)
	require.NoError(t, err)
	assert.False(t, did)
	assert.Equal(t, 1, llm.batchCalls)

	stored, err := storage.GetChunks(ctx, "https://example.com/doc")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 0, stored[0].Index)
	assert.Contains(t, stored[0].Text, "Some page text to embed.")

	snapshot, err := storage.GetPage(ctx, "https://example.com/doc")
	require.NoError(t, err)
	assert.Equal(t, "Doc", snapshot.Title)
	assert.Equal(t, 1, snapshot.ChunkCount)
}

func TestEnsureEmbeddedNormalizesURL(t *testing.T) {
	llm := &mockLLM{credential: true}
	s := newTestService(llm, newMemEmbeddingStorage())

	ctx := context.Background()
	page := "<html><body><p>Text.</p></body></html>"

	did, err := s.EnsureEmbedded(ctx, "https://Example.com/doc#section", page)
	require.NoError(t, err)
	assert.True(t, did)

	// Fragment and host case differences map to the same page.
	did, err = s.EnsureEmbedded(ctx, "https://example.com/doc", page)
	require.NoError(t, err)
	assert.False(t, did)
}

func TestEnsureEmbeddedConcurrentSameURL(t *testing.T) {
	llm := &mockLLM{credential: true}
	s := newTestService(llm, newMemEmbeddingStorage())

	page := "<html><body><p>Concurrent embedding target.</p></body></html>"

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			did, err := s.EnsureEmbedded(context.Background(), "https://example.com/race", page)
			assert.NoError(t, err)
			results[i] = did
		}(i)
	}
	wg.Wait()

	performed := 0
	for _, did := range results {
		if did {
			performed++
		}
	}
	assert.Equal(t, 1, performed, "exactly one caller performs the embedding")
	assert.Equal(t, 1, llm.batchCalls)
}

func TestEnsureEmbeddedNoCredential(t *testing.T) {
	llm := &mockLLM{credential: false}
	s := newTestService(llm, newMemEmbeddingStorage())

	_, err := s.EnsureEmbedded(context.Background(), "https://example.com", "<p>x</p>")
	assert.ErrorIs(t, err, interfaces.ErrMissingCredential)
}

func TestAnswerSelectsTopChunksInScoreOrder(t *testing.T) {
	llm := &mockLLM{credential: true, chatAnswer: "Grounded answer.", queryVec: []float32{1, 0}}
	storage := newMemEmbeddingStorage()
	s := newTestService(llm, storage)

	ctx := context.Background()
	url := "https://example.com/doc"
	require.NoError(t, storage.PutPage(ctx,
		&models.Page{URL: url, ChunkCount: 3, EmbeddedAt: time.Now()},
		[]*models.PageChunk{
			chunk(0, "chunk one", []float32{0.9, 0.4358899}),
			chunk(1, "chunk two", []float32{0.4, 0.9165151}),
			chunk(2, "chunk three", []float32{0.7, 0.7141428}),
		}))

	answer, err := s.Answer(ctx, url, "What is this about?")
	require.NoError(t, err)
	assert.Equal(t, "Grounded answer.", answer)

	// Context holds chunk one, chunk three, chunk two in that order.
	prompt := llm.lastChatPrompt
	one := strings.Index(prompt, "chunk one")
	three := strings.Index(prompt, "chunk three")
	two := strings.Index(prompt, "chunk two")
	require.NotEqual(t, -1, one)
	require.NotEqual(t, -1, three)
	require.NotEqual(t, -1, two)
	assert.Less(t, one, three)
	assert.Less(t, three, two)
	assert.Contains(t, prompt, "\n\n---\n\n")
	assert.Contains(t, prompt, "Question: What is this about?")
}

func TestAnswerNotEmbedded(t *testing.T) {
	llm := &mockLLM{credential: true}
	s := newTestService(llm, newMemEmbeddingStorage())

	answer, err := s.Answer(context.Background(), "https://example.com/missing", "Anything?")
	require.NoError(t, err)
	assert.Equal(t, NotEmbeddedMessage, answer)
	assert.Equal(t, 0, llm.chatCalls, "no model call for a page without chunks")
	assert.Equal(t, 0, llm.embedCalls)
}

func TestAnswerEmptyModelResponse(t *testing.T) {
	llm := &mockLLM{credential: true, chatAnswer: "  ", queryVec: []float32{1, 0}}
	storage := newMemEmbeddingStorage()
	s := newTestService(llm, storage)

	ctx := context.Background()
	url := "https://example.com/doc"
	require.NoError(t, storage.PutPage(ctx,
		&models.Page{URL: url, ChunkCount: 1},
		[]*models.PageChunk{chunk(0, "text", []float32{1, 0})}))

	answer, err := s.Answer(ctx, url, "Question?")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerMessage, answer)
}

func TestAnswerEmptyQuestion(t *testing.T) {
	s := newTestService(&mockLLM{credential: true}, newMemEmbeddingStorage())
	_, err := s.Answer(context.Background(), "https://example.com", "  ")
	assert.Error(t, err)
}

func TestForgetAllowsReembedding(t *testing.T) {
	llm := &mockLLM{credential: true}
	s := newTestService(llm, newMemEmbeddingStorage())

	ctx := context.Background()
	page := "<html><body><p>Text.</p></body></html>"

	_, err := s.EnsureEmbedded(ctx, "https://example.com/doc", page)
	require.NoError(t, err)
	require.NoError(t, s.Forget(ctx, "https://example.com/doc"))

	did, err := s.EnsureEmbedded(ctx, "https://example.com/doc", page)
	require.NoError(t, err)
	assert.True(t, did)
	assert.Equal(t, 2, llm.batchCalls)
}
