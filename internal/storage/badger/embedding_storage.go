package badger

import (
	"context"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
)

// EmbeddingStorage stores page snapshots and their embedded chunks. All
// chunks of one page are written in a single transaction with the snapshot:
// a page is either absent or fully embedded, never half-written.
type EmbeddingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewEmbeddingStorage creates a new EmbeddingStorage instance
func NewEmbeddingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PageEmbeddingStorage {
	return &EmbeddingStorage{
		db:     db,
		logger: logger,
	}
}

// HasPage reports whether a snapshot exists for the URL
func (s *EmbeddingStorage) HasPage(ctx context.Context, url string) (bool, error) {
	var page models.Page
	err := s.db.Store().Get(url, &page)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check page existence: %w", err)
	}
	return true, nil
}

// PutPage stores the snapshot and all chunks in one transaction
func (s *EmbeddingStorage) PutPage(ctx context.Context, page *models.Page, chunks []*models.PageChunk) error {
	if page == nil {
		return fmt.Errorf("page is required")
	}

	err := s.db.Store().Badger().Update(func(tx *badgerdb.Txn) error {
		if err := s.db.Store().TxUpsert(tx, page.URL, page); err != nil {
			return fmt.Errorf("failed to store page snapshot: %w", err)
		}
		for _, chunk := range chunks {
			key := models.ChunkKey(chunk.URL, chunk.Index)
			if err := s.db.Store().TxUpsert(tx, key, chunk); err != nil {
				return fmt.Errorf("failed to store chunk %d: %w", chunk.Index, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("url", page.URL).Int("chunks", len(chunks)).Msg("Page embeddings stored")
	return nil
}

// GetChunks returns all chunks for the URL ordered by index
func (s *EmbeddingStorage) GetChunks(ctx context.Context, url string) ([]*models.PageChunk, error) {
	var chunks []*models.PageChunk
	err := s.db.Store().Find(&chunks, badgerhold.Where("URL").Eq(url).Index("URL").SortBy("Index"))
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, interfaces.ErrPageNotEmbedded
	}
	return chunks, nil
}

// GetPage returns the stored page snapshot
func (s *EmbeddingStorage) GetPage(ctx context.Context, url string) (*models.Page, error) {
	var page models.Page
	err := s.db.Store().Get(url, &page)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrPageNotEmbedded
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load page snapshot: %w", err)
	}
	return &page, nil
}

// ListPages returns all stored page snapshots ordered by embedding time DESC
func (s *EmbeddingStorage) ListPages(ctx context.Context) ([]*models.Page, error) {
	var pages []*models.Page
	err := s.db.Store().Find(&pages, badgerhold.Where("URL").Ne("").SortBy("EmbeddedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// DeletePage removes the snapshot and all chunks for the URL
func (s *EmbeddingStorage) DeletePage(ctx context.Context, url string) error {
	if err := s.db.Store().DeleteMatching(&models.PageChunk{}, badgerhold.Where("URL").Eq(url).Index("URL")); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	err := s.db.Store().Delete(url, &models.Page{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete page snapshot: %w", err)
	}
	return nil
}
