package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/lexia/internal/models"
)

// ErrKeyNotFound is returned when a key is not found in the key/value store
var ErrKeyNotFound = errors.New("key not found")

// ErrPageNotEmbedded is returned when chunks are requested for a URL that has
// not been embedded yet
var ErrPageNotEmbedded = errors.New("page not embedded")

// KeyValuePair represents a single key/value pair with metadata
type KeyValuePair struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeyValueStorage defines operations for generic key/value storage. Settings
// persistence sits on top of this.
type KeyValueStorage interface {
	// Get retrieves a value by key, returns ErrKeyNotFound if absent
	Get(ctx context.Context, key string) (string, error)

	// Set inserts or updates a key/value pair (last-write-wins)
	Set(ctx context.Context, key string, value string) error

	// Delete removes a key/value pair, returns ErrKeyNotFound if absent
	Delete(ctx context.Context, key string) error

	// List returns all key/value pairs
	List(ctx context.Context) ([]KeyValuePair, error)
}

// DefinitionStorage is the durable tier of the definition cache. A key is the
// literal (word, sentence) pair; the same word in a different sentence is a
// distinct entry.
type DefinitionStorage interface {
	// Get returns the stored definition or ErrKeyNotFound
	Get(ctx context.Context, word, sentence string) (*models.Definition, error)

	// Put stores a definition (last-write-wins)
	Put(ctx context.Context, def *models.Definition) error

	// Count returns the number of stored definitions
	Count(ctx context.Context) (int, error)

	// DeleteAll clears the durable definition cache
	DeleteAll(ctx context.Context) error
}

// PageEmbeddingStorage stores embedded page chunks keyed by (url, index).
// Chunks for one page are written in a single logical write and are immutable
// afterwards: a page is either absent or fully embedded.
type PageEmbeddingStorage interface {
	// HasPage reports whether any chunks exist for the URL
	HasPage(ctx context.Context, url string) (bool, error)

	// PutPage stores all chunks for a page plus its snapshot in one write
	PutPage(ctx context.Context, page *models.Page, chunks []*models.PageChunk) error

	// GetChunks returns all chunks for the URL ordered by index, or
	// ErrPageNotEmbedded when none exist
	GetChunks(ctx context.Context, url string) ([]*models.PageChunk, error)

	// GetPage returns the stored page snapshot or ErrPageNotEmbedded
	GetPage(ctx context.Context, url string) (*models.Page, error)

	// ListPages returns all stored page snapshots
	ListPages(ctx context.Context) ([]*models.Page, error)

	// DeletePage removes a page snapshot and all of its chunks
	DeletePage(ctx context.Context, url string) error
}

// StorageManager provides access to all storage implementations
type StorageManager interface {
	KVStorage() KeyValueStorage
	DefinitionStorage() DefinitionStorage
	PageEmbeddingStorage() PageEmbeddingStorage
	Close() error
}
