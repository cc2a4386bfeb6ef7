package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
)

// DefinitionStorage implements the durable tier of the definition cache.
// Entries are keyed by the literal (word, sentence) pair.
type DefinitionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDefinitionStorage creates a new DefinitionStorage instance
func NewDefinitionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DefinitionStorage {
	return &DefinitionStorage{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a definition by its (word, sentence) pair
func (s *DefinitionStorage) Get(ctx context.Context, word, sentence string) (*models.Definition, error) {
	key := models.DefinitionKey(word, sentence)
	var def models.Definition
	err := s.db.Store().Get(key, &def)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get definition: %w", err)
	}
	return &def, nil
}

// Put stores a definition (last-write-wins), preserving CreatedAt on update
func (s *DefinitionStorage) Put(ctx context.Context, def *models.Definition) error {
	if def == nil {
		return fmt.Errorf("definition is required")
	}

	key := models.DefinitionKey(def.Word, def.Sentence)
	now := time.Now()
	if def.CreatedAt.IsZero() {
		def.CreatedAt = now
	}
	def.UpdatedAt = now

	var existing models.Definition
	if err := s.db.Store().Get(key, &existing); err == nil {
		def.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(key, def); err != nil {
		return fmt.Errorf("failed to store definition: %w", err)
	}
	return nil
}

// Count returns the number of stored definitions
func (s *DefinitionStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Definition{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count definitions: %w", err)
	}
	return int(count), nil
}

// DeleteAll clears the durable definition cache
func (s *DefinitionStorage) DeleteAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.Definition{}, nil); err != nil {
		return fmt.Errorf("failed to clear definitions: %w", err)
	}
	s.logger.Info().Msg("Deleted all cached definitions")
	return nil
}
