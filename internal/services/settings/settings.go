// Package settings persists the user-facing reading preferences in the
// key/value store and notifies subscribers on change.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/models"
)

// settingsKey is the key/value store key holding the settings snapshot.
const settingsKey = "settings"

// Service reads and writes the settings snapshot. Safe for concurrent use;
// writes are last-write-wins.
type Service struct {
	storage  interfaces.KeyValueStorage
	validate *validator.Validate
	logger   arbor.ILogger

	mu          sync.RWMutex
	subscribers []func(*models.Settings)
}

func NewService(storage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Get returns the stored settings, or the defaults when none are stored yet.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	raw, err := s.storage.Get(ctx, settingsKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return models.DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), settings); err != nil {
		// A corrupt snapshot falls back to defaults rather than wedging
		// every caller.
		s.logger.Warn().Err(err).Msg("Stored settings are unreadable, using defaults")
		return models.DefaultSettings(), nil
	}
	return settings, nil
}

// Update validates and persists a settings snapshot, then notifies
// subscribers with the stored value.
func (s *Service) Update(ctx context.Context, settings *models.Settings) error {
	if settings == nil {
		return errors.New("settings are required")
	}
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.storage.Set(ctx, settingsKey, string(raw)); err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}

	s.logger.Info().
		Bool("explainer", settings.ExplainerEnabled).
		Bool("bionic", settings.BionicEnabled).
		Msg("Settings updated")

	s.mu.RLock()
	subscribers := make([]func(*models.Settings), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.RUnlock()

	for _, notify := range subscribers {
		notify(settings)
	}
	return nil
}

// Subscribe registers a callback invoked after every successful update.
func (s *Service) Subscribe(fn func(*models.Settings)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}
