package badger

import (
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	kv        interfaces.KeyValueStorage
	defs      interfaces.DefinitionStorage
	embeds    interfaces.PageEmbeddingStorage
	scheduler *cron.Cron
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager. When maintenance is
// enabled, a cron schedule runs Badger value-log garbage collection.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig, maintenance *common.MaintenanceConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		defs:   NewDefinitionStorage(db, logger),
		embeds: NewEmbeddingStorage(db, logger),
		logger: logger,
	}

	if maintenance != nil && maintenance.Enabled {
		scheduler := cron.New(cron.WithSeconds())
		_, err := scheduler.AddFunc(maintenance.Schedule, func() {
			if err := db.RunValueLogGC(0.5); err != nil {
				logger.Warn().Err(err).Msg("Value log GC failed")
			} else {
				logger.Debug().Msg("Value log GC completed")
			}
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		scheduler.Start()
		manager.scheduler = scheduler
		logger.Info().Str("schedule", maintenance.Schedule).Msg("Storage maintenance scheduled")
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// KVStorage returns the KeyValue storage interface
func (m *Manager) KVStorage() interfaces.KeyValueStorage {
	return m.kv
}

// DefinitionStorage returns the Definition storage interface
func (m *Manager) DefinitionStorage() interfaces.DefinitionStorage {
	return m.defs
}

// PageEmbeddingStorage returns the PageEmbedding storage interface
func (m *Manager) PageEmbeddingStorage() interfaces.PageEmbeddingStorage {
	return m.embeds
}

// Close stops the maintenance scheduler and closes the database connection
func (m *Manager) Close() error {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
