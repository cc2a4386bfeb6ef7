package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lexia/internal/common"
	"github.com/ternarybob/lexia/internal/handlers"
	"github.com/ternarybob/lexia/internal/interfaces"
	"github.com/ternarybob/lexia/internal/services/annotator"
	"github.com/ternarybob/lexia/internal/services/classifier"
	"github.com/ternarybob/lexia/internal/services/definitions"
	"github.com/ternarybob/lexia/internal/services/extractor"
	"github.com/ternarybob/lexia/internal/services/llm"
	"github.com/ternarybob/lexia/internal/services/pipeline"
	"github.com/ternarybob/lexia/internal/services/qa"
	"github.com/ternarybob/lexia/internal/services/settings"
	storagebadger "github.com/ternarybob/lexia/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	LLMService        interfaces.LLMService
	Classifier        *classifier.Classifier
	Annotator         *annotator.Annotator
	Extractor         *extractor.Extractor
	Pipeline          *pipeline.Pipeline
	DefinitionService *definitions.Service
	QAService         *qa.Service
	SettingsService   *settings.Service

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	AnnotateHandler   *handlers.AnnotateHandler
	DefinitionHandler *handlers.DefinitionHandler
	QAHandler         *handlers.QAHandler
	SettingsHandler   *handlers.SettingsHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Bool("llm_available", app.LLMService.HasCredential()).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	manager, err := storagebadger.NewManager(a.Logger, &a.Config.Storage.Badger, &a.Config.Maintenance)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = manager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	var err error

	// LLM service first; definition and QA services degrade without it
	a.LLMService, err = llm.NewService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	if !a.LLMService.HasCredential() {
		a.Logger.Warn().Msg("No LLM API key configured, definitions and QA will return fallbacks")
		a.Logger.Info().Msg("Set LEXIA_GEMINI_API_KEY or LEXIA_ANTHROPIC_API_KEY to enable LLM features")
	}

	a.Classifier = classifier.New(a.Config.Annotate.MinWordLength)
	a.Annotator = annotator.New(a.Classifier, a.Logger)
	a.Extractor = extractor.New(a.Logger)
	a.Pipeline = pipeline.New(a.Annotator, a.Logger)

	a.SettingsService = settings.NewService(a.StorageManager.KVStorage(), a.Logger)

	a.DefinitionService = definitions.NewService(
		a.StorageManager.DefinitionStorage(),
		a.LLMService,
		a.Config.Annotate,
		a.Logger,
	)

	a.QAService = qa.NewService(
		a.StorageManager.PageEmbeddingStorage(),
		a.LLMService,
		a.Extractor,
		a.Config.QA,
		a.Logger,
	)

	a.Logger.Debug().Msg("Services initialized")
	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.AnnotateHandler = handlers.NewAnnotateHandler(a.Pipeline, a.Annotator, a.SettingsService, a.Logger)
	a.DefinitionHandler = handlers.NewDefinitionHandler(a.DefinitionService, a.Logger)
	a.QAHandler = handlers.NewQAHandler(a.QAService, a.Logger)
	a.SettingsHandler = handlers.NewSettingsHandler(a.SettingsService, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
