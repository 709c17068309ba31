package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/generation"
	"github.com/phrazzld/scry-study/internal/platform/llm"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/auth"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/phrazzld/scry-study/internal/synthesis"
	"github.com/phrazzld/scry-study/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	documentStore store.DocumentStore
	taskStore     task.TaskStore

	jwtService      auth.JWTService
	generator       generation.Generator
	synthesizer     *synthesis.Synthesizer
	documentService service.DocumentService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires every dependency. The task runner is started, and has
// recovered unfinished tasks, before the synthesis event handler is
// registered, so a freshly submitted document is never queued twice.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	version, err := postgres.SchemaVersion(ctx, db)
	if err != nil {
		return nil, err
	}
	logger.Info("Database schema ready", "version", version)

	app.documentStore = postgres.NewPostgresDocumentStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.generator, err = llm.NewGenerator(ctx, logger.With("component", "llm_generator"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", "provider", cfg.LLM.Provider)

	app.synthesizer, err = synthesis.NewSynthesizer(app.generator, logger,
		synthesis.WithSegmentSize(cfg.Synthesis.SegmentSize),
		synthesis.WithConcurrency(cfg.Synthesis.Concurrency),
		synthesis.WithDefaultLanguage(cfg.Synthesis.DefaultLanguage),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	factory := task.NewDocumentSynthesisTaskFactory(app.documentStore, app.synthesizer, logger)

	app.taskRunner, err = setupTaskRunner(app, factory)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(
		task.NewTaskFactoryEventHandler(factory, app.taskRunner, logger),
		task.TaskTypeDocumentSynthesis,
	)

	app.documentService, err = service.NewDocumentService(
		db,
		app.documentStore,
		app.synthesizer,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		app.taskRunner.Stop()
		return nil, fmt.Errorf("failed to create document service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or the process is signaled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupTaskRunner creates the background processor, teaches it to rebuild
// persisted synthesis tasks, and starts it.
func setupTaskRunner(app *application, factory *task.DocumentSynthesisTaskFactory) (*task.TaskRunner, error) {
	runnerCfg := task.DefaultTaskRunnerConfig()
	runnerCfg.QueueSize = app.config.Task.QueueSize
	runnerCfg.WorkerCount = app.config.Task.WorkerCount
	runnerCfg.StuckTaskAge = time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute

	taskRunner := task.NewTaskRunner(app.taskStore, runnerCfg, app.logger)
	taskRunner.RegisterRehydrator(task.TaskTypeDocumentSynthesis, factory.Rehydrate)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}
	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		closeDB(app.db, app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
