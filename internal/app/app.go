package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"GrantScanner/internal/config"
	"GrantScanner/internal/infrastructure/fetch"
	"GrantScanner/internal/infrastructure/scheduler"
	"GrantScanner/internal/infrastructure/storage"
	"GrantScanner/internal/infrastructure/telegram"
	"GrantScanner/internal/logging"
	"GrantScanner/internal/normalize"
	"GrantScanner/internal/ports"
	"GrantScanner/internal/source"
	"GrantScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := source.NewRegistry()
	registry.Register(fetch.NewVinnovaSource(cfg.Sources.Vinnova, nil))
	registry.Register(fetch.NewEUSource(cfg.Sources.EU, nil))
	for _, funder := range cfg.Sources.Funders {
		registry.Register(fetch.NewFundingSource(funder, nil, baseLogger.With("component", "fetch.funding")))
	}

	var db *sql.DB
	var repository ports.OpportunityRepository
	if cfg.Database.DSN != "" {
		conn, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = conn
		repository = storage.NewPostgresRepository(conn)
	} else {
		baseLogger.Warn("no database dsn configured, records are not persisted")
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sources:    registry,
		Normalizer: normalize.New(heuristicTables(cfg.Heuristics)),
		Validator:  normalize.NewValidator(),
		Repository: repository,
		Notifier:   notifier,
		Since:      cfg.Sources.Vinnova.Since,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	return &Application{
		cfg:       cfg,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler")),
		db:        db,
		logger:    baseLogger,
	}, nil
}

// Run performs one immediate sweep, then hands control to the scheduler
// until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if err := a.pipeline.Run(ctx); err != nil {
		a.logger.Error("initial run failed", "error", err)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx := context.WithoutCancel(ctx)
	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
	return nil
}

// heuristicTables overlays configured keyword tables on the defaults.
func heuristicTables(cfg config.HeuristicsConfig) normalize.Tables {
	tables := normalize.DefaultTables()
	if len(cfg.DocumentKeywords) > 0 {
		tables.DocumentKeywords = cfg.DocumentKeywords
	}
	if len(cfg.Tags) > 0 {
		rules := make([]normalize.TagRule, 0, len(cfg.Tags))
		for _, rule := range cfg.Tags {
			rules = append(rules, normalize.TagRule{Tag: rule.Tag, Keywords: rule.Keywords})
		}
		tables.TagRules = rules
	}
	return tables
}
