package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sozercan/upi-search/internal/config"
	"github.com/sozercan/upi-search/internal/executor"
	"github.com/sozercan/upi-search/internal/history"
	"github.com/sozercan/upi-search/internal/llm"
	"github.com/sozercan/upi-search/internal/logger"
	"github.com/sozercan/upi-search/internal/parser"
	"github.com/sozercan/upi-search/internal/search"
	"github.com/sozercan/upi-search/internal/translator"
)

// app holds everything a command needs, built from the loaded config.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	connector *llm.Connector
	executor  executor.Executor
	history   history.History
	service   *search.Service
}

// loadConfig reads the config and builds the logger. defaultLevel applies
// when neither --log-level nor logging.level is set.
func loadConfig(defaultLevel string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if level == "" {
		level = defaultLevel
	}

	log, err := logger.NewLogger(cfg.Logging.Env, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func newConnector(ctx context.Context, cfg *config.Config, log *zap.Logger) (*llm.Connector, error) {
	provider, err := llm.NewProvider(ctx, &cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return llm.NewConnector(provider, llm.ModelFor(&cfg.LLM), cfg.LLM.MaxRetries, log.Named("llm")), nil
}

// newApp wires the full search pipeline.
func newApp(ctx context.Context, defaultLevel string) (*app, error) {
	cfg, log, err := loadConfig(defaultLevel)
	if err != nil {
		return nil, err
	}

	connector, err := newConnector(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	language := translator.LanguageForDriver(cfg.Database.Driver)
	tr, err := translator.New(language, connector, log.Named("translator"))
	if err != nil {
		return nil, err
	}

	exec, err := executor.New(&cfg.Database, log.Named("executor"))
	if err != nil {
		return nil, fmt.Errorf("failed to create query executor: %w", err)
	}

	hist, err := history.New(ctx, &cfg.History, log.Named("history"))
	if err != nil {
		_ = exec.Close(ctx)
		return nil, fmt.Errorf("failed to create query history: %w", err)
	}

	svc := search.New(cfg.Search, search.Deps{
		Parser:     parser.New(cfg.Parser, connector, log.Named("parser")),
		Translator: tr,
		Executor:   exec,
		History:    hist,
		Model:      connector.Model(),
		Logger:     log.Named("search"),
	})

	log.Debug("Search pipeline ready",
		zap.String("driver", cfg.Database.Driver),
		zap.String("language", language),
		zap.String("provider", connector.ProviderName()),
		zap.String("model", connector.Model()),
		zap.String("history", cfg.History.Backend),
	)

	return &app{
		cfg:       cfg,
		logger:    log,
		connector: connector,
		executor:  exec,
		history:   hist,
		service:   svc,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.executor.Close(ctx); err != nil {
		a.logger.Warn("Failed to close executor", zap.Error(err))
	}
	if err := a.history.Close(); err != nil {
		a.logger.Warn("Failed to close history", zap.Error(err))
	}
	_ = a.logger.Sync()
}
