package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-dashboard/internal/analysis"
	"github.com/Veraticus/spice-dashboard/internal/bank"
	"github.com/Veraticus/spice-dashboard/internal/classification"
	"github.com/Veraticus/spice-dashboard/internal/cli"
	"github.com/Veraticus/spice-dashboard/internal/config"
	"github.com/Veraticus/spice-dashboard/internal/engine"
	"github.com/Veraticus/spice-dashboard/internal/importer"
	"github.com/Veraticus/spice-dashboard/internal/llm"
	"github.com/Veraticus/spice-dashboard/internal/service"
	"github.com/Veraticus/spice-dashboard/internal/storage"
)

// app holds the services every command drives.
type app struct {
	cfg      config.Config
	store    *storage.SQLiteStorage
	rules    *classification.Engine
	engine   *engine.CategorizationEngine
	importer *importer.Coordinator
	analyst  *analysis.Analyst
	charts   *analysis.ChartRecommender
	logger   *slog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	store, err := openStorage(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	rules := classification.NewDefaultEngine()
	categorizer := llm.NewCategorizer(client, cfg.LLMClientConfig(), logger)
	pipeline := engine.New(rules, categorizer, engine.Config{
		CallDelay:           cfg.LLM.CallDelay,
		ConfidenceThreshold: cfg.LLM.ConfidenceThreshold,
	}, logger)

	coordinator := importer.New(store, fetcher, pipeline, importer.Config{
		MockDays:  cfg.Import.MockDays,
		ListLimit: cfg.Import.ListLimit,
	}, logger)

	// Analysis calls are one-off per request, so they can afford retries.
	var analysisClient llm.Client
	if client != nil {
		analysisClient = llm.WithRetry(client, service.RetryOptions{
			MaxAttempts:  cfg.LLM.MaxRetries + 1,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
		})
	}

	return &app{
		cfg:      cfg,
		store:    store,
		rules:    rules,
		engine:   pipeline,
		importer: coordinator,
		analyst:  analysis.NewAnalyst(analysisClient, logger),
		charts:   analysis.NewChartRecommender(analysisClient, logger),
		logger:   logger,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close database", "error", err)
	}
}

// openStorage opens the database and brings its schema up to date.
func openStorage(ctx context.Context, path string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// newLLMClient returns nil without an API key; every categorization then
// falls back and analysis uses its defaults.
func newLLMClient(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := llm.NewClient(ctx, cfg.LLMClientConfig())
	if errors.Is(err, llm.ErrNoAPIKey) {
		logger.Warn("No LLM API key configured, AI categorization disabled", "provider", cfg.LLM.Provider)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newFetcher returns nil without bank credentials so imports use mock data.
func newFetcher(cfg config.Config, logger *slog.Logger) (bank.Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		fetcher bank.Fetcher
		err     error
	)

	switch cfg.Bank.Provider {
	case config.BankProviderPlaid:
		var client *bank.PlaidClient
		client, err = bank.NewPlaidClient(bank.PlaidConfig{
			ClientID:    cfg.Plaid.ClientID,
			Secret:      cfg.Plaid.Secret,
			Environment: cfg.Plaid.Environment,
			AccessToken: cfg.Plaid.AccessToken,
			WindowDays:  cfg.Import.MockDays,
		}, logger)
		if err == nil {
			fetcher = client
		}
	default:
		var client *bank.NessieClient
		client, err = bank.NewNessieClient(bank.NessieConfig{
			BaseURL:     cfg.Bank.BaseURL,
			APIKey:      cfg.Bank.APIKey,
			Timeout:     cfg.Bank.Timeout,
			MaxAccounts: cfg.Bank.MaxAccounts,
		}, logger)
		if err == nil {
			fetcher = client
		}
	}

	if errors.Is(err, bank.ErrNoAPIKey) {
		logger.Info("No bank credentials configured, imports use mock data", "provider", cfg.Bank.Provider)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create bank client: %w", err)
	}
	return fetcher, nil
}

// progressOption draws a bar sized by the first report it receives.
func progressOption(w io.Writer, description string) engine.BatchOption {
	var bar *cli.Progress
	return engine.WithProgress(func(done, total int) {
		if bar == nil {
			bar = cli.NewProgress(w, total, description)
		}
		bar.Update(done, total)
	})
}
