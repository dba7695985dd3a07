// Package api exposes the dashboard services over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/analysis"
	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/engine"
	"github.com/Veraticus/spice-dashboard/internal/importer"
	"github.com/Veraticus/spice-dashboard/internal/model"
	"github.com/Veraticus/spice-dashboard/internal/normalize"
)

const shutdownTimeout = 10 * time.Second

// Importer is the write side of the dashboard.
type Importer interface {
	ImportForUser(ctx context.Context, userID string, opts ...engine.BatchOption) (importer.ImportResult, error)
	Upload(ctx context.Context, userID string, rows []normalize.Row, opts ...engine.BatchOption) (int, error)
	AddManual(ctx context.Context, userID string, entry normalize.ManualEntry) (model.Transaction, error)
	List(ctx context.Context, userID string) ([]model.Transaction, error)
}

// Reviewer re-asks the model about stored transactions.
type Reviewer interface {
	ReviewBatch(ctx context.Context, txns []model.Transaction, opts ...engine.BatchOption) []engine.Review
}

// Analyst writes spending narratives, investment advice and goal plans.
type Analyst interface {
	SpendingAnalysis(ctx context.Context, txns []model.Transaction) *analysis.Narrative
	InvestmentAdvice(ctx context.Context, profile map[string]any) analysis.Advice
	GoalAnalysis(ctx context.Context, form map[string]any) analysis.GoalPlan
}

// ChartRecommender picks a chart for the user's data.
type ChartRecommender interface {
	Recommend(ctx context.Context, txns []model.Transaction) analysis.ChartRecommendation
}

// Services bundles everything the handlers call.
type Services struct {
	Importer Importer
	Reviewer Reviewer
	Analyst  Analyst
	Charts   ChartRecommender
	Verifier *TokenVerifier
}

// Config configures the HTTP listener. A non-nil TLS serves HTTPS.
type Config struct {
	TLS          *tls.Config
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the dashboard API.
type Server struct {
	services Services
	logger   *slog.Logger
	cfg      Config
}

// NewServer creates a server. Every service must be non-nil.
func NewServer(services Services, cfg Config, logger *slog.Logger) (*Server, error) {
	if services.Importer == nil || services.Reviewer == nil || services.Analyst == nil ||
		services.Charts == nil || services.Verifier == nil {
		return nil, fmt.Errorf("%w: api services", common.ErrMissingConfig)
	}

	return &Server{
		services: services,
		logger:   common.ComponentLogger(logger, "api"),
		cfg:      cfg,
	}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("POST /api/transactions/import", s.handleImport)
	protected.HandleFunc("POST /api/transactions/upload", s.handleUpload)
	protected.HandleFunc("POST /api/transactions/manual", s.handleManual)
	protected.HandleFunc("GET /api/transactions", s.handleList)
	protected.HandleFunc("POST /api/transactions/spending-analysis", s.handleSpendingAnalysis)
	protected.HandleFunc("POST /api/transactions/chart", s.handleChart)
	protected.HandleFunc("POST /api/transactions/review", s.handleReview)
	protected.HandleFunc("POST /api/investment-advice", s.handleInvestmentAdvice)
	protected.HandleFunc("POST /api/goal-analysis", s.handleGoalAnalysis)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("/api/", Auth(s.services.Verifier)(protected))

	return Recovery(s.logger)(
		RequestID(
			Logger(s.logger)(
				CORS(mux),
			),
		),
	)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    s.cfg.TLS,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", s.cfg.Addr, "tls", s.cfg.TLS != nil)
		var err error
		if s.cfg.TLS != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
