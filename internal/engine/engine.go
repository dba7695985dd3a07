// Package engine drives transactions through keyword rules and the AI
// categorizer.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/llm"
	"github.com/Veraticus/spice-dashboard/internal/model"
)

// DefaultConfidenceThreshold is the confidence an AI suggestion must exceed
// to replace an existing category during review.
const DefaultConfidenceThreshold = 0.7

// Config holds configuration options for the categorization engine.
type Config struct {
	CallDelay           time.Duration
	ConfidenceThreshold float64
}

// CategorizationEngine categorizes transactions sequentially. It holds no
// per-batch state, so one engine serves concurrent requests.
type CategorizationEngine struct {
	rules     RuleClassifier
	ai        Categorizer
	logger    *slog.Logger
	callDelay time.Duration
	threshold float64
}

// New creates an engine.
func New(rules RuleClassifier, ai Categorizer, cfg Config, logger *slog.Logger) *CategorizationEngine {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}

	return &CategorizationEngine{
		rules:     rules,
		ai:        ai,
		logger:    common.ComponentLogger(logger, "engine"),
		callDelay: cfg.CallDelay,
		threshold: threshold,
	}
}

// BatchSummary counts how each transaction in a batch was handled.
type BatchSummary struct {
	Total          int
	Skipped        int
	RuleMatched    int
	AICategorized  int
	Fallbacks      int
	ProcessingTime time.Duration
}

// BatchOption customizes one CategorizeBatch call.
type BatchOption func(*batchOptions)

type batchOptions struct {
	progress func(done, total int)
}

// WithProgress reports after every transaction.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(o *batchOptions) { o.progress = fn }
}

// CategorizeOne runs rules then the AI categorizer for a single transaction.
func (e *CategorizationEngine) CategorizeOne(ctx context.Context, txn model.Transaction) model.Categorization {
	if category, ok := e.rules.Classify(txn.Description); ok {
		return model.RuleCategorization(category)
	}
	return e.ai.Categorize(ctx, txn.Description, txn.Amount, txn.Type)
}

// CategorizeBatch returns a copy of txns, same length and order, with every
// transaction categorized. Already-categorized transactions are left alone.
// AI calls are spaced by the configured call delay.
func (e *CategorizationEngine) CategorizeBatch(ctx context.Context, txns []model.Transaction, opts ...BatchOption) ([]model.Transaction, BatchSummary) {
	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	pacer := llm.NewPacer(e.callDelay)
	summary := BatchSummary{Total: len(txns)}
	out := make([]model.Transaction, len(txns))

	for i, txn := range txns {
		if txn.IsCategorized() {
			summary.Skipped++
		} else if category, ok := e.rules.Classify(txn.Description); ok {
			txn.Apply(model.RuleCategorization(category))
			summary.RuleMatched++
		} else {
			if err := pacer.Wait(ctx); err != nil {
				e.logger.Debug("Pacing interrupted", "error", err)
			}
			result := e.ai.Categorize(ctx, txn.Description, txn.Amount, txn.Type)
			txn.Apply(result)
			if result.IsFallback() {
				summary.Fallbacks++
			} else {
				summary.AICategorized++
			}
		}

		out[i] = txn
		if o.progress != nil {
			o.progress(i+1, len(txns))
		}
	}

	summary.ProcessingTime = time.Since(start)
	e.logger.Info("Categorized batch",
		"total", summary.Total,
		"skipped", summary.Skipped,
		"rule_matched", summary.RuleMatched,
		"ai", summary.AICategorized,
		"fallbacks", summary.Fallbacks,
		"duration", summary.ProcessingTime)

	return out, summary
}
