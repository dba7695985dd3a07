package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-dashboard/internal/model"
)

const (
	defaultCategorizerTemperature = 0.2
	defaultCategorizerMaxTokens   = 200
)

var categorizationSchema = &Schema{
	Type: SchemaObject,
	Properties: map[string]*Schema{
		"category":   {Type: SchemaString},
		"reason":     {Type: SchemaString},
		"confidence": {Type: SchemaNumber},
	},
	Required: []string{"category", "reason"},
}

// Categorizer assigns a category to a single transaction using a model.
// It never returns an error: any failure yields model.FallbackCategorization.
type Categorizer struct {
	client      Client
	logger      *slog.Logger
	categories  []string
	temperature float64
	maxTokens   int
}

// NewCategorizer creates a categorizer. A nil client is allowed and makes
// every call fall back.
func NewCategorizer(client Client, cfg Config, logger *slog.Logger) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}

	temperature := defaultCategorizerTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultCategorizerMaxTokens
	}

	return &Categorizer{
		client:      client,
		logger:      logger.With("component", "categorizer"),
		categories:  model.Categories(),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Categorize asks the model for a category. Exactly one call is made.
func (c *Categorizer) Categorize(ctx context.Context, description string, amount float64, txnType model.TransactionType) model.Categorization {
	if c.client == nil {
		c.logger.Debug("No LLM client configured, using fallback", "description", description)
		return model.FallbackCategorization()
	}

	text, err := c.client.GenerateJSON(ctx, Request{
		Prompt:      c.buildPrompt(description, amount, txnType),
		Schema:      categorizationSchema,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.logger.Warn("AI categorization failed, using fallback",
			"description", description,
			"error", err)
		return model.FallbackCategorization()
	}

	result, err := parseCategorization(text)
	if err != nil {
		c.logger.Warn("Unparseable AI categorization, using fallback",
			"description", description,
			"error", err)
		return model.FallbackCategorization()
	}

	return result
}

func (c *Categorizer) buildPrompt(description string, amount float64, txnType model.TransactionType) string {
	payload, _ := json.Marshal(map[string]any{
		"description": description,
		"amount":      amount,
		"type":        txnType,
	})

	var sb strings.Builder
	sb.WriteString("You are a financial assistant that categorizes bank transactions.\n")
	sb.WriteString("Pick exactly one category from this list:\n")
	for _, cat := range c.categories {
		fmt.Fprintf(&sb, "- %s\n", cat)
	}
	sb.WriteString("\nTransaction:\n")
	sb.Write(payload)
	sb.WriteString("\n\nExplain the choice in 12 words or fewer. ")
	sb.WriteString("Rate your confidence between 0 and 1.\n")
	sb.WriteString(`Return JSON only: {"category": "...", "reason": "...", "confidence": 0.0}`)
	return sb.String()
}

// parseCategorization validates the reply field by field. A missing or
// non-string field takes its default; only an unparseable reply is an error.
func parseCategorization(text string) (model.Categorization, error) {
	obj, err := DecodeObject(text)
	if err != nil {
		return model.Categorization{}, err
	}

	result := model.Categorization{
		Category: model.CategoryUncategorized,
		Reason:   model.ReasonAIDefault,
		Status:   model.StatusClassifiedByAI,
	}

	if category, ok := StringField(obj, "category"); ok {
		if canonical, known := model.CanonicalCategory(category); known {
			result.Category = canonical
		}
	}
	if reason, ok := StringField(obj, "reason"); ok {
		result.Reason = reason
	}
	if confidence, ok := NumberField(obj, "confidence"); ok {
		result.Confidence = min(max(confidence, 0), 1)
		result.HasConfidence = true
	}

	return result, nil
}
