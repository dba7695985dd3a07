// Package model defines the core domain models used throughout the application.
package model

// ClassificationStatus indicates how a transaction was categorized.
type ClassificationStatus string

// Classification status constants.
const (
	StatusClassifiedByRule ClassificationStatus = "rule"
	StatusClassifiedByAI   ClassificationStatus = "ai"
	StatusFallback         ClassificationStatus = "fallback"
	StatusUserSpecified    ClassificationStatus = "user"
)

// Fixed reasons attached to non-AI categorizations.
const (
	ReasonRuleMatch     = "Rule-based match"
	ReasonUserSpecified = "User specified"
	ReasonFallback      = "Fallback classification"
	ReasonAIDefault     = "AI classification"
)

// Categorization is the outcome of categorizing one transaction.
// Confidence is only meaningful when HasConfidence is set.
type Categorization struct {
	Category      string
	Reason        string
	Status        ClassificationStatus
	Confidence    float64
	HasConfidence bool
}

// IsFallback reports whether the categorizer could not produce a real answer.
func (c Categorization) IsFallback() bool {
	return c.Status == StatusFallback
}

// RuleCategorization builds the result of a keyword rule match.
func RuleCategorization(category string) Categorization {
	return Categorization{
		Category: category,
		Reason:   ReasonRuleMatch,
		Status:   StatusClassifiedByRule,
	}
}

// UserCategorization builds the result for a category the user supplied.
func UserCategorization(category string) Categorization {
	return Categorization{
		Category: category,
		Reason:   ReasonUserSpecified,
		Status:   StatusUserSpecified,
	}
}

// FallbackCategorization is returned whenever the AI path fails.
func FallbackCategorization() Categorization {
	return Categorization{
		Category: CategoryUncategorized,
		Reason:   ReasonFallback,
		Status:   StatusFallback,
	}
}
