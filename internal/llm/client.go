package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Client defines the interface for LLM providers. Implementations ask the
// model for a single JSON object and return its raw text.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
}

// Request is one prompt plus its generation parameters.
type Request struct {
	Schema      *Schema
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// SchemaType names a JSON value kind in a response schema.
type SchemaType string

// Schema types.
const (
	SchemaObject SchemaType = "object"
	SchemaString SchemaType = "string"
	SchemaNumber SchemaType = "number"
	SchemaArray  SchemaType = "array"
)

// Schema is a provider-neutral description of the expected reply.
type Schema struct {
	Properties map[string]*Schema
	Items      *Schema
	Type       SchemaType
	Required   []string
}
