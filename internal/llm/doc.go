// Package llm wraps generative-model providers behind a small JSON-in,
// JSON-out Client and builds the transaction categorizer on top of it.
// Gemini and OpenAI are supported.
package llm
