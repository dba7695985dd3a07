package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(ctx, Config{Provider: ProviderGemini})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient(ctx, Config{Provider: "anthropic", APIKey: "k"})
	assert.Error(t, err)

	client, err := NewClient(ctx, Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, client)

	client, err = NewClient(ctx, Config{Provider: ProviderGemini, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", DefaultModel("OpenAI"))
	assert.Equal(t, "gemini-2.0-flash", DefaultModel("gemini"))
	assert.Equal(t, "gemini-2.0-flash", DefaultModel(""))
}

func TestOpenAIClientGenerateJSON(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"category\":\"Travel\",\"reason\":\"Flight\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  server.URL + "/v1",
	})
	require.NoError(t, err)

	text, err := client.GenerateJSON(context.Background(), Request{
		Prompt:      "categorize",
		Schema:      categorizationSchema,
		Temperature: 0.2,
		MaxTokens:   200,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Travel","reason":"Flight"}`, text)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.InDelta(t, 0.2, captured["temperature"], 0.0001)
	assert.EqualValues(t, 200, captured["max_tokens"])
	format, ok := captured["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system, ok := messages[0].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, system["content"], "category, confidence, reason")
}

func TestOpenAIClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiClientGenerateJSON(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"category\":\"Groceries\",\"reason\":\"Supermarket\"}"}]}}]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), Config{
		Provider: ProviderGemini,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	})
	require.NoError(t, err)

	text, err := client.GenerateJSON(context.Background(), Request{
		Prompt:      "categorize",
		Schema:      categorizationSchema,
		Temperature: 0.2,
		MaxTokens:   200,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Groceries","reason":"Supermarket"}`, text)

	generation, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", generation["responseMimeType"])
	assert.EqualValues(t, 200, generation["maxOutputTokens"])
}

func TestToGenaiSchema(t *testing.T) {
	got := toGenaiSchema(&Schema{
		Type: SchemaObject,
		Properties: map[string]*Schema{
			"tags":  {Type: SchemaArray, Items: &Schema{Type: SchemaString}},
			"score": {Type: SchemaNumber},
		},
		Required: []string{"tags"},
	})

	assert.Equal(t, genai.TypeObject, got.Type)
	assert.Equal(t, []string{"tags"}, got.Required)
	require.Contains(t, got.Properties, "tags")
	assert.Equal(t, genai.TypeArray, got.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, got.Properties["tags"].Items.Type)
	assert.Equal(t, genai.TypeNumber, got.Properties["score"].Type)
	assert.Nil(t, toGenaiSchema(nil))
}
