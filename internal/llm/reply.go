package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotAnObject is returned when a reply parses as JSON but is not an object.
var ErrNotAnObject = errors.New("model reply is not a JSON object")

// DecodeObject parses a model reply into an untyped JSON object. Markdown
// fences and chatter around the object are tolerated.
func DecodeObject(text string) (map[string]any, error) {
	clean := cleanMarkdownWrapper(text)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var parsed any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, ErrNotAnObject
	}
	return obj, nil
}

// StringField returns a non-blank string value for key.
func StringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// NumberField returns a numeric value for key. Numeric strings are not accepted.
func NumberField(obj map[string]any, key string) (float64, bool) {
	f, ok := obj[key].(float64)
	return f, ok
}

// StringSliceField returns key as a list of strings. The whole field is
// rejected if it is not an array or contains anything other than strings.
func StringSliceField(obj map[string]any, key string) ([]string, bool) {
	items, ok := obj[key].([]any)
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// cleanMarkdownWrapper strips ```json fences and anything outside the
// outermost braces.
func cleanMarkdownWrapper(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	return s
}
