package analysis

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// promptBuilder renders the embedded prompt templates.
type promptBuilder struct {
	templates map[string]*template.Template
}

const (
	spendingPromptTemplate = "spending_prompt"
	chartPromptTemplate    = "chart_prompt"
	advicePromptTemplate   = "advice_prompt"
	goalPromptTemplate     = "goal_prompt"
)

func newPromptBuilder() (*promptBuilder, error) {
	pb := &promptBuilder{templates: make(map[string]*template.Template)}

	for _, name := range []string{spendingPromptTemplate, chartPromptTemplate, advicePromptTemplate, goalPromptTemplate} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(name+".tmpl").ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// mustPromptBuilder panics if the embedded templates are broken.
func mustPromptBuilder() *promptBuilder {
	pb, err := newPromptBuilder()
	if err != nil {
		panic(err)
	}
	return pb
}

func (pb *promptBuilder) render(name string, data any) (string, error) {
	tmpl, ok := pb.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// indentJSON pretty-prints v for embedding in a prompt.
func indentJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt data: %w", err)
	}
	return string(b), nil
}
