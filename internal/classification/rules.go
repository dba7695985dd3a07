// Package classification implements keyword rules that map a transaction
// description onto a category without any network call.
package classification

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule maps a description pattern onto a category.
type Rule struct {
	Name     string
	Category string
	Regex    string
}

type compiledRule struct {
	regex *regexp.Regexp
	Rule
}

// Match describes which rule classified a description.
type Match struct {
	RuleName string
	Category string
}

// Engine evaluates rules in the order they were given; the first hit wins.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles the rules. Patterns are matched case-insensitively.
func NewEngine(rules []Rule) (*Engine, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %s: category is required", r.Name)
		}

		regexStr := r.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", r.Name, err)
		}

		compiled = append(compiled, compiledRule{Rule: r, regex: regex})
	}

	return &Engine{rules: compiled}, nil
}

// NewDefaultEngine returns an engine loaded with DefaultRules.
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default rules do not compile: %v", err))
	}
	return e
}

// Classify returns the category of the first matching rule.
func (e *Engine) Classify(description string) (string, bool) {
	m, ok := e.Match(description)
	return m.Category, ok
}

// Match is Classify with the name of the rule that fired.
func (e *Engine) Match(description string) (Match, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(description))
	if normalized == "" {
		return Match{}, false
	}

	for _, r := range e.rules {
		if r.regex.MatchString(normalized) {
			return Match{RuleName: r.Name, Category: r.Category}, true
		}
	}
	return Match{}, false
}

// Rules returns a copy of the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, r := range e.rules {
		out[i] = r.Rule
	}
	return out
}
