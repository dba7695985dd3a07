package analysis

import (
	"context"

	"github.com/Veraticus/spice-dashboard/internal/llm"
)

// DefaultInvestmentType labels advice requested without a preference.
const DefaultInvestmentType = "General investing"

const (
	adviceTemperature = 0.5
	adviceMaxTokens   = 1500
)

// ProsAndCons weighs an investment for one person.
type ProsAndCons struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// Advice is personalized guidance on one kind of investment. Every field
// is always populated.
type Advice struct {
	InvestmentType             string      `json:"investmentType"`
	PersonalizedAdvice         string      `json:"personalizedAdvice"`
	UnderstandingYourSituation []string    `json:"understandingYourSituation"`
	ProsAndCons                ProsAndCons `json:"prosAndCons"`
	IsItRightForYou            []string    `json:"isItRightForYou"`
	StepByStepStrategy         []string    `json:"stepByStepStrategy"`
	NextSteps                  []string    `json:"nextSteps"`
	ImportantConsiderations    []string    `json:"importantConsiderations"`
}

var stringList = &llm.Schema{Type: llm.SchemaArray, Items: &llm.Schema{Type: llm.SchemaString}}

var adviceGeneration = generation{
	schema: &llm.Schema{
		Type: llm.SchemaObject,
		Properties: map[string]*llm.Schema{
			"personalizedAdvice":         {Type: llm.SchemaString},
			"understandingYourSituation": stringList,
			"prosAndCons": {
				Type:       llm.SchemaObject,
				Properties: map[string]*llm.Schema{"pros": stringList, "cons": stringList},
			},
			"isItRightForYou":         stringList,
			"stepByStepStrategy":      stringList,
			"nextSteps":               stringList,
			"importantConsiderations": stringList,
		},
	},
	template:    advicePromptTemplate,
	temperature: adviceTemperature,
	maxTokens:   adviceMaxTokens,
}

// InvestmentAdvice advises on the investment named by the profile's
// "investmentPreference". The profile is passed to the model as given.
// Model failures never surface; missing or mistyped fields take their
// defaults.
func (a *Analyst) InvestmentAdvice(ctx context.Context, profile map[string]any) Advice {
	advice := defaultAdvice(profile)

	obj, err := a.generate(ctx, adviceGeneration, profile)
	if err != nil {
		a.logger.Warn("Investment advice failed, using defaults", "error", err)
		return advice
	}

	if s, ok := llm.StringField(obj, "personalizedAdvice"); ok {
		advice.PersonalizedAdvice = s
	}
	setList(obj, "understandingYourSituation", &advice.UnderstandingYourSituation)
	setList(obj, "isItRightForYou", &advice.IsItRightForYou)
	setList(obj, "stepByStepStrategy", &advice.StepByStepStrategy)
	setList(obj, "nextSteps", &advice.NextSteps)
	setList(obj, "importantConsiderations", &advice.ImportantConsiderations)
	if pc, ok := obj["prosAndCons"].(map[string]any); ok {
		setList(pc, "pros", &advice.ProsAndCons.Pros)
		setList(pc, "cons", &advice.ProsAndCons.Cons)
	}

	return advice
}

// setList replaces *dst when key holds a non-empty list of strings.
func setList(obj map[string]any, key string, dst *[]string) {
	if list, ok := llm.StringSliceField(obj, key); ok && len(list) > 0 {
		*dst = list
	}
}

func defaultAdvice(profile map[string]any) Advice {
	investment := DefaultInvestmentType
	if s, ok := llm.StringField(profile, "investmentPreference"); ok {
		investment = s
	}

	return Advice{
		InvestmentType: investment,
		PersonalizedAdvice: "Build an emergency fund first, then invest regularly in a diversified, " +
			"low-cost portfolio that matches your time horizon.",
		UnderstandingYourSituation: []string{
			"Your income, expenses and existing savings set how much you can invest",
			"Your time horizon determines how much volatility you can accept",
		},
		ProsAndCons: ProsAndCons{
			Pros: []string{"Potential long-term growth", "Compounding over time"},
			Cons: []string{"Value can fall in the short term", "Fees reduce returns"},
		},
		IsItRightForYou: []string{
			"Suitable if you have three to six months of expenses saved",
			"Suitable if you will not need the money for several years",
		},
		StepByStepStrategy: []string{
			"Pay off high-interest debt",
			"Save three to six months of expenses",
			"Choose a diversified low-cost fund",
			"Automate a fixed monthly contribution",
		},
		NextSteps: []string{
			"Review your monthly budget",
			"Open an investment account",
		},
		ImportantConsiderations: []string{
			"Past performance does not guarantee future returns",
			"Consider speaking with a licensed financial advisor",
		},
	}
}
