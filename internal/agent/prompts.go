package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Templates holds the prompt texts used by the stages. Each template is a
// fmt format string; the stage code supplies the arguments in a fixed order.
type Templates struct {
	// QueryGeneration receives (user question, findings so far).
	QueryGeneration string `yaml:"query_generation"`
	// QueryFeedback is appended on retries and receives (gate feedback).
	QueryFeedback string `yaml:"query_feedback"`
	// Relevance receives (user question, accumulated evidence).
	Relevance string `yaml:"relevance"`
	// Answer receives (today's date, evidence, user question).
	Answer string `yaml:"answer"`
	// Review receives (user question, generated answer).
	Review string `yaml:"review"`
}

// DefaultTemplates returns the built-in prompt set.
func DefaultTemplates() Templates {
	return Templates{
		QueryGeneration: `SYSTEM: You are a search assistant. Convert the user's question into a concise,
effective search query for DuckDuckGo.

USER QUESTION: %s
FOUND SO FAR:
%s

Output ONLY the search query.
SEARCH QUERY:`,
		QueryFeedback: "\nPrevious attempt failed. Try different keywords focusing on: %s",
		Relevance: `SYSTEM: You are a relevance checker. Determine if the provided SEARCH RESULTS adequately answer the USER QUESTION.
Reply exactly 'YES' if the context is sufficient, or 'NO' if it is not.

USER QUESTION: %s
ACCUMULATED SEARCH RESULTS:
%s

ANSWER (YES/NO):`,
		Answer: `SYSTEM: Today is %s. Using the SEARCH RESULTS provided, answer the user's question accurately.
If you don't know the answer, say so based on the results.

SEARCH RESULTS:
%s

USER QUESTION: %s
ANSWER (in the same language):`,
		Review: `SYSTEM: You are an AI quality assurance bot. Your task is to review the answer provided by another AI.
Assess if the answer is accurate, direct, and fully addresses the user question based ONLY on the provided context.

SCORING CRITERIA:
- 10: Perfect. Accurate, concise, and directly answers the question.
- 7-9: Good. Correct answer but might have minor fluff or formatting issues.
- 4-6: Mediocre. Partially correct or contains irrelevant info.
- 1-3: Poor. Factually wrong, missing the point, or failing to answer the question.

USER QUESTION: %s
GENERATED ANSWER: %s

Output ONLY the integer score (1-10).
SCORE:`,
	}
}

// LoadTemplates overlays the defaults with any templates defined in the YAML
// file at path. Missing keys keep their defaults.
func LoadTemplates(path string) (Templates, error) {
	t := DefaultTemplates()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read templates: %w", err)
	}
	var override Templates
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("unmarshal templates: %w", err)
	}
	if override.QueryGeneration != "" {
		t.QueryGeneration = override.QueryGeneration
	}
	if override.QueryFeedback != "" {
		t.QueryFeedback = override.QueryFeedback
	}
	if override.Relevance != "" {
		t.Relevance = override.Relevance
	}
	if override.Answer != "" {
		t.Answer = override.Answer
	}
	if override.Review != "" {
		t.Review = override.Review
	}
	return t, nil
}
