package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// historyWindow limits how much accumulated evidence is shown to the model
// when asking for the next search query.
const historyWindow = 1000

// generateQuery asks the model for a concise search query, feeding it the
// findings so far and, on retries, the last gate's feedback. The stage never
// fails outward: a capability error falls back to searching the raw user
// question. Single successor.
func (e *Engine) generateQuery(ctx context.Context, s *SessionState) Outcome {
	attempt := s.Iteration
	s.Iteration++

	findings := truncateRunes(strings.Join(s.History, "\n"), historyWindow)
	if findings == "" {
		findings = "Nothing yet."
	}

	prompt := fmt.Sprintf(e.prompts.QueryGeneration, s.UserQuery, findings)
	if attempt > 0 {
		prompt += fmt.Sprintf(e.prompts.QueryFeedback, s.Feedback)
	}

	e.logger.Info("formulating query", zap.Int("attempt", attempt+1))
	e.emitProgress(0.1+float64(attempt)*0.1, fmt.Sprintf("Formulating query (Attempt %d)...", attempt+1))

	out, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("query generation failed, falling back to user question", zap.Error(err))
		s.SearchQuery = s.UserQuery
		return OutcomeDefault
	}
	s.SearchQuery = strings.Trim(strings.TrimSpace(out), `"`)
	return OutcomeDefault
}
