package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// relevanceFeedback is the fixed hint handed to the next query-generation
// pass when the gate judges the evidence insufficient.
const relevanceFeedback = "Need more specific data or missing parts of the question."

// checkRelevance asks the model for a strict yes/no judgment on whether the
// accumulated evidence answers the question. Fail-open: a capability error
// counts as success so the loop cannot stall, and the iteration bound forces
// success once retries are exhausted.
func (e *Engine) checkRelevance(ctx context.Context, s *SessionState) Outcome {
	evidence := s.EvidenceView
	if evidence == "" {
		evidence = "No info found."
	}

	e.logger.Info("checking relevance of accumulated results")
	e.emitProgress(0.5, "Checking relevance of findings...")

	out, err := e.llm.Generate(ctx, fmt.Sprintf(e.prompts.Relevance, s.UserQuery, evidence))
	if err != nil {
		e.logger.Warn("relevance check failed, proceeding to answer", zap.Error(err))
		return OutcomeSuccess
	}

	verdict := strings.ToUpper(strings.TrimSpace(out))
	if strings.Contains(verdict, "YES") || s.Iteration >= maxIterations {
		return OutcomeSuccess
	}
	s.Feedback = relevanceFeedback
	return OutcomeRetry
}
