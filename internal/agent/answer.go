package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// evidenceWindow limits how much of the evidence view reaches the answer
// prompt.
const evidenceWindow = 5000

// synthesizeAnswer streams the final answer from the model, grounded only in
// the accumulated evidence. Fragments are forwarded to the answer sink as
// they arrive and concatenated into the session Answer. On failure the
// Answer carries a diagnostic string instead; the stage never fails outward.
// Single successor.
func (e *Engine) synthesizeAnswer(ctx context.Context, s *SessionState) Outcome {
	today := e.now().Format("Monday, 02 January 2006")
	evidence := truncateRunes(s.EvidenceView, evidenceWindow)
	prompt := fmt.Sprintf(e.prompts.Answer, today, evidence, s.UserQuery)

	e.logger.Info("generating answer")
	e.emitProgress(0.8, "Generating final answer...")

	var full strings.Builder
	err := e.llm.GenerateStream(ctx, prompt, func(fragment string) {
		full.WriteString(fragment)
		if e.answerSink != nil {
			_, _ = io.WriteString(e.answerSink, fragment)
		}
	})
	if err != nil {
		e.logger.Warn("answer generation failed", zap.Error(err))
		s.Answer = fmt.Sprintf("Could not generate an answer due to an error: %v", err)
		return OutcomeDefault
	}
	s.Answer = full.String()
	return OutcomeDefault
}
