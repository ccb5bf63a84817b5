package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/metrics"
)

// reviewFeedback is the fixed hint handed to the next query-generation pass
// when the answer scores below the acceptance threshold.
const reviewFeedback = "Answer was too vague, incomplete, or inaccurate. Try to find more details."

// acceptScore is the minimum review score for the answer to be accepted.
const acceptScore = 7

var firstIntRe = regexp.MustCompile(`\d+`)

// reviewAnswer has the model grade the answer 1-10 against a fixed rubric.
// A response with no parsable integer scores 0. Fail-open: a capability
// error counts as pass, and the iteration bound forces a pass once retries
// are exhausted.
func (e *Engine) reviewAnswer(ctx context.Context, s *SessionState) Outcome {
	e.logger.Info("reviewing generated answer")
	e.emitProgress(0.9, "Critiquing answer quality...")

	out, err := e.llm.Generate(ctx, fmt.Sprintf(e.prompts.Review, s.UserQuery, s.Answer))
	if err != nil {
		e.logger.Warn("answer review failed, accepting answer", zap.Error(err))
		return OutcomePass
	}

	score := 0
	if m := firstIntRe.FindString(out); m != "" {
		score, _ = strconv.Atoi(m)
	}
	e.logger.Info("answer scored", zap.Int("score", score))
	metrics.AnswerScores.Observe(float64(score))

	if score >= acceptScore || s.Iteration >= maxIterations {
		return OutcomePass
	}
	s.Feedback = reviewFeedback
	return OutcomeFail
}
