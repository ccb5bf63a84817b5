package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rogerioferraz/aiquery/internal/metrics"
)

// retrieve runs the current search query against the Searcher and merges the
// ranked snippets into the session history. Empty results and transport
// errors both leave the state as of the last successful retrieval; the stage
// never fails outward. Single successor.
func (e *Engine) retrieve(ctx context.Context, s *SessionState) Outcome {
	q := s.SearchQuery
	e.logger.Info("searching", zap.String("query", q))
	e.emitProgress(0.3+float64(s.Iteration)*0.1, "Searching for: "+q)

	results, err := e.search.Search(ctx, q, e.market, e.maxResults)
	if err != nil {
		e.logger.Warn("search failed, keeping existing evidence", zap.Error(err))
		return OutcomeDefault
	}
	if len(results) == 0 {
		return OutcomeDefault
	}

	raw := make([]string, 0, len(results))
	for _, r := range results {
		raw = append(raw, fmt.Sprintf("Result: %s - %s", r.Title, r.Body))
	}

	before := len(s.History)
	s.History = AddIfNew(s.History, Rank(q, raw))
	metrics.SnippetsAccumulated.Add(float64(len(s.History) - before))

	// The evidence view is always the full history ranked against the
	// original question, not the derived search query.
	s.EvidenceView = strings.Join(Rank(s.UserQuery, s.History), "\n")
	return OutcomeDefault
}
