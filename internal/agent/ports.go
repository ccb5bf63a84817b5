package agent

import "context"

// SearchResult is a single hit returned by a Searcher.
type SearchResult struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// LanguageModel is the capability interface for text generation.
// The model identifier and service endpoint are fixed at construction time,
// not passed per call.
type LanguageModel interface {
	// Generate returns the full completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream produces the completion incrementally, invoking emit for
	// each fragment in order. The fragment sequence is finite and not
	// restartable. A caller may stop early by cancelling ctx.
	GenerateStream(ctx context.Context, prompt string, emit func(fragment string)) error
}

// Searcher is the capability interface for web search. An empty result slice
// is a legitimate answer; transport problems must surface as a single error,
// never as partial results.
type Searcher interface {
	Search(ctx context.Context, query, market string, maxResults int) ([]SearchResult, error)
}

// Progress receives coarse run-progress checkpoints for UI reporting.
// Fraction is in [0,1]. A nil Progress is a no-op.
type Progress func(fraction float64, desc string)
