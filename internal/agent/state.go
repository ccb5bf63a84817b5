package agent

// SessionState is the shared record mutated in place by the stages of a
// single run. One instance per question, owned exclusively by the Engine run
// that created it; it is discarded once the run reports a terminal outcome.
type SessionState struct {
	// UserQuery is the original question. Immutable once set.
	UserQuery string

	// SearchQuery is the current search text, overwritten on every
	// query-generation pass.
	SearchQuery string

	// Iteration counts completed query-generation passes. It only increases
	// and bounds all retry loops.
	Iteration int

	// History accumulates deduplicated snippets across iterations in
	// insertion order. It never shrinks.
	History []string

	// EvidenceView is History ranked against UserQuery and joined with
	// newlines, recomputed after every retrieval. Derived, never hand-edited.
	EvidenceView string

	// Feedback is a hint written by a failing gate for the next
	// query-generation pass. Cleared implicitly when overwritten.
	Feedback string

	// Answer is the synthesized answer, the only externally observable output
	// besides failure.
	Answer string
}

// NewSessionState creates the state record for a fresh run.
func NewSessionState(userQuery string) *SessionState {
	return &SessionState{UserQuery: userQuery}
}
