package agent

// AddIfNew appends each candidate to history in order, skipping candidates
// that are already present by exact string equality. Existing entries are
// never removed or reordered. Ranking is not this function's business; see
// Rank.
func AddIfNew(history []string, candidates []string) []string {
	seen := make(map[string]struct{}, len(history))
	for _, h := range history {
		seen[h] = struct{}{}
	}
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		history = append(history, c)
	}
	return history
}
