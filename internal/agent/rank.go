package agent

import (
	"regexp"
	"sort"
	"strings"
)

// maxRankedSnippets caps how many snippets a ranking pass returns.
const maxRankedSnippets = 5

var tempPatternRe = regexp.MustCompile(`\d+\s*graus`)

// Rank normalizes snippets and orders them by relevance to query, returning
// at most five entries. Scoring: 10 points per query token (longer than two
// runes, lower-cased, repeated tokens count again) found as a case-insensitive
// substring, plus a 1-point tie-break for snippets carrying a numeric
// temperature. The sort is stable so equal scores keep their original
// relative order. Pure function of its inputs.
func Rank(query string, snippets []string) []string {
	cleaned := make([]string, len(snippets))
	for i, s := range snippets {
		cleaned[i] = Normalize(s)
	}

	var keywords []string
	for _, word := range strings.Fields(query) {
		if len([]rune(word)) > 2 {
			keywords = append(keywords, strings.ToLower(word))
		}
	}

	scores := make([]int, len(cleaned))
	for i, text := range cleaned {
		lower := strings.ToLower(text)
		score := 0
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				score += 10
			}
		}
		if tempPatternRe.MatchString(lower) {
			score++
		}
		scores[i] = score
	}

	order := make([]int, len(cleaned))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	n := len(order)
	if n > maxRankedSnippets {
		n = maxRankedSnippets
	}
	ranked := make([]string, 0, n)
	for _, idx := range order[:n] {
		ranked = append(ranked, cleaned[idx])
	}
	return ranked
}
