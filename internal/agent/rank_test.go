package agent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankTemperatureScenario(t *testing.T) {
	snippets := []string{
		"Notícias do dia: eleições municipais",
		"Previsão para São Paulo: temperatura atual 21.9º",
		"Receita de bolo de cenoura",
	}
	ranked := Rank("temperatura São Paulo", snippets)

	require.NotEmpty(t, ranked)
	assert.Contains(t, ranked[0], "21.9 graus")
}

func TestRankReturnsAtMostFive(t *testing.T) {
	var snippets []string
	for i := 0; i < 8; i++ {
		snippets = append(snippets, fmt.Sprintf("clima snippet %d", i))
	}
	ranked := Rank("clima", snippets)
	assert.Len(t, ranked, 5)
}

func TestRankStableOnEqualScores(t *testing.T) {
	snippets := []string{"primeiro", "segundo", "terceiro"}
	// No query token matches anything, so all scores are equal.
	ranked := Rank("zzzzz", snippets)
	assert.Equal(t, snippets, ranked)
}

func TestRankNormalizesSnippets(t *testing.T) {
	ranked := Rank("clima", []string{"clima: Min: 18 e 25°"})
	require.Len(t, ranked, 1)
	assert.Equal(t, "clima: Mínima: 18 e 25 graus", ranked[0])
}

func TestRankRepeatedQueryTokensScoreAgain(t *testing.T) {
	// "gato gato" scores the first snippet twice; the second snippet's single
	// distinct token cannot outrank it despite coming first.
	ranked := Rank("gato gato cão", []string{"um cão dormindo", "um gato dormindo"})
	require.Len(t, ranked, 2)
	assert.Equal(t, "um gato dormindo", ranked[0])
}

func TestRankShortTokensIgnored(t *testing.T) {
	// "de" and "em" are too short to count as keywords.
	ranked := Rank("de em", []string{"texto de exemplo", "outro"})
	assert.Equal(t, []string{"texto de exemplo", "outro"}, ranked)
}

func TestRankEmptySnippets(t *testing.T) {
	assert.Empty(t, Rank("qualquer", nil))
}
