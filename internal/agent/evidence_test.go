package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddIfNew(t *testing.T) {
	history := []string{"a", "b"}

	history = AddIfNew(history, []string{"b", "c", "a", "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, history)

	// Existing entries are never reordered or removed.
	history = AddIfNew(history, []string{"d", "c"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, history)
}

func TestAddIfNewDuplicateCandidates(t *testing.T) {
	history := AddIfNew(nil, []string{"x", "x", "y"})
	assert.Equal(t, []string{"x", "y"}, history)
}

func TestAddIfNewEmptyCandidates(t *testing.T) {
	history := []string{"a"}
	assert.Equal(t, []string{"a"}, AddIfNew(history, nil))
}
