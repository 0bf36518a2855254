package feeders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPhrases_BuildsBigramsAndTrigrams(t *testing.T) {
	freq := extractPhrases([]string{"Day In The Life Of A Developer", "Day In The Life Vlog"})
	assert.Greater(t, freq["life developer"]+freq["developer life"], 0, "sanity: some phrase around the shared words exists")
	assert.Contains(t, freq, "day life")
}

func TestExtractPhrases_EmptyInput(t *testing.T) {
	freq := extractPhrases(nil)
	assert.Empty(t, freq)
}

func TestTopPhrases_RanksByFrequencyThenTruncates(t *testing.T) {
	freq := map[string]int{
		"tutorial guide": 5,
		"review video":   1,
		"unboxing haul":  3,
	}
	top := topPhrases(freq, 2)
	assert.Len(t, top, 2)
	// The top two by frequency are "tutorial guide" (5) and "unboxing haul" (3);
	// the shuffle reorders within the selected set but never admits the loser.
	assert.NotContains(t, top, "review video")
}

func TestTopPhrases_DeterministicForFixedInput(t *testing.T) {
	freq := map[string]int{"a b": 1, "c d": 1, "e f": 1}
	first := topPhrases(freq, 3)
	second := topPhrases(freq, 3)
	assert.ElementsMatch(t, first, second)
	assert.Equal(t, first, second, "the shuffle uses a seed derived from input size, not wall-clock randomness")
}
