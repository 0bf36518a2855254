package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_DistinctTitles(t *testing.T) {
	titles := []string{
		"Insane pentakill clutch ranked game",
		"Pentakill highlight compilation ranked",
		"Funny moments stream highlight",
	}
	keywords := ExtractKeywords(titles)
	assert.NotEmpty(t, keywords)
	assert.LessOrEqual(t, len(keywords), 5)
}

func TestExtractKeywords_IdenticalTitlesFallsBackToDocFreq(t *testing.T) {
	titles := []string{"same title every time", "same title every time"}
	keywords := ExtractKeywords(titles)
	assert.NotEmpty(t, keywords, "identical titles degenerate TF-IDF to all-zero, so doc-freq fallback must still produce terms")
}

func TestLabel_TopThreeKeywords(t *testing.T) {
	label := Label([]string{"pentakill", "ranked game", "clutch"})
	assert.Equal(t, "Pentakill Ranked Game Clutch", label)
}

func TestLabel_NoKeywords(t *testing.T) {
	assert.Equal(t, "General", Label(nil))
}

func TestLabel_FewerThanThreeKeywords(t *testing.T) {
	label := Label([]string{"solo"})
	assert.Equal(t, "Solo", label)
}
