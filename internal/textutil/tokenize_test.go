package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndStripsPunctuation(t *testing.T) {
	tokens := Tokenize("How to Build a PC! (2024 Guide)")
	assert.Equal(t, []string{"build", "2024", "guide"}, tokens)
}

func TestTokenize_DropsStopwordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("it is a to of in on at by")
	assert.Empty(t, tokens)
}

func TestTokenize_DropsDomainStopwords(t *testing.T) {
	tokens := Tokenize("watch this video part one")
	assert.NotContains(t, tokens, "video")
	assert.NotContains(t, tokens, "watch")
	assert.NotContains(t, tokens, "part")
}

func TestNGrams_Bigrams(t *testing.T) {
	grams := NGrams([]string{"day", "in", "the", "life"}, 2)
	assert.Equal(t, []string{"day in", "in the", "the life"}, grams)
}

func TestNGrams_ShorterThanN(t *testing.T) {
	grams := NGrams([]string{"solo"}, 2)
	assert.Nil(t, grams)
}

func TestTokenize_FoldsNonASCIICase(t *testing.T) {
	tokens := Tokenize("İstanbul TRAVEL Günlüğü")
	assert.Contains(t, tokens, "travel")
}

func TestNGrams_ExactLength(t *testing.T) {
	grams := NGrams([]string{"one", "two", "three"}, 3)
	assert.Equal(t, []string{"one two three"}, grams)
}
