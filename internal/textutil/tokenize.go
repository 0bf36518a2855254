// Package textutil holds tokenization shared by the clustering keyword
// extractor and the feeders' n-gram extraction, generalized from the
// teacher's single-purpose slugifier into a reusable word tokenizer.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// folder performs Unicode case folding rather than a byte-wise
// strings.ToLower, so accented and non-Latin video titles tokenize the
// same way regardless of the capitalization a channel happens to use.
var folder = cases.Fold()

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)

// MinTokenLength excludes tokens that are too short to be meaningful
// keywords (single letters and two-letter words such as "to", most of
// which are stopwords anyway).
const MinTokenLength = 3

// Stopwords is the shared stopword list applied to both cluster keyword
// extraction and feeder n-gram extraction. Keeping one list avoids the
// two callers drifting apart on what counts as noise.
var Stopwords = buildStopwordSet([]string{
	"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
	"of", "in", "on", "at", "by", "with", "from", "into", "about", "as",
	"is", "are", "was", "were", "be", "been", "being", "this", "that",
	"these", "those", "it", "its", "i", "you", "he", "she", "we", "they",
	"my", "your", "his", "her", "our", "their", "what", "which", "who",
	"how", "why", "when", "where", "not", "no", "do", "does", "did",
	"can", "could", "will", "would", "should", "shall", "may", "might",
	"up", "out", "off", "over", "under", "again", "all", "any", "some",
	"so", "than", "too", "very", "just", "now", "new", "one", "two",
	"video", "videos", "watch", "part",
})

func buildStopwordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize case-folds s, replaces every character other than ASCII letters,
// digits and whitespace with a space, and splits on whitespace, dropping
// stopwords and tokens shorter than MinTokenLength. Letters outside a-z that
// remain after folding (accented or non-Latin) are therefore dropped.
func Tokenize(s string) []string {
	s = folder.String(s)
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	fields := strings.Fields(s)

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < MinTokenLength {
			continue
		}
		if _, stop := Stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// NGrams builds n-grams of the given size from a token sequence, joining
// members with a single space.
func NGrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}
