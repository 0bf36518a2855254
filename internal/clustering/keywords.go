package clustering

import (
	"math"
	"sort"
	"strings"

	"github.com/trendscout/worker/internal/textutil"
)

// maxTFIDFFeatures bounds the TF-IDF vocabulary to the most frequent
// uni- and bigrams across the cluster's titles.
const maxTFIDFFeatures = 50

// ExtractKeywords picks the top-5 TF-IDF-scoring uni/bigrams across a
// cluster's member titles, falling back to raw document frequency if
// TF-IDF degenerates to all-zero (e.g. every title is identical).
func ExtractKeywords(titles []string) []string {
	docs := make([][]string, len(titles))
	for i, t := range titles {
		tokens := textutil.Tokenize(t)
		grams := append(append([]string{}, tokens...), textutil.NGrams(tokens, 2)...)
		docs[i] = dedupe(grams)
	}

	vocab := topByDocFreq(docs, maxTFIDFFeatures)
	scores := tfidf(docs, vocab)
	if allZero(scores) {
		scores = docFreqScores(docs, vocab)
	}

	type kv struct {
		term  string
		score float64
	}
	ranked := make([]kv, 0, len(vocab))
	for term, score := range scores {
		ranked = append(ranked, kv{term, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})

	n := 5
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].term
	}
	return out
}

// Label renders a Title-cased label from the top 3 keywords, or "General"
// when a cluster's titles yielded no usable keyword.
func Label(keywords []string) string {
	n := 3
	if len(keywords) < n {
		n = len(keywords)
	}
	if n == 0 {
		return "General"
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = titleCase(keywords[i])
	}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) == 0 {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func topByDocFreq(docs [][]string, max int) []string {
	freq := make(map[string]int)
	for _, doc := range docs {
		for _, term := range doc {
			freq[term]++
		}
	}
	type kv struct {
		term string
		n    int
	}
	all := make([]kv, 0, len(freq))
	for term, n := range freq {
		all = append(all, kv{term, n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].n != all[j].n {
			return all[i].n > all[j].n
		}
		return all[i].term < all[j].term
	})
	if len(all) > max {
		all = all[:max]
	}
	out := make([]string, len(all))
	for i, e := range all {
		out[i] = e.term
	}
	return out
}

// tfidf computes mean TF-IDF score per vocabulary term across docs.
func tfidf(docs [][]string, vocab []string) map[string]float64 {
	n := float64(len(docs))
	df := make(map[string]int, len(vocab))
	inVocab := make(map[string]struct{}, len(vocab))
	for _, term := range vocab {
		inVocab[term] = struct{}{}
	}
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range doc {
			if _, ok := inVocab[term]; !ok {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	sums := make(map[string]float64, len(vocab))
	for _, doc := range docs {
		counts := make(map[string]int)
		for _, term := range doc {
			if _, ok := inVocab[term]; ok {
				counts[term]++
			}
		}
		total := float64(len(doc))
		if total == 0 {
			continue
		}
		for term, c := range counts {
			tf := float64(c) / total
			idf := math.Log(n / float64(df[term]))
			sums[term] += tf * idf
		}
	}

	scores := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		scores[term] = sums[term] / n
	}
	return scores
}

func docFreqScores(docs [][]string, vocab []string) map[string]float64 {
	freq := make(map[string]float64, len(vocab))
	for _, doc := range docs {
		for _, term := range doc {
			freq[term]++
		}
	}
	scores := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		scores[term] = freq[term]
	}
	return scores
}

func allZero(scores map[string]float64) bool {
	for _, v := range scores {
		if v != 0 {
			return false
		}
	}
	return true
}
