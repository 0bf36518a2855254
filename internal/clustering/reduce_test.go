package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineDistance_Identical(t *testing.T) {
	d := cosineDistance([]float64{1, 0, 0}, []float64{1, 0, 0})
	assert.InDelta(t, 0, d, 1e-9)
}

func TestCosineDistance_Orthogonal(t *testing.T) {
	d := cosineDistance([]float64{1, 0}, []float64{0, 1})
	assert.InDelta(t, 1, d, 1e-9)
}

func TestCosineDistance_ZeroVector(t *testing.T) {
	d := cosineDistance([]float64{0, 0}, []float64{1, 1})
	assert.Equal(t, 1.0, d, "a zero vector has no direction, so distance defaults to maximal")
}

func TestReduce_EmptyInput(t *testing.T) {
	assert.Nil(t, Reduce(nil, 2, 5))
}

func TestReduce_TooFewSamplesReturnsRaw(t *testing.T) {
	embeddings := [][]float32{{1, 0, 0}, {0, 1, 0}}
	out := Reduce(embeddings, 2, 5)
	assert.Len(t, out, 2)
	assert.Len(t, out[0], 3)
}

func TestReduce_NComponentsAtOrAboveDimReturnsRaw(t *testing.T) {
	embeddings := [][]float32{{1, 0}, {0, 1}, {1, 1}, {0.5, 0.5}}
	out := Reduce(embeddings, 2, 2)
	assert.Len(t, out, 4)
	assert.Len(t, out[0], 2)
}

func TestReduce_PreservesSampleCount(t *testing.T) {
	// When the neighbor graph happens to be disconnected, Reduce falls back
	// to the raw (already L2-normalized) rows rather than failing, so only
	// the sample count is guaranteed, not the exact output dimensionality.
	embeddings := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 1, 0, 0},
	}
	out := Reduce(embeddings, 2, 3)
	assert.Len(t, out, 5)
	for _, row := range out {
		assert.NotEmpty(t, row)
	}
}
