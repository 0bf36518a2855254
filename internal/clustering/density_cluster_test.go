package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDensityCluster_EmptyInput(t *testing.T) {
	labels := DensityCluster(nil, 3, 2)
	assert.Empty(t, labels)
}

func TestDensityCluster_FewerThanMinClusterSizeIsAllNoise(t *testing.T) {
	points := [][]float64{{0, 0}, {0.1, 0.1}}
	labels := DensityCluster(points, 5, 2)
	for _, l := range labels {
		assert.Equal(t, NoiseLabel, l)
	}
}

func TestDensityCluster_TwoWellSeparatedGroups(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1},
		{100, 100}, {100.1, 100}, {100, 100.1}, {100.1, 100.1},
	}
	labels := DensityCluster(points, 3, 2)

	group1 := labels[0]
	group2 := labels[4]
	assert.NotEqual(t, NoiseLabel, group1, "a tight group of 4 should form a cluster")
	assert.NotEqual(t, NoiseLabel, group2, "the other tight group of 4 should form a cluster")
	assert.NotEqual(t, group1, group2, "two well-separated groups must not merge into one cluster")

	for _, i := range []int{0, 1, 2, 3} {
		assert.Equal(t, group1, labels[i])
	}
	for _, i := range []int{4, 5, 6, 7} {
		assert.Equal(t, group2, labels[i])
	}
}

func TestEuclidean(t *testing.T) {
	d := euclidean([]float64{0, 0}, []float64{3, 4})
	assert.Equal(t, 5.0, d)
}

func TestUnionFind_MergesGroups(t *testing.T) {
	uf := newUnionFind(4)
	uf.union(0, 1)
	uf.union(2, 3)
	assert.Equal(t, uf.find(0), uf.find(1))
	assert.NotEqual(t, uf.find(0), uf.find(2))
	uf.union(1, 2)
	assert.Equal(t, uf.find(0), uf.find(3))
}
