package clustering

import (
	"math"
	"sort"
)

// NoiseLabel marks a point that density clustering left unassigned.
const NoiseLabel = -1

// DensityCluster groups points by mutual-reachability single-linkage
// clustering, an HDBSCAN-style approach: core distance is the distance to
// each point's minSamples-th nearest neighbor, mutual reachability
// distance is the max of the two points' core distances and their
// Euclidean distance, and clusters are merges of the resulting minimum
// spanning tree that reach at least minClusterSize members. This
// approximates HDBSCAN's excess-of-mass stability selection with a
// simpler flat cut: walking the tree's edges from shortest to longest,
// two components that each already have minClusterSize members are kept
// apart as separate clusters, smaller components are merged into the
// component they touch, and anything never reaching minClusterSize is
// labeled noise.
func DensityCluster(points [][]float64, minClusterSize, minSamples int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = NoiseLabel
	}
	if n == 0 {
		return labels
	}
	if n < minClusterSize {
		return labels
	}

	core := coreDistances(points, minSamples)
	edges := mutualReachabilityMST(points, core)

	uf := newUnionFind(n)
	sort.Slice(edges, func(i, j int) bool { return edges[i].weight < edges[j].weight })

	size := make([]int, n)
	for i := range size {
		size[i] = 1
	}
	for _, e := range edges {
		ra, rb := uf.find(e.a), uf.find(e.b)
		if ra == rb {
			continue
		}
		if size[ra] >= minClusterSize && size[rb] >= minClusterSize {
			continue
		}
		merged := size[ra] + size[rb]
		uf.union(ra, rb)
		root := uf.find(ra)
		size[root] = merged
	}

	clusterOf := make(map[int]int)
	nextLabel := 0
	for i := 0; i < n; i++ {
		root := uf.find(i)
		if size[root] < minClusterSize {
			continue
		}
		if _, ok := clusterOf[root]; !ok {
			clusterOf[root] = nextLabel
			nextLabel++
		}
		labels[i] = clusterOf[root]
	}
	return labels
}

func coreDistances(points [][]float64, minSamples int) []float64 {
	n := len(points)
	core := make([]float64, n)
	for i := 0; i < n; i++ {
		dists := make([]float64, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dists = append(dists, euclidean(points[i], points[j]))
		}
		sort.Float64s(dists)
		k := minSamples - 1
		if k < 0 {
			k = 0
		}
		if k >= len(dists) {
			k = len(dists) - 1
		}
		if k >= 0 {
			core[i] = dists[k]
		}
	}
	return core
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

type edge struct {
	a, b   int
	weight float64
}

// mutualReachabilityMST builds the minimum spanning tree over the
// complete mutual-reachability graph using Prim's algorithm, avoiding the
// O(n^2) edge list a naive Kruskal pass would otherwise allocate.
func mutualReachabilityMST(points [][]float64, core []float64) []edge {
	n := len(points)
	if n < 2 {
		return nil
	}

	inTree := make([]bool, n)
	minEdge := make([]float64, n)
	minFrom := make([]int, n)
	for i := range minEdge {
		minEdge[i] = math.MaxFloat64
		minFrom[i] = -1
	}

	inTree[0] = true
	for j := 1; j < n; j++ {
		minEdge[j] = mutualReach(points, core, 0, j)
		minFrom[j] = 0
	}

	edges := make([]edge, 0, n-1)
	for k := 1; k < n; k++ {
		best, bestDist := -1, math.MaxFloat64
		for j := 0; j < n; j++ {
			if !inTree[j] && minEdge[j] < bestDist {
				best, bestDist = j, minEdge[j]
			}
		}
		if best == -1 {
			break
		}
		inTree[best] = true
		edges = append(edges, edge{a: minFrom[best], b: best, weight: bestDist})

		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			d := mutualReach(points, core, best, j)
			if d < minEdge[j] {
				minEdge[j] = d
				minFrom[j] = best
			}
		}
	}
	return edges
}

func mutualReach(points [][]float64, core []float64, i, j int) float64 {
	d := euclidean(points[i], points[j])
	return math.Max(d, math.Max(core[i], core[j]))
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]int, n)}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
