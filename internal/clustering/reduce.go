package clustering

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Reduce projects a matrix of L2-normalized embeddings down to nComponents
// dimensions using a neighbor-graph nonlinear reduction (Isomap: build a
// cosine k-NN graph, compute geodesic distances over it, then classical
// MDS on the geodesic distance matrix). nNeighbors is clamped to at most
// n-1 when there are fewer samples than neighbors. On any numerical
// failure the raw embeddings are returned unchanged, already L2-normalized
// so downstream Euclidean clustering still behaves sensibly on cosine
// geometry.
func Reduce(embeddings [][]float32, nComponents, nNeighbors int) [][]float64 {
	n := len(embeddings)
	if n == 0 {
		return nil
	}
	rows := toFloat64Rows(embeddings)

	if nComponents >= len(rows[0]) || n <= 2 {
		return rows
	}
	k := nNeighbors
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		return rows
	}

	geodesic, ok := geodesicDistances(rows, k)
	if !ok {
		return rows
	}

	reduced, ok := classicalMDS(geodesic, nComponents)
	if !ok {
		return rows
	}
	return reduced
}

func toFloat64Rows(embeddings [][]float32) [][]float64 {
	rows := make([][]float64, len(embeddings))
	for i, e := range embeddings {
		row := make([]float64, len(e))
		for j, v := range e {
			row[j] = float64(v)
		}
		rows[i] = row
	}
	return rows
}

func cosineDistance(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - cos
}

// geodesicDistances builds a symmetric k-NN graph under cosine distance (an
// edge wherever either point is among the other's k nearest), then
// computes all-pairs shortest paths (Floyd-Warshall) over it. Returns
// false if the graph is disconnected, since classical MDS needs finite
// distances everywhere.
func geodesicDistances(rows [][]float64, k int) ([][]float64, bool) {
	n := len(rows)
	const inf = math.MaxFloat64 / 4

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i == j {
				dist[i][j] = 0
			} else {
				dist[i][j] = inf
			}
		}
	}

	for i := 0; i < n; i++ {
		type nb = struct {
			idx int
			d   float64
		}
		neighbors := make([]nb, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			neighbors = append(neighbors, nb{j, cosineDistance(rows[i], rows[j])})
		}
		sortByDistance(neighbors)
		for _, nn := range neighbors[:min(k, len(neighbors))] {
			if nn.d < dist[i][nn.idx] {
				dist[i][nn.idx] = nn.d
				dist[nn.idx][i] = nn.d
			}
		}
	}

	for kk := 0; kk < n; kk++ {
		for i := 0; i < n; i++ {
			if dist[i][kk] >= inf {
				continue
			}
			for j := 0; j < n; j++ {
				if alt := dist[i][kk] + dist[kk][j]; alt < dist[i][j] {
					dist[i][j] = alt
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dist[i][j] >= inf {
				return nil, false
			}
		}
	}
	return dist, true
}

func sortByDistance(neighbors []struct {
	idx int
	d   float64
}) {
	for i := 1; i < len(neighbors); i++ {
		for j := i; j > 0 && neighbors[j].d < neighbors[j-1].d; j-- {
			neighbors[j], neighbors[j-1] = neighbors[j-1], neighbors[j]
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// classicalMDS embeds a geodesic distance matrix into nComponents
// dimensions by double-centering its squared distances and taking the
// leading eigenvectors, scaled by the square root of their eigenvalues.
func classicalMDS(geodesic [][]float64, nComponents int) ([][]float64, bool) {
	n := len(geodesic)
	b := mat.NewSymDense(n, nil)

	sq := make([][]float64, n)
	for i := range sq {
		sq[i] = make([]float64, n)
		for j := range sq[i] {
			sq[i][j] = geodesic[i][j] * geodesic[i][j]
		}
	}

	rowMeans := make([]float64, n)
	var grandMean float64
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += sq[i][j]
		}
		rowMeans[i] = sum / float64(n)
		grandMean += sum
	}
	grandMean /= float64(n * n)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := -0.5 * (sq[i][j] - rowMeans[i] - rowMeans[j] + grandMean)
			b.SetSym(i, j, v)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(b, true); !ok {
		return nil, false
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	type ev struct {
		val int
		v   float64
	}
	order := make([]ev, n)
	for i, v := range values {
		order[i] = ev{i, v}
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].v > order[j-1].v; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, nComponents)
	}
	for c := 0; c < nComponents && c < n; c++ {
		idx := order[c].val
		lambda := order[c].v
		if lambda <= 0 {
			continue
		}
		scale := math.Sqrt(lambda)
		for i := 0; i < n; i++ {
			out[i][c] = vectors.At(i, idx) * scale
		}
	}
	return out, true
}
