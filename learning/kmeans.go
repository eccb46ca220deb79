package learning

import (
	"gonum.org/v1/gonum/floats"
	"math"
	"math/rand"
)

// KMeans partitions rows into K clusters by Lloyd's algorithm from a k-means++ initialisation.
type KMeans struct {
	K         int
	MaxIter   int
	Centroids [][]float64
	// Inertia is the sum of squared distances of the training rows to their nearest centroid.
	Inertia float64
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		v := a[i] - b[i]
		d += v * v
	}
	return d
}

func (m *KMeans) nearest(x []float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for k, c := range m.Centroids {
		if d := sqDist(x, c); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, bestDist
}

// initCenters chooses centroids by k-means++ seeding.
func (m *KMeans) initCenters(rows [][]float64, rng *rand.Rand) {
	n := len(rows)
	m.Centroids = make([][]float64, 0, m.K)
	m.Centroids = append(m.Centroids, append([]float64{}, rows[rng.Intn(n)]...))

	dist := make([]float64, n)
	for len(m.Centroids) < m.K {
		for i, x := range rows {
			_, dist[i] = m.nearest(x)
		}
		total := floats.Sum(dist)
		if total == 0 {
			// Fewer distinct rows than clusters; duplicate centroids are harmless.
			m.Centroids = append(m.Centroids, append([]float64{}, rows[rng.Intn(n)]...))
			continue
		}
		r := rng.Float64() * total
		next := n - 1
		var cumulative float64
		for i, d := range dist {
			cumulative += d
			if cumulative >= r {
				next = i
				break
			}
		}
		m.Centroids = append(m.Centroids, append([]float64{}, rows[next]...))
	}
}

// Fit clusters the rows. K is clamped to the number of rows.
func (m *KMeans) Fit(rows [][]float64, rng *rand.Rand) {
	if m.K > len(rows) {
		m.K = len(rows)
	}
	if m.K < 1 {
		m.K = 1
	}
	m.initCenters(rows, rng)

	d := len(rows[0])
	assign := make([]int, len(rows))
	for i := range assign {
		assign[i] = -1
	}
	for it := 0; it < m.MaxIter; it++ {
		changed := false
		m.Inertia = 0
		for i, x := range rows {
			k, dist := m.nearest(x)
			if assign[i] != k {
				assign[i] = k
				changed = true
			}
			m.Inertia += dist
		}
		if !changed {
			break
		}

		sums := make([][]float64, m.K)
		count := make([]float64, m.K)
		for k := range sums {
			sums[k] = make([]float64, d)
		}
		for i, x := range rows {
			floats.Add(sums[assign[i]], x)
			count[assign[i]]++
		}
		for k := range sums {
			if count[k] == 0 {
				continue
			}
			floats.Scale(1/count[k], sums[k])
			m.Centroids[k] = sums[k]
		}
	}
}

// Transform returns the Euclidean distance of each row to every centroid.
func (m *KMeans) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, x := range rows {
		out[i] = make([]float64, len(m.Centroids))
		for k, c := range m.Centroids {
			out[i][k] = math.Sqrt(sqDist(x, c))
		}
	}
	return out
}
