// Package cluster provides the k-means partitioning used by the customer
// segmentation engine. The algorithm is seeded from configuration so that
// a report rerun over identical input reproduces identical segments.
package cluster

import (
	"errors"
	"math"
	"math/rand"
)

var (
	ErrNoPoints        = errors.New("cluster: no points to cluster")
	ErrInvalidClusters = errors.New("cluster: cluster count must be positive")
)

// KMeans partitions points into a fixed number of clusters using Lloyd
// iterations with k-means++ seeding.
type KMeans struct {
	k       int
	maxIter int
	tol     float64
	seed    int64
}

// NewKMeans creates a clusterer. maxIter and tol bound the iteration; seed
// fixes the k-means++ initialization.
func NewKMeans(k, maxIter int, tol float64, seed int64) *KMeans {
	if maxIter <= 0 {
		maxIter = 1000
	}
	if tol <= 0 {
		tol = 1e-6
	}
	return &KMeans{k: k, maxIter: maxIter, tol: tol, seed: seed}
}

// Fit assigns each point a cluster label in [0, k). With fewer distinct
// points than clusters some clusters end up empty; their labels simply do
// not occur in the output.
func (km *KMeans) Fit(points [][]float64) ([]int, error) {
	if km.k <= 0 {
		return nil, ErrInvalidClusters
	}
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	rng := rand.New(rand.NewSource(km.seed))
	centers := km.seedCenters(points, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < km.maxIter; iter++ {
		for i, p := range points {
			labels[i] = nearest(p, centers)
		}

		shift := km.recenter(points, labels, centers)
		if shift < km.tol {
			break
		}
	}

	for i, p := range points {
		labels[i] = nearest(p, centers)
	}
	return labels, nil
}

// seedCenters picks initial centers with the k-means++ scheme: the first
// uniformly, each next weighted by squared distance to the closest chosen
// center.
func (km *KMeans) seedCenters(points [][]float64, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, km.k)
	centers = append(centers, clonePoint(points[rng.Intn(len(points))]))

	distances := make([]float64, len(points))
	for len(centers) < km.k {
		var total float64
		for i, p := range points {
			d := squaredDistance(p, centers[nearest(p, centers)])
			distances[i] = d
			total += d
		}

		if total == 0 {
			// All points coincide with a chosen center; fall back to uniform.
			centers = append(centers, clonePoint(points[rng.Intn(len(points))]))
			continue
		}

		target := rng.Float64() * total
		var cumulative float64
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centers = append(centers, clonePoint(points[chosen]))
	}
	return centers
}

// recenter moves every center to the mean of its members and returns the
// largest squared shift. Empty clusters keep their previous center.
func (km *KMeans) recenter(points [][]float64, labels []int, centers [][]float64) float64 {
	dim := len(points[0])
	sums := make([][]float64, len(centers))
	counts := make([]int, len(centers))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, p := range points {
		counts[labels[i]]++
		for j, v := range p {
			sums[labels[i]][j] += v
		}
	}

	var maxShift float64
	for c := range centers {
		if counts[c] == 0 {
			continue
		}
		updated := make([]float64, dim)
		for j := range updated {
			updated[j] = sums[c][j] / float64(counts[c])
		}
		if shift := squaredDistance(centers[c], updated); shift > maxShift {
			maxShift = shift
		}
		centers[c] = updated
	}
	return maxShift
}

func nearest(p []float64, centers [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centers {
		if d := squaredDistance(p, c); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func clonePoint(p []float64) []float64 {
	c := make([]float64, len(p))
	copy(c, p)
	return c
}

// Standardize returns the column-wise z-scores of the points: zero mean,
// unit variance per feature. A zero-variance column standardizes to zeros.
func Standardize(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	dim := len(points[0])
	n := float64(len(points))

	means := make([]float64, dim)
	for _, p := range points {
		for j, v := range p {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}

	stds := make([]float64, dim)
	for _, p := range points {
		for j, v := range p {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		if n > 1 {
			stds[j] = math.Sqrt(stds[j] / (n - 1))
		}
	}

	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dim)
		for j, v := range p {
			if stds[j] > 0 {
				row[j] = (v - means[j]) / stds[j]
			}
		}
		out[i] = row
	}
	return out
}
