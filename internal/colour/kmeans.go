package colour

import (
	"fmt"
	"math/rand"
	"runtime"
)

const (
	// DefaultK is the number of clusters used when none is configured.
	DefaultK = 16

	// MaxK is the largest supported cluster count.
	MaxK = 256

	// DefaultSeed seeds centroid initialisation so runs are reproducible.
	DefaultSeed int64 = 1

	// HardIterationCap bounds exact mode so pathological inputs still terminate.
	HardIterationCap = 1000
)

// Centroid is the representative vector of one cluster.
type Centroid struct {
	ID     int    `json:"id"`
	Vector Vector `json:"vector"`
	// Size is the number of pixels assigned to the cluster after the final pass.
	Size int `json:"size"`
}

// Clustering is the outcome of one k-means run over a raster.
type Clustering struct {
	Space     Space
	Centroids []Centroid
	// Labels holds the cluster id of every pixel, parallel to Raster.Pix.
	Labels []int
	// Iterations is the number of recompute-then-reassign passes performed.
	Iterations int
	// Converged is false when the iteration cap stopped refinement before
	// assignments settled. Centroids are still the last computed values.
	Converged bool
}

// Populated returns the number of clusters with at least one pixel.
func (c *Clustering) Populated() int {
	n := 0
	for _, ct := range c.Centroids {
		if ct.Size > 0 {
			n++
		}
	}
	return n
}

// KMeans partitions raster vectors into a fixed number of clusters with Lloyd iteration.
//
// Initialisation is k-means++ driven by a seeded math/rand source, so the same
// raster, K and seed always produce the same centroids. When the raster holds
// fewer distinct colours than K, the surplus centroids start as copies of the
// first one. A cluster that ends up empty keeps its previous centroid.
type KMeans struct {
	seed          int64
	maxIterations int
	workers       int
}

// KMeansOption configures a KMeans.
type KMeansOption func(*KMeans)

// WithSeed sets the initialisation seed.
func WithSeed(seed int64) KMeansOption {
	return func(km *KMeans) {
		km.seed = seed
	}
}

// WithMaxIterations caps refinement passes. Zero selects exact mode, which
// iterates until assignments stop changing (bounded by HardIterationCap).
func WithMaxIterations(n int) KMeansOption {
	return func(km *KMeans) {
		km.maxIterations = n
	}
}

// WithWorkers sets how many goroutines share the assignment step of each pass.
func WithWorkers(n int) KMeansOption {
	return func(km *KMeans) {
		km.workers = n
	}
}

// NewKMeans creates a KMeans in exact mode with the default seed.
func NewKMeans(opts ...KMeansOption) *KMeans {
	km := &KMeans{
		seed:    DefaultSeed,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(km)
	}
	if km.workers < 1 {
		km.workers = 1
	}
	return km
}

// iterationCap returns the effective pass limit.
func (km *KMeans) iterationCap() int {
	if km.maxIterations <= 0 || km.maxIterations > HardIterationCap {
		return HardIterationCap
	}
	return km.maxIterations
}

// Cluster computes k centroids that locally minimise the total squared distance
// from each pixel vector to its nearest centroid.
func (km *KMeans) Cluster(r *Raster, k int) (*Clustering, error) {
	if r.Len() == 0 || r.Len() != r.Width*r.Height {
		return nil, ErrInvalidImage
	}
	if k < 1 {
		return nil, fmt.Errorf("cluster count must be at least 1, got %d", k)
	}
	if k > MaxK {
		return nil, fmt.Errorf("cluster count too large: %d (maximum: %d)", k, MaxK)
	}

	rng := rand.New(rand.NewSource(km.seed)) // #nosec G404 - reproducible clustering, not security sensitive
	vectors := km.initialiseCentroids(r.Pix, k, rng)

	labels := make([]int, len(r.Pix))
	for i := range labels {
		labels[i] = -1
	}
	assignBands(r, vectors, labels, km.workers)

	iterations := 0
	converged := false
	for limit := km.iterationCap(); iterations < limit; {
		iterations++
		recomputeCentroids(r.Pix, labels, vectors)
		if assignBands(r, vectors, labels, km.workers) == 0 {
			converged = true
			break
		}
	}

	centroids := make([]Centroid, k)
	for i, v := range vectors {
		centroids[i] = Centroid{ID: i, Vector: v}
	}
	for _, l := range labels {
		centroids[l].Size++
	}

	return &Clustering{
		Space:      r.Space,
		Centroids:  centroids,
		Labels:     labels,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

// initialiseCentroids picks k starting vectors with k-means++ seeding.
// Each pick is drawn with probability proportional to the squared distance to
// the nearest centroid chosen so far, so repeated colours weigh more.
func (km *KMeans) initialiseCentroids(pix []Vector, k int, rng *rand.Rand) []Vector {
	centroids := make([]Vector, 0, k)
	centroids = append(centroids, pix[rng.Intn(len(pix))])

	minDist := make([]float64, len(pix))
	for i, p := range pix {
		minDist[i] = p.sqDist(centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range minDist {
			total += d
		}

		// Every vector already sits on a centroid: collapse the rest.
		if total == 0 {
			for len(centroids) < k {
				centroids = append(centroids, centroids[0])
			}
			break
		}

		target := rng.Float64() * total
		next := -1
		cumulative := 0.0
		for i, d := range minDist {
			if d == 0 {
				continue
			}
			next = i
			cumulative += d
			if cumulative >= target {
				break
			}
		}

		chosen := pix[next]
		centroids = append(centroids, chosen)
		for i, p := range pix {
			if d := p.sqDist(chosen); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	return centroids
}

// recomputeCentroids moves every populated centroid to the mean of its pixels.
// Empty clusters keep their previous vector.
//
// The mean is accumulated incrementally so a cluster of identical vectors
// lands exactly on that vector and collapsed duplicates never win a tie.
func recomputeCentroids(pix []Vector, labels []int, centroids []Vector) {
	means := make([]Vector, len(centroids))
	counts := make([]int, len(centroids))

	for i, p := range pix {
		c := labels[i]
		counts[c]++
		n := float64(counts[c])
		means[c][0] += (p[0] - means[c][0]) / n
		means[c][1] += (p[1] - means[c][1]) / n
		means[c][2] += (p[2] - means[c][2]) / n
	}

	for i := range centroids {
		if counts[i] > 0 {
			centroids[i] = means[i]
		}
	}
}
