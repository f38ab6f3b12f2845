package colour

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/sync/errgroup"
)

// nearest returns the index of the centroid closest to v. Ties go to the lowest index.
func nearest(v Vector, centroids []Vector) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, c := range centroids {
		if d := v.sqDist(c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// assignBands labels every pixel with its nearest centroid, splitting the
// raster into row bands across workers. Returns how many labels changed.
func assignBands(r *Raster, centroids []Vector, labels []int, workers int) int {
	workers = max(1, min(workers, r.Height))
	rowsPer := (r.Height + workers - 1) / workers
	changed := make([]int, workers)

	var g errgroup.Group
	for w := range workers {
		start := w * rowsPer * r.Width
		end := min((w+1)*rowsPer, r.Height) * r.Width
		if start >= end {
			continue
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				n := nearest(r.Pix[i], centroids)
				if labels[i] != n {
					labels[i] = n
					changed[w]++
				}
			}
			return nil
		})
	}
	_ = g.Wait() // Workers never fail.

	total := 0
	for _, c := range changed {
		total += c
	}
	return total
}

// Assign maps every pixel of r to the id of its nearest centroid in c, using
// the same Euclidean metric as clustering. The result is parallel to r.Pix.
func Assign(r *Raster, c *Clustering, workers int) ([]int, error) {
	if r.Len() == 0 {
		return nil, ErrInvalidImage
	}
	if c == nil || len(c.Centroids) == 0 {
		return nil, fmt.Errorf("no centroids to assign against")
	}
	if r.Space != c.Space {
		return nil, fmt.Errorf("%w: raster is %s, centroids are %s", ErrSpaceMismatch, r.Space, c.Space)
	}

	vectors := make([]Vector, len(c.Centroids))
	for i, ct := range c.Centroids {
		vectors[i] = ct.Vector
	}

	labels := make([]int, r.Len())
	for i := range labels {
		labels[i] = -1
	}
	assignBands(r, vectors, labels, workers)
	return labels, nil
}

// Recolour builds the quantized image: every pixel takes the RGB value of its
// nearest centroid. The output uses at most len(c.Centroids) distinct colours.
func Recolour(r *Raster, c *Clustering, workers int) (*image.RGBA, error) {
	labels, err := Assign(r, c, workers)
	if err != nil {
		return nil, err
	}

	palette := make([]color.RGBA, len(c.Centroids))
	for i, ct := range c.Centroids {
		rgb := c.Space.ToRGB(ct.Vector)
		palette[i] = color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, l := range labels {
		out.SetRGBA(i%r.Width, i/r.Width, palette[l])
	}
	return out, nil
}
