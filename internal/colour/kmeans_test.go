package colour

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// imageOf returns a w x h image whose pixels are taken row-major from pix.
func imageOf(w, h int, pix ...RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range pix {
		img.SetRGBA(i%w, i/w, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}

// gradientImage returns an image with many distinct colours.
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) * 127 / max(w+h-2, 1)),
				A: 255,
			})
		}
	}
	return img
}

func mustRaster(t *testing.T, img image.Image, space Space) *Raster {
	t.Helper()
	r, err := ToRaster(img, space)
	if err != nil {
		t.Fatalf("ToRaster() error: %v", err)
	}
	return r
}

func vectorsClose(a, b Vector, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol && math.Abs(a[2]-b[2]) <= tol
}

func TestKMeansConstantColour(t *testing.T) {
	for _, space := range ValidSpaces() {
		t.Run(string(space), func(t *testing.T) {
			colour := RGB{R: 10, G: 120, B: 200}
			r := mustRaster(t, solidImage(4, 4, colour), space)

			result, err := NewKMeans().Cluster(r, 16)
			if err != nil {
				t.Fatalf("Cluster() error: %v", err)
			}

			if !result.Converged {
				t.Error("expected convergence")
			}
			if result.Iterations != 1 {
				t.Errorf("Iterations = %d, want 1", result.Iterations)
			}
			if len(result.Centroids) != 16 {
				t.Fatalf("got %d centroids, want 16", len(result.Centroids))
			}

			want := space.FromRGB(colour)
			for _, c := range result.Centroids {
				if !vectorsClose(c.Vector, want, 1e-9) {
					t.Errorf("centroid %d = %v, want %v", c.ID, c.Vector, want)
				}
			}

			if got := result.Populated(); got != 1 {
				t.Errorf("Populated() = %d, want 1", got)
			}
			for i, l := range result.Labels {
				if l != result.Labels[0] {
					t.Fatalf("pixel %d labelled %d, want %d", i, l, result.Labels[0])
				}
			}
		})
	}
}

func TestKMeansFewerColoursThanK(t *testing.T) {
	red := RGB{R: 255}
	blue := RGB{B: 255}
	r := mustRaster(t, imageOf(2, 2, red, red, blue, blue), SpaceLab)

	result, err := NewKMeans().Cluster(r, 16)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if got := result.Populated(); got != 2 {
		t.Errorf("Populated() = %d, want 2", got)
	}
	if result.Labels[0] != result.Labels[1] || result.Labels[2] != result.Labels[3] {
		t.Errorf("identical pixels split across clusters: %v", result.Labels)
	}
	if result.Labels[0] == result.Labels[2] {
		t.Errorf("red and blue share a cluster: %v", result.Labels)
	}
}

func TestKMeansSeparatesClusters(t *testing.T) {
	pix := make([]RGB, 0, 16)
	for i := 0; i < 8; i++ {
		pix = append(pix, RGB{R: uint8(240 + i), G: 10, B: 10})
	}
	for i := 0; i < 8; i++ {
		pix = append(pix, RGB{R: 10, G: 10, B: uint8(240 + i)})
	}
	r := mustRaster(t, imageOf(4, 4, pix...), SpaceRGB)

	result, err := NewKMeans().Cluster(r, 2)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	for _, c := range result.Centroids {
		if c.Size != 8 {
			t.Errorf("centroid %d size = %d, want 8", c.ID, c.Size)
		}
		redish := vectorsClose(c.Vector, Vector{243.5, 10, 10}, 1e-9)
		blueish := vectorsClose(c.Vector, Vector{10, 10, 243.5}, 1e-9)
		if !redish && !blueish {
			t.Errorf("centroid %d = %v is not a cluster mean", c.ID, c.Vector)
		}
	}
}

func TestKMeansDeterministic(t *testing.T) {
	r := mustRaster(t, gradientImage(24, 18), SpaceLab)

	a, err := NewKMeans(WithSeed(42)).Cluster(r, 6)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	b, err := NewKMeans(WithSeed(42), WithWorkers(1)).Cluster(r, 6)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}

	for i := range a.Centroids {
		if a.Centroids[i] != b.Centroids[i] {
			t.Errorf("centroid %d differs: %+v vs %+v", i, a.Centroids[i], b.Centroids[i])
		}
	}
	if a.Iterations != b.Iterations {
		t.Errorf("iterations differ: %d vs %d", a.Iterations, b.Iterations)
	}
}

func TestKMeansIterationCap(t *testing.T) {
	r := mustRaster(t, gradientImage(32, 32), SpaceRGB)

	result, err := NewKMeans(WithMaxIterations(1)).Cluster(r, 8)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
	if len(result.Centroids) != 8 {
		t.Errorf("got %d centroids, want 8", len(result.Centroids))
	}

	exact, err := NewKMeans().Cluster(r, 8)
	if err != nil {
		t.Fatalf("Cluster() error: %v", err)
	}
	if !exact.Converged {
		t.Errorf("exact mode did not converge after %d iterations", exact.Iterations)
	}
}

func TestKMeansInvalidInput(t *testing.T) {
	r := mustRaster(t, solidImage(2, 2, RGB{}), SpaceRGB)

	tests := []struct {
		name   string
		raster *Raster
		k      int
	}{
		{name: "nil raster", raster: nil, k: 4},
		{name: "empty raster", raster: &Raster{Space: SpaceRGB}, k: 4},
		{name: "zero k", raster: r, k: 0},
		{name: "k too large", raster: r, k: MaxK + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewKMeans().Cluster(tt.raster, tt.k); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := NewKMeans().Cluster(nil, 4); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("nil raster error = %v, want ErrInvalidImage", err)
	}
}
