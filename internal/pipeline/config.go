// Package pipeline wires downscaling, clustering, naming and ranking into the
// per-image operations and the batch runner.
package pipeline

import (
	"fmt"
	"runtime"

	"github.com/jmylchreest/prevalent/internal/colour"
	imgpkg "github.com/jmylchreest/prevalent/internal/image"
)

// DefaultTopN is the number of dominant colours reported when none is requested.
const DefaultTopN = 3

// DefaultExclude is the colour left out of dominant colour results by default.
const DefaultExclude = "White"

// Config holds the settings of one run. It is shared read-only by every image.
type Config struct {
	// K is the number of clusters.
	K int
	// N is the number of dominant colours reported.
	N int
	// MaxSide bounds the downscaled image.
	MaxSide int
	// Space is the colour space clustering runs in.
	Space colour.Space
	// Seed makes centroid initialisation reproducible.
	Seed int64
	// MaxIterations caps refinement. Zero iterates to convergence.
	MaxIterations int
	// Workers is the number of goroutines used for assignment and by Batch.
	Workers int
	// Exclude lists colour names or hex values removed from dominant colour results.
	Exclude []string
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		K:       colour.DefaultK,
		N:       DefaultTopN,
		MaxSide: imgpkg.DefaultMaxSide,
		Space:   colour.SpaceLab,
		Seed:    colour.DefaultSeed,
		Workers: runtime.GOMAXPROCS(0),
		Exclude: []string{DefaultExclude},
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.K < 1 || c.K > colour.MaxK {
		return fmt.Errorf("clusters must be between 1 and %d, got %d", colour.MaxK, c.K)
	}
	if c.N < 0 {
		return fmt.Errorf("count must not be negative, got %d", c.N)
	}
	if c.MaxSide < 1 {
		return fmt.Errorf("max side must be at least 1, got %d", c.MaxSide)
	}
	if !colour.IsValidSpace(c.Space) {
		return fmt.Errorf("invalid colour space: %s (valid: %v)", c.Space, colour.ValidSpaces())
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations must not be negative, got %d", c.MaxIterations)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}
