package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/prevalent/internal/colour"
	imgpkg "github.com/jmylchreest/prevalent/internal/image"
	"github.com/jmylchreest/prevalent/internal/pipeline"
	httputil "github.com/jmylchreest/prevalent/internal/util/http"
)

// Environment variables that override flag defaults.
const (
	EnvWorkers  = "PREVALENT_WORKERS"
	EnvCacheDir = "PREVALENT_CACHE_DIR"
)

// pipelineFlags are the clustering flags shared by dominant, quantize and batch.
type pipelineFlags struct {
	clusters      int
	count         int
	maxSide       int
	space         string
	seed          int64
	maxIterations int
	workers       int
	exclude       []string
	cacheDir      string
	timeout       time.Duration
}

func (f *pipelineFlags) register(fs *pflag.FlagSet, withRanking bool) {
	def := pipeline.DefaultConfig()

	fs.IntVarP(&f.clusters, "clusters", "k", def.K, fmt.Sprintf("number of k-means clusters (1-%d)", colour.MaxK))
	fs.IntVar(&f.maxSide, "max-side", def.MaxSide, "downscale until neither side exceeds this many pixels")
	fs.StringVar(&f.space, "space", string(def.Space), "clustering colour space (lab, rgb)")
	fs.Int64Var(&f.seed, "seed", def.Seed, "seed for centroid initialisation")
	fs.IntVar(&f.maxIterations, "max-iterations", def.MaxIterations, "cap on refinement iterations (0 = until converged)")
	fs.IntVar(&f.workers, "workers", def.Workers, "number of worker goroutines (env "+EnvWorkers+")")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "keep downloaded images in this directory (env "+EnvCacheDir+")")
	fs.DurationVar(&f.timeout, "timeout", httputil.DefaultTimeout, "timeout for downloading an image")

	if withRanking {
		fs.IntVarP(&f.count, "count", "n", def.N, "number of dominant colours to report")
		fs.StringSliceVarP(&f.exclude, "exclude", "x", def.Exclude, "colour name or #hex to leave out (repeatable)")
	} else {
		f.count = def.N
		f.exclude = def.Exclude
	}
}

// config builds the run configuration, applying environment overrides for
// flags that were not set on the command line.
func (f *pipelineFlags) config(fs *pflag.FlagSet) (pipeline.Config, error) {
	if !fs.Changed("workers") {
		if v, ok := os.LookupEnv(EnvWorkers); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return pipeline.Config{}, fmt.Errorf("invalid %s: %w", EnvWorkers, err)
			}
			f.workers = n
		}
	}
	if !fs.Changed("cache-dir") {
		f.cacheDir = os.Getenv(EnvCacheDir)
	}

	space, err := colour.ParseSpace(f.space)
	if err != nil {
		return pipeline.Config{}, err
	}

	cfg := pipeline.Config{
		K:             f.clusters,
		N:             f.count,
		MaxSide:       f.maxSide,
		Space:         space,
		Seed:          f.seed,
		MaxIterations: f.maxIterations,
		Workers:       f.workers,
		Exclude:       f.exclude,
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loader returns the image source for the configured cache directory.
func (f *pipelineFlags) loader() *imgpkg.SmartLoader {
	opts := []imgpkg.SmartLoaderOption{
		imgpkg.WithFetchOptions(httputil.FetchOptions{Timeout: f.timeout}),
	}
	if f.cacheDir != "" {
		opts = append(opts, imgpkg.WithCacheDir(f.cacheDir))
	}
	return imgpkg.NewSmartLoader(opts...)
}
