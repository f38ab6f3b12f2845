package pipeline

import (
	"fmt"
	"image"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/prevalent/internal/colour"
	imgpkg "github.com/jmylchreest/prevalent/internal/image"
)

// Analysis is the full result of processing one image.
type Analysis struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Space      colour.Space       `json:"space"`
	Iterations int                `json:"iterations"`
	Converged  bool               `json:"converged"`
	Palette    *colour.Palette    `json:"palette"`
	Ranked     []colour.NameCount `json:"ranked"`
	Dominant   []string           `json:"dominant"`
	Timings    Timings            `json:"timings"`
}

// Timings records how long each stage of Analyse took.
type Timings struct {
	Downscale time.Duration `json:"downscale"`
	Convert   time.Duration `json:"convert"`
	Cluster   time.Duration `json:"cluster"`
	Name      time.Duration `json:"name"`
}

// Processor runs the per-image operations with a fixed configuration.
// It is safe for concurrent use.
type Processor struct {
	cfg     Config
	catalog *colour.Catalog
	kmeans  *colour.KMeans
	exclude []string
	logger  hclog.Logger
}

// NewProcessor validates cfg and resolves its exclusions against catalog.
// A nil catalog selects the default catalog and a nil logger discards output.
func NewProcessor(cfg Config, catalog *colour.Catalog, logger hclog.Logger) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if catalog == nil {
		catalog = colour.DefaultCatalog()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	exclude, err := resolveNames(catalog, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclusion: %w", err)
	}

	return &Processor{
		cfg:     cfg,
		catalog: catalog,
		kmeans: colour.NewKMeans(
			colour.WithSeed(cfg.Seed),
			colour.WithMaxIterations(cfg.MaxIterations),
			colour.WithWorkers(cfg.Workers),
		),
		exclude: exclude,
		logger:  logger,
	}, nil
}

// Catalog returns the catalog used for naming.
func (p *Processor) Catalog() *colour.Catalog {
	return p.catalog
}

// Downscale bounds img to the configured maximum side.
func (p *Processor) Downscale(img image.Image) (image.Image, error) {
	return imgpkg.Downscale(img, p.cfg.MaxSide)
}

// Quantize clusters img into k colours and returns the recoloured image.
// Quantizing the result again with the same k and seed returns the same image.
func (p *Processor) Quantize(img image.Image, k int) (image.Image, error) {
	raster, err := colour.ToRaster(img, p.cfg.Space)
	if err != nil {
		return nil, err
	}
	clustering, err := p.cluster(raster, k)
	if err != nil {
		return nil, err
	}
	return colour.Recolour(raster, clustering, p.cfg.Workers)
}

// DominantColours returns the n most common colour names in img, leaving out
// any colour listed in exclude (catalog names or hex values).
func (p *Processor) DominantColours(img image.Image, n int, exclude []string) ([]string, error) {
	names, err := resolveNames(p.catalog, exclude)
	if err != nil {
		return nil, err
	}

	raster, err := colour.ToRaster(img, p.cfg.Space)
	if err != nil {
		return nil, err
	}
	clustering, err := p.cluster(raster, p.cfg.K)
	if err != nil {
		return nil, err
	}
	counts, err := p.countNames(raster, clustering)
	if err != nil {
		return nil, err
	}
	return colour.Rank(counts, names, n), nil
}

// Analyse downscales img, clusters it with the configured K and reports the
// palette together with the configured top N dominant colours.
func (p *Processor) Analyse(img image.Image) (*Analysis, error) {
	var t Timings

	start := time.Now()
	small, err := p.Downscale(img)
	if err != nil {
		return nil, err
	}
	t.Downscale = time.Since(start)

	start = time.Now()
	raster, err := colour.ToRaster(small, p.cfg.Space)
	if err != nil {
		return nil, err
	}
	t.Convert = time.Since(start)

	start = time.Now()
	clustering, err := p.cluster(raster, p.cfg.K)
	if err != nil {
		return nil, err
	}
	t.Cluster = time.Since(start)

	start = time.Now()
	counts, err := p.countNames(raster, clustering)
	if err != nil {
		return nil, err
	}
	ranked := colour.RankCounts(counts, p.exclude, p.cfg.N)
	dominant := make([]string, len(ranked))
	for i, r := range ranked {
		dominant[i] = r.Name
	}
	t.Name = time.Since(start)

	p.logger.Debug("analysed image",
		"width", raster.Width,
		"height", raster.Height,
		"clusters", clustering.Populated(),
		"downscale", t.Downscale,
		"convert", t.Convert,
		"cluster", t.Cluster,
		"name", t.Name,
	)

	return &Analysis{
		Width:      raster.Width,
		Height:     raster.Height,
		Space:      raster.Space,
		Iterations: clustering.Iterations,
		Converged:  clustering.Converged,
		Palette:    colour.NewPalette(clustering, p.catalog),
		Ranked:     ranked,
		Dominant:   dominant,
		Timings:    t,
	}, nil
}

func (p *Processor) cluster(raster *colour.Raster, k int) (*colour.Clustering, error) {
	clustering, err := p.kmeans.Cluster(raster, k)
	if err != nil {
		return nil, err
	}
	if !clustering.Converged {
		p.logger.Warn("clustering did not converge, using last centroids",
			"k", k,
			"iterations", clustering.Iterations,
		)
	}
	return clustering, nil
}

// countNames assigns every pixel to its centroid and tallies pixels per catalog name.
func (p *Processor) countNames(raster *colour.Raster, clustering *colour.Clustering) (map[string]int, error) {
	labels, err := colour.Assign(raster, clustering, p.cfg.Workers)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(clustering.Centroids))
	for i, ct := range clustering.Centroids {
		names[i] = p.catalog.Name(clustering.Space.ToRGB(ct.Vector))
	}

	counts := make(map[string]int)
	for _, l := range labels {
		counts[names[l]]++
	}
	return counts, nil
}

func resolveNames(catalog *colour.Catalog, values []string) ([]string, error) {
	names := make([]string, 0, len(values))
	for _, s := range values {
		name, err := catalog.Resolve(s)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
