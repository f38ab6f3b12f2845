package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	imgpkg "github.com/jmylchreest/prevalent/internal/image"
	"github.com/jmylchreest/prevalent/internal/report"
)

// ErrAllFailed is returned by Batch when no image could be processed.
var ErrAllFailed = errors.New("all images failed")

// Summary describes a finished batch run.
type Summary struct {
	Total    int
	Failed   int
	Duration time.Duration
}

// Batch processes ids concurrently with p and writes one record per id to sink,
// in input order. A failing image produces a record without colours and is
// logged; Batch only returns an error when the sink fails, the context is
// cancelled, or every image failed. The sink is not closed.
func Batch(ctx context.Context, p *Processor, src imgpkg.Source, ids []string, sink report.Sink, logger hclog.Logger) (Summary, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("batch")

	start := time.Now()
	summary := Summary{Total: len(ids)}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan report.Record, len(ids))
	for i := range results {
		results[i] = make(chan report.Record, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, id := range ids {
			g.Go(func() error {
				results[i] <- process(gctx, p, src, id, logger)
				return nil
			})
		}
	}()

	var imageErrs error
	var sinkErr error
	for i, ch := range results {
		rec := <-ch
		if rec.Err != nil {
			summary.Failed++
			imageErrs = multierr.Append(imageErrs, fmt.Errorf("%s: %w", rec.ID, rec.Err))
		}
		if err := sink.Write(rec); err != nil {
			sinkErr = err
			cancel()
			break
		}
		logger.Trace("record written", "index", i, "id", rec.ID)
	}

	wg.Wait()
	_ = g.Wait()
	summary.Duration = time.Since(start)

	logger.Info("batch complete",
		"total", summary.Total,
		"failed", summary.Failed,
		"duration", summary.Duration,
	)

	if sinkErr != nil {
		return summary, fmt.Errorf("failed to write results: %w", sinkErr)
	}
	if err := ctx.Err(); err != nil {
		return summary, multierr.Append(err, imageErrs)
	}
	if summary.Total > 0 && summary.Failed == summary.Total {
		return summary, fmt.Errorf("%w: %w", ErrAllFailed, imageErrs)
	}
	return summary, nil
}

func process(ctx context.Context, p *Processor, src imgpkg.Source, id string, logger hclog.Logger) report.Record {
	if err := ctx.Err(); err != nil {
		return report.Record{ID: id, Err: err}
	}

	img, err := src.Load(ctx, id)
	if err != nil {
		logger.Warn("failed to load image", "id", id, "error", err)
		return report.Record{ID: id, Err: err}
	}

	analysis, err := p.Analyse(img)
	if err != nil {
		logger.Warn("failed to analyse image", "id", id, "error", err)
		return report.Record{ID: id, Err: err}
	}

	logger.Debug("processed image", "id", id, "colours", analysis.Dominant, "iterations", analysis.Iterations)
	return report.Record{ID: id, Colours: analysis.Dominant}
}
