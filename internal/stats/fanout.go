package stats

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
)

// samplerWorkers bounds concurrent stat samples per entity kind. The
// pool is separate from the page-fetch pool so listing and sampling
// never contend for the same slots.
const samplerWorkers = 10

// FailureRecorder observes per-task sampling failures.
type FailureRecorder interface {
	RecordTaskFailure(kind string)
}

// SampleFunc samples one entity.
type SampleFunc func(ctx context.Context, desc prism.Descriptor) ([]catalog.Triple, error)

// Collect runs sample for every descriptor through a bounded pool and
// accumulates the triples. A task failure is logged, counted, and
// contributes zero triples; it never aborts the batch. Ordering across
// entities is arbitrary.
func Collect(ctx context.Context, kind string, descriptors []prism.Descriptor, sample SampleFunc, recorder FailureRecorder, logger *slog.Logger) []catalog.Triple {
	var (
		mu        sync.Mutex
		triples   []catalog.Triple
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(samplerWorkers)

	for _, desc := range descriptors {
		g.Go(func() error {
			result, err := sample(gctx, desc)

			mu.Lock()
			defer mu.Unlock()
			completed++

			if err != nil {
				logger.Warn("entity sample failed",
					slog.String("kind", kind),
					slog.String("entity", desc.Name),
					slog.String("uuid", desc.UUID),
					slog.String("error", err.Error()))
				if recorder != nil {
					recorder.RecordTaskFailure(kind)
				}
				return nil
			}

			triples = append(triples, result...)
			logger.Debug("entity sampled",
				slog.String("kind", kind),
				slog.Int("completed", completed),
				slog.Int("total", len(descriptors)))
			return nil
		})
	}

	// Workers swallow their own errors, so Wait only observes context
	// cancellation.
	_ = g.Wait()

	return triples
}
