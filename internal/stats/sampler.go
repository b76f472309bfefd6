package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

// Sampling windows. Most stats endpoints serve fine-grained samples; the
// Files endpoints only support coarser sampling and need a wider reach.
const (
	DefaultWindow           = 150 * time.Second
	FilesWindow             = 600 * time.Second
	DefaultSamplingInterval = 30
	FilesSamplingInterval   = 300
)

// Getter issues one time-windowed stats query.
type Getter interface {
	GetStats(ctx context.Context, path string, window prism.StatsWindow) (json.RawMessage, error)
}

// PathFunc renders the stats endpoint path for one entity, scoping it
// under the parent when the descriptor carries one.
type PathFunc func(desc prism.Descriptor) string

// Sampler retrieves and flattens the statistics of single entities of
// one kind. It holds no mutable state and is safe for concurrent use by
// the fan-out pool.
type Sampler struct {
	client           Getter
	kind             catalog.Kind
	shape            Shape
	path             PathFunc
	window           time.Duration
	samplingInterval int
	statType         string
	logger           *slog.Logger
}

// NewSampler builds a sampler with the default window and LAST stat type.
func NewSampler(client Getter, kind catalog.Kind, shape Shape, path PathFunc, logger *slog.Logger) *Sampler {
	return &Sampler{
		client:           client,
		kind:             kind,
		shape:            shape,
		path:             path,
		window:           DefaultWindow,
		samplingInterval: DefaultSamplingInterval,
		statType:         prism.StatTypeLast,
		logger:           logger,
	}
}

// WithWindow overrides the query window and sampling interval.
func (s *Sampler) WithWindow(window time.Duration, samplingInterval int) *Sampler {
	clone := *s
	clone.window = window
	clone.samplingInterval = samplingInterval
	return &clone
}

// Sample issues one stats query for the entity and returns its flattened
// triples. Values flattened from per-sub-resource tuples share the
// entity's label. Fields outside the kind's declared catalog are dropped
// so the registry invariant holds structurally.
func (s *Sampler) Sample(ctx context.Context, desc prism.Descriptor) ([]catalog.Triple, error) {
	if desc.UUID == "" {
		return nil, errors.NewError(errors.ErrCodeSampleFailed, "entity has no identifier").
			WithComponent("stats").WithOperation(s.kind.Name)
	}

	window := prism.NewStatsWindow(s.window, s.samplingInterval, s.statType)
	data, err := s.client.GetStats(ctx, s.path(desc), window)
	if err != nil {
		return nil, err
	}

	tuples, err := Flatten(s.shape, data)
	if err != nil {
		return nil, err
	}

	label := catalog.ComposeLabel(desc.ParentName, desc.Name)

	var triples []catalog.Triple
	for _, fields := range tuples {
		for field, value := range fields {
			if !s.kind.HasField(field) {
				s.logger.Debug("dropping undeclared stat field",
					slog.String("kind", s.kind.Name),
					slog.String("field", field))
				continue
			}
			triples = append(triples, catalog.Triple{
				Key:   s.kind.MetricKey(field),
				Label: label,
				Value: value,
			})
		}
	}
	return triples, nil
}
