package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
)

type recordingFailures struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recordingFailures) RecordTaskFailure(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func descriptorsN(n int) []prism.Descriptor {
	descs := make([]prism.Descriptor, n)
	for i := range descs {
		descs[i] = prism.Descriptor{Name: fmt.Sprintf("entity-%d", i), UUID: fmt.Sprintf("uuid-%d", i)}
	}
	return descs
}

func TestCollectPartialFailureIsolation(t *testing.T) {
	t.Parallel()

	recorder := &recordingFailures{}
	sample := func(ctx context.Context, desc prism.Descriptor) ([]catalog.Triple, error) {
		if desc.Name == "entity-2" {
			return nil, fmt.Errorf("upstream hiccup")
		}
		return []catalog.Triple{{Key: "k", Label: desc.Name, Value: 1}}, nil
	}

	triples := Collect(context.Background(), "vms", descriptorsN(5), sample, recorder, slog.Default())

	// Four of five entities deliver; the failure is counted, not fatal.
	if len(triples) != 4 {
		t.Errorf("Expected 4 triples, got %d", len(triples))
	}
	if len(recorder.kinds) != 1 || recorder.kinds[0] != "vms" {
		t.Errorf("Expected one recorded vms failure, got %v", recorder.kinds)
	}
	for _, triple := range triples {
		if triple.Label == "entity-2" {
			t.Error("Failed entity must contribute no triples")
		}
	}
}

func TestCollectBoundedConcurrency(t *testing.T) {
	t.Parallel()

	var current, peak atomic.Int32
	sample := func(ctx context.Context, desc prism.Descriptor) ([]catalog.Triple, error) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return nil, nil
	}

	Collect(context.Background(), "hosts", descriptorsN(40), sample, nil, slog.Default())

	if got := peak.Load(); got > samplerWorkers {
		t.Errorf("Concurrency exceeded pool size: peak %d > %d", got, samplerWorkers)
	}
}

func TestCollectEmptyDescriptors(t *testing.T) {
	t.Parallel()

	triples := Collect(context.Background(), "disks", nil, func(ctx context.Context, desc prism.Descriptor) ([]catalog.Triple, error) {
		t.Error("Sampler must not run without descriptors")
		return nil, nil
	}, nil, slog.Default())

	if len(triples) != 0 {
		t.Errorf("Expected no triples, got %d", len(triples))
	}
}

type staticGetter struct {
	payload json.RawMessage
}

func (s staticGetter) GetStats(ctx context.Context, path string, window prism.StatsWindow) (json.RawMessage, error) {
	return s.payload, nil
}

func TestSamplerDropsUndeclaredFields(t *testing.T) {
	t.Parallel()

	getter := staticGetter{payload: json.RawMessage(`{
		"hypervisorCpuUsagePpm": [{"value": 100}],
		"someNewUpstreamField": [{"value": 7}]
	}`)}

	sampler := NewSampler(getter, catalog.Cluster, ShapeSeriesMap,
		func(d prism.Descriptor) string { return "/stats/" + d.UUID }, slog.Default())

	triples, err := sampler.Sample(context.Background(), prism.Descriptor{Name: "prod", UUID: "cl-1"})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if len(triples) != 1 {
		t.Fatalf("Expected only the declared field, got %d triples", len(triples))
	}
	if triples[0].Key != catalog.Cluster.MetricKey("hypervisor_cpu_usage_ppm") {
		t.Errorf("Unexpected key %s", triples[0].Key)
	}
	if triples[0].Label != "prod" {
		t.Errorf("Unexpected label %s", triples[0].Label)
	}
}

func TestSamplerComposesParentLabel(t *testing.T) {
	t.Parallel()

	getter := staticGetter{payload: json.RawMessage(`{"storageUsageBytes": [{"value": 5}]}`)}
	sampler := NewSampler(getter, catalog.StorageContainer, ShapeSeriesMap,
		func(d prism.Descriptor) string { return "/stats/" + d.UUID }, slog.Default())

	triples, err := sampler.Sample(context.Background(), prism.Descriptor{
		Name: "default", UUID: "sc-1", ParentUUID: "cl-1", ParentName: "prod",
	})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(triples) != 1 || triples[0].Label != "prod_default" {
		t.Fatalf("Expected composed label prod_default, got %+v", triples)
	}
}

func TestSamplerRejectsMissingUUID(t *testing.T) {
	t.Parallel()

	sampler := NewSampler(staticGetter{}, catalog.VM, ShapeSeriesMap,
		func(d prism.Descriptor) string { return "" }, slog.Default())

	if _, err := sampler.Sample(context.Background(), prism.Descriptor{Name: "ghost"}); err == nil {
		t.Error("Expected error for descriptor without identifier")
	}
}
