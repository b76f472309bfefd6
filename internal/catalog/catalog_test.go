package catalog

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"controller.avg.io", "controller_avg_io"},
		{"das-sata", "das_sata"},
		{"already_clean", "already_clean"},
		{"mixed-case.name", "mixed_case_name"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"a.b-c", "x__y", "node-07.rack-2", "plain"}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"hypervisorCpuUsagePpm", "hypervisor_cpu_usage_ppm"},
		{"extId", "ext_id"},
		{"$objectType", "_object_type"},
		{"$unknownFields", "_unknown_fields"},
		{"storageUsageBytes", "storage_usage_bytes"},
		{"already_snake", "already_snake"},
		{"value", "value"},
	}
	for _, tt := range tests {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeLabel(t *testing.T) {
	t.Parallel()

	if got := ComposeLabel("prod", "default"); got != "prod_default" {
		t.Errorf("Expected prod_default, got %s", got)
	}
	if got := ComposeLabel("", "standalone"); got != "standalone" {
		t.Errorf("Expected standalone, got %s", got)
	}
	if got := ComposeLabel("cl.01", "ctr-a"); got != "cl_01_ctr_a" {
		t.Errorf("Expected sanitized composition, got %s", got)
	}
}

func TestMetricKey(t *testing.T) {
	t.Parallel()

	key := Cluster.MetricKey("hypervisor_cpu_usage_ppm")
	if key != "nutanix_clustermgmt_cluster_hypervisor_cpu_usage_ppm" {
		t.Errorf("Unexpected key %s", key)
	}

	// Wire-format field names normalize to the same key.
	if got := Cluster.MetricKey("hypervisorCpuUsagePpm"); got != key {
		t.Errorf("camelCase field must map to the same key, got %s", got)
	}
}

func TestHasField(t *testing.T) {
	t.Parallel()

	if !Host.HasField("cpu_usage_hz") {
		t.Error("Expected declared field to be present")
	}
	if Host.HasField("made_up_field") {
		t.Error("Undeclared field must not be present")
	}
}

func TestAllMetricsUniqueAndWellFormed(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, metric := range AllMetrics() {
		if seen[metric.Key] {
			t.Errorf("Duplicate metric key %s", metric.Key)
		}
		seen[metric.Key] = true

		if !strings.HasPrefix(metric.Key, "nutanix_") {
			t.Errorf("Metric key %s lacks the nutanix_ prefix", metric.Key)
		}
		if metric.Key != Sanitize(metric.Key) {
			t.Errorf("Metric key %s is not sanitized", metric.Key)
		}
		if len(metric.Labels) == 0 {
			t.Errorf("Metric %s declares no labels", metric.Key)
		}
		if metric.Help == "" {
			t.Errorf("Metric %s has no help text", metric.Key)
		}
	}
}

// The catalog is the registry's source of truth; its contents must not
// drift between calls.
func TestCatalogStability(t *testing.T) {
	t.Parallel()

	first := AllMetrics()
	second := AllMetrics()
	if len(first) != len(second) {
		t.Fatalf("Catalog size changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("Catalog order changed at %d: %s vs %s", i, first[i].Key, second[i].Key)
		}
	}
}

func TestKindsCoverEveryStatPrefix(t *testing.T) {
	t.Parallel()

	for _, kind := range Kinds() {
		if kind.Prefix == "" || kind.Label == "" || kind.Name == "" {
			t.Errorf("Kind %+v is missing identity fields", kind)
		}
		if len(kind.Fields) == 0 {
			t.Errorf("Kind %s declares no stat fields", kind.Name)
		}
	}
}
