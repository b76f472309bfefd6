package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	// Connection defaults
	if cfg.Prism.Port != 9440 {
		t.Errorf("Expected Prism.Port to be 9440, got %d", cfg.Prism.Port)
	}
	if cfg.Prism.Timeout != 30*time.Second {
		t.Errorf("Expected Prism.Timeout to be 30s, got %v", cfg.Prism.Timeout)
	}
	if cfg.Prism.Retries != 5 {
		t.Errorf("Expected Prism.Retries to be 5, got %d", cfg.Prism.Retries)
	}
	if cfg.Prism.RetryDelay != 15*time.Second {
		t.Errorf("Expected Prism.RetryDelay to be 15s, got %v", cfg.Prism.RetryDelay)
	}
	if cfg.Prism.Secure {
		t.Error("Expected Prism.Secure to be false by default")
	}

	// Exporter defaults
	if cfg.Exporter.Port != 8000 {
		t.Errorf("Expected Exporter.Port to be 8000, got %d", cfg.Exporter.Port)
	}
	if cfg.Exporter.PollingInterval != 30*time.Second {
		t.Errorf("Expected PollingInterval to be 30s, got %v", cfg.Exporter.PollingInterval)
	}
	if cfg.Exporter.OperationsMode != ModeV4 {
		t.Errorf("Expected OperationsMode to be v4, got %s", cfg.Exporter.OperationsMode)
	}

	// Collector defaults
	if !cfg.Collectors.Clusters {
		t.Error("Expected Clusters collector to be enabled by default")
	}
	if !cfg.Collectors.StorageContainers {
		t.Error("Expected StorageContainers collector to be enabled by default")
	}
	if cfg.Collectors.Hosts {
		t.Error("Expected Hosts collector to be disabled by default")
	}
	if cfg.Collectors.Disks {
		t.Error("Expected Disks collector to be disabled by default")
	}

	// IPMI defaults
	if cfg.IPMI.Username != "ADMIN" {
		t.Errorf("Expected IPMI.Username to be ADMIN, got %s", cfg.IPMI.Username)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
prism:
  host: prism.example.com
  username: svc
  secret: hunter2
  port: 9441
exporter:
  port: 9111
collectors:
  hosts: true
  disks: true
`)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := NewDefault()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Prism.Host != "prism.example.com" {
		t.Errorf("Expected host prism.example.com, got %s", cfg.Prism.Host)
	}
	if cfg.Prism.Port != 9441 {
		t.Errorf("Expected port 9441, got %d", cfg.Prism.Port)
	}
	if cfg.Exporter.Port != 9111 {
		t.Errorf("Expected exporter port 9111, got %d", cfg.Exporter.Port)
	}
	if !cfg.Collectors.Hosts {
		t.Error("Expected Hosts collector enabled from file")
	}
	if !cfg.Collectors.Disks {
		t.Error("Expected Disks collector enabled from file")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg := NewDefault()
	if err := cfg.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error loading missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PRISM", "pc.lab.local")
	t.Setenv("PRISM_USERNAME", "admin")
	t.Setenv("PRISM_SECRET", "secret")
	t.Setenv("PRISM_SECURE", "yes")
	t.Setenv("EXPORTER_PORT", "9999")
	t.Setenv("POLLING_INTERVAL_SECONDS", "60")
	t.Setenv("API_REQUESTS_RETRIES", "3")
	t.Setenv("HOSTS_METRICS", "1")
	t.Setenv("CLUSTER_METRICS", "false")
	t.Setenv("VM_LIST", "all")
	t.Setenv("OPERATIONS_MODE", "REDFISH")

	cfg := NewDefault()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.Prism.Host != "pc.lab.local" {
		t.Errorf("Expected host pc.lab.local, got %s", cfg.Prism.Host)
	}
	if !cfg.Prism.Secure {
		t.Error("Expected Secure true from 'yes'")
	}
	if cfg.Exporter.Port != 9999 {
		t.Errorf("Expected exporter port 9999, got %d", cfg.Exporter.Port)
	}
	if cfg.Exporter.PollingInterval != 60*time.Second {
		t.Errorf("Expected polling interval 60s, got %v", cfg.Exporter.PollingInterval)
	}
	if cfg.Prism.Retries != 3 {
		t.Errorf("Expected retries 3, got %d", cfg.Prism.Retries)
	}
	if !cfg.Collectors.Hosts {
		t.Error("Expected Hosts collector enabled via env")
	}
	if cfg.Collectors.Clusters {
		t.Error("Expected Clusters collector disabled via env")
	}
	if cfg.Exporter.VMList != "all" {
		t.Errorf("Expected VM_LIST all, got %s", cfg.Exporter.VMList)
	}
	if cfg.Exporter.OperationsMode != ModeRedfish {
		t.Errorf("Expected operations mode redfish, got %s", cfg.Exporter.OperationsMode)
	}
}

func TestLoadFromEnvIPMIConfig(t *testing.T) {
	t.Setenv("IPMI_CONFIG", `{"node-a": {"username": "root", "secret": "calvin"}, "node-b": {"secret": "override"}}`)

	cfg := NewDefault()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.IPMI.NodeUsernames["node-a"] != "root" {
		t.Errorf("Expected node-a username root, got %s", cfg.IPMI.NodeUsernames["node-a"])
	}
	if cfg.IPMI.NodeSecrets["node-a"] != "calvin" {
		t.Errorf("Expected node-a secret calvin, got %s", cfg.IPMI.NodeSecrets["node-a"])
	}
	if cfg.IPMI.NodeSecrets["node-b"] != "override" {
		t.Errorf("Expected node-b secret override, got %s", cfg.IPMI.NodeSecrets["node-b"])
	}
	if _, ok := cfg.IPMI.NodeUsernames["node-b"]; ok {
		t.Error("Expected node-b to fall back to the global username")
	}
}

func TestLoadFromEnvIPMIConfigInvalid(t *testing.T) {
	t.Setenv("IPMI_CONFIG", `not json`)

	cfg := NewDefault()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("Expected error for malformed IPMI_CONFIG")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := LoggingConfig{Level: tt.level}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Configuration {
		cfg := NewDefault()
		cfg.Prism.Host = "prism.example.com"
		cfg.Prism.Username = "svc"
		cfg.Prism.Secret = "secret"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("Expected valid config to pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"missing host", func(c *Configuration) { c.Prism.Host = "" }},
		{"missing credentials", func(c *Configuration) { c.Prism.Secret = "" }},
		{"bad prism port", func(c *Configuration) { c.Prism.Port = 0 }},
		{"bad exporter port", func(c *Configuration) { c.Exporter.Port = 70000 }},
		{"zero polling interval", func(c *Configuration) { c.Exporter.PollingInterval = 0 }},
		{"zero retries", func(c *Configuration) { c.Prism.Retries = 0 }},
		{"bad mode", func(c *Configuration) { c.Exporter.OperationsMode = "v2" }},
		{"bad log level", func(c *Configuration) { c.Logging.Level = "LOUD" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestEndpoint(t *testing.T) {
	cfg := NewDefault()
	cfg.Prism.Host = "prism.example.com"

	want := "https://prism.example.com:9440"
	if got := cfg.Endpoint(); got != want {
		t.Errorf("Endpoint() = %s, want %s", got, want)
	}
}

func TestSampledVMs(t *testing.T) {
	tests := []struct {
		name     string
		vmList   string
		wantAll  bool
		wantSet  []string
		wantNone bool
	}{
		{"empty disables sampling", "", false, nil, true},
		{"all samples everything", "all", true, nil, true},
		{"csv selects names", "web-01, db-01,cache-01", false, []string{"web-01", "db-01", "cache-01"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ExporterConfig{VMList: tt.vmList}
			all, names := cfg.SampledVMs()

			if all != tt.wantAll {
				t.Errorf("all = %v, want %v", all, tt.wantAll)
			}
			if tt.wantNone && names != nil {
				t.Errorf("names = %v, want nil", names)
			}
			for _, name := range tt.wantSet {
				if !names[name] {
					t.Errorf("expected %q in sampled set", name)
				}
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "1", "t", "y", "yes", "TRUE", "Yes", " y "}
	falsy := []string{"false", "0", "no", "", "on", "enabled"}

	for _, val := range truthy {
		if !ParseBool(val) {
			t.Errorf("ParseBool(%q) = false, want true", val)
		}
	}
	for _, val := range falsy {
		if ParseBool(val) {
			t.Errorf("ParseBool(%q) = true, want false", val)
		}
	}
}
