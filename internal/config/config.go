// Package config provides exporter configuration with YAML and environment-variable loading
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Mode selects which collection pipeline the exporter runs.
const (
	ModeV4      = "v4"
	ModeRedfish = "redfish"
)

// Configuration represents the complete exporter configuration
type Configuration struct {
	Prism      PrismConfig      `yaml:"prism"`
	Exporter   ExporterConfig   `yaml:"exporter"`
	Collectors CollectorsConfig `yaml:"collectors"`
	IPMI       IPMIConfig       `yaml:"ipmi"`
	Objects    ObjectsConfig    `yaml:"objects"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PrismConfig represents the upstream Prism Central connection settings
type PrismConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Username   string        `yaml:"username"`
	Secret     string        `yaml:"secret"`
	Secure     bool          `yaml:"secure"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// ExporterConfig represents the scrape endpoint and polling loop settings
type ExporterConfig struct {
	Port            int           `yaml:"port"`
	PollingInterval time.Duration `yaml:"polling_interval"`
	OperationsMode  string        `yaml:"operations_mode"`

	// VMList controls per-VM stat sampling: empty disables it, "all"
	// samples every VM, otherwise a comma-separated list of VM names.
	VMList string `yaml:"vm_list"`
}

// CollectorsConfig represents the per-entity-kind enable flags
type CollectorsConfig struct {
	Clusters          bool `yaml:"clusters"`
	Hosts             bool `yaml:"hosts"`
	StorageContainers bool `yaml:"storage_containers"`
	Disks             bool `yaml:"disks"`
	Networking        bool `yaml:"networking"`
	Files             bool `yaml:"files"`
	Objects           bool `yaml:"objects"`
	Volumes           bool `yaml:"volumes"`
	NCMSSP            bool `yaml:"ncm_ssp"`
	PrismCentral      bool `yaml:"prism_central"`
}

// IPMIConfig represents per-node BMC access for the redfish pipeline
type IPMIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Secret   string `yaml:"secret"`

	// Per-node overrides keyed by node name; a node without an entry
	// falls back to Username/Secret, and an empty secret falls back to
	// the node serial number.
	NodeUsernames map[string]string `yaml:"node_usernames"`
	NodeSecrets   map[string]string `yaml:"node_secrets"`
}

// ObjectsConfig represents the optional S3-compatible bucket collector
type ObjectsConfig struct {
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Region    string `yaml:"s3_region"`
}

// LoggingConfig represents log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel maps the configured level to its slog equivalent. The
// spellings are the ones Validate accepts; anything else is INFO.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToUpper(l.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewDefault returns a configuration with sensible defaults
func NewDefault() *Configuration {
	return &Configuration{
		Prism: PrismConfig{
			Port:       9440,
			Secure:     false,
			Timeout:    30 * time.Second,
			Retries:    5,
			RetryDelay: 15 * time.Second,
		},
		Exporter: ExporterConfig{
			Port:            8000,
			PollingInterval: 30 * time.Second,
			OperationsMode:  ModeV4,
			VMList:          "",
		},
		Collectors: CollectorsConfig{
			Clusters:          true,
			Hosts:             false,
			StorageContainers: true,
			Disks:             false,
			Networking:        false,
			Files:             false,
			Objects:           false,
			Volumes:           false,
			NCMSSP:            false,
			PrismCentral:      false,
		},
		IPMI: IPMIConfig{
			Enabled:       false,
			Username:      "ADMIN",
			NodeUsernames: map[string]string{},
			NodeSecrets:   map[string]string{},
		},
		Objects: ObjectsConfig{
			S3Region: "us-east-1",
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Configuration) LoadFromEnv() error {
	// Prism connection
	if val := os.Getenv("PRISM"); val != "" {
		c.Prism.Host = val
	}
	if val := os.Getenv("PRISM_USERNAME"); val != "" {
		c.Prism.Username = val
	}
	if val := os.Getenv("PRISM_SECRET"); val != "" {
		c.Prism.Secret = val
	}
	if val := os.Getenv("PRISM_SECURE"); val != "" {
		c.Prism.Secure = ParseBool(val)
	}
	if val := os.Getenv("APP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Prism.Port = port
		}
	}
	if val := os.Getenv("API_REQUESTS_TIMEOUT_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			c.Prism.Timeout = time.Duration(seconds) * time.Second
		}
	}
	if val := os.Getenv("API_REQUESTS_RETRIES"); val != "" {
		if retries, err := strconv.Atoi(val); err == nil {
			c.Prism.Retries = retries
		}
	}
	if val := os.Getenv("API_SLEEP_SECONDS_BETWEEN_RETRIES"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			c.Prism.RetryDelay = time.Duration(seconds) * time.Second
		}
	}

	// Exporter settings
	if val := os.Getenv("EXPORTER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Exporter.Port = port
		}
	}
	if val := os.Getenv("POLLING_INTERVAL_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			c.Exporter.PollingInterval = time.Duration(seconds) * time.Second
		}
	}
	if val := os.Getenv("OPERATIONS_MODE"); val != "" {
		c.Exporter.OperationsMode = strings.ToLower(val)
	}
	if val := os.Getenv("VM_LIST"); val != "" {
		c.Exporter.VMList = val
	}

	// Collector enable flags
	if val := os.Getenv("CLUSTER_METRICS"); val != "" {
		c.Collectors.Clusters = ParseBool(val)
	}
	if val := os.Getenv("HOSTS_METRICS"); val != "" {
		c.Collectors.Hosts = ParseBool(val)
	}
	if val := os.Getenv("STORAGE_CONTAINERS_METRICS"); val != "" {
		c.Collectors.StorageContainers = ParseBool(val)
	}
	if val := os.Getenv("DISKS_METRICS"); val != "" {
		c.Collectors.Disks = ParseBool(val)
	}
	if val := os.Getenv("NETWORKING_METRICS"); val != "" {
		c.Collectors.Networking = ParseBool(val)
	}
	if val := os.Getenv("FILES_METRICS"); val != "" {
		c.Collectors.Files = ParseBool(val)
	}
	if val := os.Getenv("OBJECT_METRICS"); val != "" {
		c.Collectors.Objects = ParseBool(val)
	}
	if val := os.Getenv("VOLUMES_METRICS"); val != "" {
		c.Collectors.Volumes = ParseBool(val)
	}
	if val := os.Getenv("NCM_SSP_METRICS"); val != "" {
		c.Collectors.NCMSSP = ParseBool(val)
	}
	if val := os.Getenv("PRISM_CENTRAL_METRICS"); val != "" {
		c.Collectors.PrismCentral = ParseBool(val)
	}

	// IPMI / Redfish
	if val := os.Getenv("IPMI_METRICS"); val != "" {
		c.IPMI.Enabled = ParseBool(val)
	}
	if val := os.Getenv("IPMI_USERNAME"); val != "" {
		c.IPMI.Username = val
	}
	if val := os.Getenv("IPMI_SECRET"); val != "" {
		c.IPMI.Secret = val
	}
	if val := os.Getenv("IPMI_CONFIG"); val != "" {
		// Per-node BMC credential overrides as a JSON object keyed by
		// node name: {"node-a": {"username": "...", "secret": "..."}}.
		overrides := map[string]struct {
			Username string `json:"username"`
			Secret   string `json:"secret"`
		}{}
		if err := json.Unmarshal([]byte(val), &overrides); err != nil {
			return fmt.Errorf("failed to parse IPMI_CONFIG: %w", err)
		}
		if c.IPMI.NodeUsernames == nil {
			c.IPMI.NodeUsernames = map[string]string{}
		}
		if c.IPMI.NodeSecrets == nil {
			c.IPMI.NodeSecrets = map[string]string{}
		}
		for node, override := range overrides {
			if override.Username != "" {
				c.IPMI.NodeUsernames[node] = override.Username
			}
			if override.Secret != "" {
				c.IPMI.NodeSecrets[node] = override.Secret
			}
		}
	}

	// Objects S3 surface
	if val := os.Getenv("OBJECTS_S3_ENDPOINT"); val != "" {
		c.Objects.S3Endpoint = val
	}
	if val := os.Getenv("OBJECTS_S3_ACCESS_KEY"); val != "" {
		c.Objects.S3AccessKey = val
	}
	if val := os.Getenv("OBJECTS_S3_SECRET_KEY"); val != "" {
		c.Objects.S3SecretKey = val
	}
	if val := os.Getenv("OBJECTS_S3_REGION"); val != "" {
		c.Objects.S3Region = val
	}

	// Logging
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Logging.Level = strings.ToUpper(val)
	}

	return nil
}

// Validate validates the configuration
func (c *Configuration) Validate() error {
	if c.Prism.Host == "" {
		return fmt.Errorf("prism host must be set")
	}

	if c.Prism.Username == "" || c.Prism.Secret == "" {
		return fmt.Errorf("prism credentials must be set")
	}

	if c.Prism.Port <= 0 || c.Prism.Port > 65535 {
		return fmt.Errorf("invalid prism port: %d", c.Prism.Port)
	}

	if c.Exporter.Port <= 0 || c.Exporter.Port > 65535 {
		return fmt.Errorf("invalid exporter port: %d", c.Exporter.Port)
	}

	if c.Exporter.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be greater than 0")
	}

	if c.Prism.Retries <= 0 {
		return fmt.Errorf("retries must be greater than 0")
	}

	if c.Exporter.OperationsMode != ModeV4 && c.Exporter.OperationsMode != ModeRedfish {
		return fmt.Errorf("invalid operations_mode: %s (must be one of: %s, %s)",
			c.Exporter.OperationsMode, ModeV4, ModeRedfish)
	}

	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	logLevelValid := false
	for _, level := range validLogLevels {
		if c.Logging.Level == level {
			logLevelValid = true
			break
		}
	}
	if !logLevelValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.Logging.Level, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// Endpoint returns the base URL of the upstream API.
func (c *Configuration) Endpoint() string {
	return fmt.Sprintf("https://%s:%d", c.Prism.Host, c.Prism.Port)
}

// SampledVMs returns the set of VM names selected for stat sampling and
// whether every VM should be sampled. A nil set with all=false means VM
// stat sampling is disabled.
func (c *ExporterConfig) SampledVMs() (all bool, names map[string]bool) {
	switch strings.TrimSpace(c.VMList) {
	case "":
		return false, nil
	case "all":
		return true, nil
	}

	names = make(map[string]bool)
	for _, name := range strings.Split(c.VMList, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names[trimmed] = true
		}
	}
	return false, names
}

// ParseBool interprets the truthy spellings accepted for enable flags.
func ParseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "t", "y", "yes":
		return true
	default:
		return false
	}
}
