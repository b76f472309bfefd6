/*
Package config provides configuration management for the exporter with multi-source support.

Configuration is assembled in precedence order: compiled-in defaults, an
optional YAML file, then environment variables. Validation runs once on the
final merged result.

# Usage

	cfg := config.NewDefault()

	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			log.Fatal(err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatal(err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

# Environment variable mapping

Connection:

	PRISM="prism.example.com"
	PRISM_USERNAME="svc-exporter"
	PRISM_SECRET="..."
	PRISM_SECURE="true"
	APP_PORT="9440"
	API_REQUESTS_TIMEOUT_SECONDS="30"
	API_REQUESTS_RETRIES="5"
	API_SLEEP_SECONDS_BETWEEN_RETRIES="15"

Exporter:

	EXPORTER_PORT="8000"
	POLLING_INTERVAL_SECONDS="30"
	OPERATIONS_MODE="v4"
	VM_LIST="all"

Collector enable flags (truthy spellings: true, 1, t, y, yes):

	CLUSTER_METRICS, HOSTS_METRICS, STORAGE_CONTAINERS_METRICS,
	DISKS_METRICS, NETWORKING_METRICS, FILES_METRICS, OBJECT_METRICS,
	VOLUMES_METRICS, NCM_SSP_METRICS, PRISM_CENTRAL_METRICS

Redfish pipeline:

	IPMI_METRICS, IPMI_USERNAME, IPMI_SECRET

Objects S3 surface:

	OBJECTS_S3_ENDPOINT, OBJECTS_S3_ACCESS_KEY, OBJECTS_S3_SECRET_KEY,
	OBJECTS_S3_REGION

Credentials are read from the environment only; they are never written back
to a file and are masked in logs.
*/
package config
