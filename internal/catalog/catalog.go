// Package catalog declares the static metric catalog: the complete set of
// gauges the exporter will ever publish, fixed before any network
// activity. Both the registry construction and per-cycle publishing key
// off these tables, so a metric key that was not declared here can never
// appear at publish time.
package catalog

import (
	"strings"
	"unicode"
)

// Triple is the canonical unit handed to the publishing layer: one
// metric key, one entity label value, one sampled value.
type Triple struct {
	Key   string
	Label string
	Value float64
}

// Metric describes one gauge to register.
type Metric struct {
	Key    string
	Help   string
	Labels []string
}

// Kind binds an entity kind to its metric key prefix, label dimension
// and the fixed list of stat fields it publishes.
type Kind struct {
	Name   string
	Prefix string
	Label  string
	Fields []string
}

// Stat field tables per entity kind. The field spellings follow the
// upstream stats payloads after snake_case normalization.
var (
	Cluster = Kind{
		Name:   "cluster",
		Prefix: "nutanix_clustermgmt_cluster_",
		Label:  "cluster",
		Fields: []string{
			"controller_avg_io_latency_usecs",
			"controller_avg_read_io_latency_usecs",
			"controller_avg_write_io_latency_usecs",
			"controller_num_iops",
			"controller_num_read_iops",
			"controller_num_write_iops",
			"controller_io_bandwidth_kbps",
			"controller_read_io_bandwidth_kbps",
			"controller_write_io_bandwidth_kbps",
			"hypervisor_cpu_usage_ppm",
			"aggregate_hypervisor_memory_usage_ppm",
			"storage_usage_bytes",
			"storage_capacity_bytes",
			"free_physical_storage_bytes",
			"logical_storage_usage_bytes",
			"recycle_bin_usage_bytes",
			"snapshot_capacity_bytes",
			"replication_capacity_bytes",
			"overall_savings_bytes",
			"overall_savings_ratio_ppm",
		},
	}

	Host = Kind{
		Name:   "host",
		Prefix: "nutanix_clustermgmt_host_",
		Label:  "host",
		Fields: []string{
			"cpu_usage_hz",
			"cpu_capacity_hz",
			"hypervisor_cpu_usage_ppm",
			"hypervisor_memory_usage_ppm",
			"memory_usage_bytes",
			"memory_capacity_bytes",
			"storage_usage_bytes",
			"storage_capacity_bytes",
			"controller_avg_io_latency_usecs",
			"controller_num_iops",
			"controller_io_bandwidth_kbps",
			"io_bandwidth_kbps",
			"num_iops",
			"avg_io_latency_usecs",
		},
	}

	StorageContainer = Kind{
		Name:   "storage_container",
		Prefix: "nutanix_clustermgmt_storage_container_",
		Label:  "storage_container",
		Fields: []string{
			"controller_avg_io_latency_usecs",
			"controller_avg_read_io_latency_usecs",
			"controller_avg_write_io_latency_usecs",
			"controller_num_iops",
			"controller_num_read_iops",
			"controller_num_write_iops",
			"controller_io_bandwidth_kbps",
			"storage_usage_bytes",
			"storage_capacity_bytes",
			"storage_free_bytes",
			"data_reduction_saving_ratio_ppm",
			"data_reduction_total_saving_ratio_ppm",
		},
	}

	Disk = Kind{
		Name:   "disk",
		Prefix: "nutanix_clustermgmt_disk_",
		Label:  "disk",
		Fields: []string{
			"avg_io_latency_usecs",
			"avg_read_io_latency_usecs",
			"avg_write_io_latency_usecs",
			"num_iops",
			"num_read_iops",
			"num_write_iops",
			"io_bandwidth_kbps",
			"storage_usage_bytes",
			"storage_capacity_bytes",
		},
	}

	VM = Kind{
		Name:   "vm",
		Prefix: "nutanix_vmm_vm_",
		Label:  "vm",
		Fields: []string{
			"hypervisor_cpu_usage_ppm",
			"hypervisor_cpu_ready_time_ppm",
			"memory_usage_ppm",
			"controller_num_iops",
			"controller_num_read_iops",
			"controller_num_write_iops",
			"controller_io_bandwidth_kbps",
			"controller_avg_io_latency_micros",
			"controller_avg_read_io_latency_micros",
			"controller_avg_write_io_latency_micros",
		},
	}

	VMDisk = Kind{
		Name:   "vm_disk",
		Prefix: "nutanix_vmm_vm_disk_",
		Label:  "vm_disk",
		Fields: []string{
			"controller_num_iops",
			"controller_num_read_iops",
			"controller_num_write_iops",
			"controller_io_bandwidth_kbps",
			"controller_avg_io_latency_micros",
		},
	}

	Layer2Stretch = Kind{
		Name:   "layer2_stretch",
		Prefix: "nutanix_networking_layer2_stretch_",
		Label:  "layer2_stretch",
		Fields: []string{
			"bytes_received",
			"bytes_transmitted",
			"packets_received",
			"packets_transmitted",
		},
	}

	LoadBalancerSession = Kind{
		Name:   "load_balancer_session",
		Prefix: "nutanix_networking_load_balancer_session_",
		Label:  "load_balancer_session",
		Fields: []string{
			"active_connections",
			"total_connections",
			"bytes_in",
			"bytes_out",
		},
	}

	TrafficMirror = Kind{
		Name:   "traffic_mirror",
		Prefix: "nutanix_networking_traffic_mirror_",
		Label:  "traffic_mirror",
		Fields: []string{
			"bytes_mirrored",
			"packets_mirrored",
		},
	}

	VPCNorthSouth = Kind{
		Name:   "vpc_ns",
		Prefix: "nutanix_networking_vpc_ns_",
		Label:  "vpc_ns",
		Fields: []string{
			"bytes_received",
			"bytes_transmitted",
			"packets_received",
			"packets_transmitted",
			"packets_dropped",
		},
	}

	VPNConnection = Kind{
		Name:   "vpn_connection",
		Prefix: "nutanix_networking_vpn_connection_",
		Label:  "vpn_connection",
		Fields: []string{
			"bytes_received",
			"bytes_transmitted",
		},
	}

	Antivirus = Kind{
		Name:   "antivirus",
		Prefix: "nutanix_files_antivirus_",
		Label:  "antivirus",
		Fields: []string{
			"scan_queue_length",
			"files_scanned",
			"infected_files",
			"quarantined_files",
		},
	}

	FileServer = Kind{
		Name:   "file_server",
		Prefix: "nutanix_files_file_server_",
		Label:  "file_server",
		Fields: []string{
			"num_files",
			"num_smb_connections",
			"num_nfs_connections",
			"storage_used_bytes",
			"storage_capacity_bytes",
			"read_throughput_kbps",
			"write_throughput_kbps",
			"read_latency_usecs",
			"write_latency_usecs",
			"metadata_latency_usecs",
		},
	}

	MountTarget = Kind{
		Name:   "mount_target",
		Prefix: "nutanix_files_mount_target_",
		Label:  "mount_target",
		Fields: []string{
			"num_files",
			"num_connections",
			"storage_used_bytes",
			"read_throughput_kbps",
			"write_throughput_kbps",
			"read_latency_usecs",
			"write_latency_usecs",
		},
	}

	ObjectStore = Kind{
		Name:   "object_store",
		Prefix: "nutanix_objects_object_store_",
		Label:  "object_store",
		Fields: []string{
			"num_objects",
			"num_buckets",
			"storage_used_bytes",
			"num_gets",
			"num_puts",
			"num_deletes",
			"read_bandwidth_kbps",
			"write_bandwidth_kbps",
		},
	}

	VolumeGroup = Kind{
		Name:   "volume_group",
		Prefix: "nutanix_volumes_volume_group_",
		Label:  "volume_group",
		Fields: []string{
			"controller_num_iops",
			"controller_num_read_iops",
			"controller_num_write_iops",
			"controller_io_bandwidth_kbps",
			"controller_avg_io_latency_micros",
		},
	}

	VolumeDisk = Kind{
		Name:   "volume_disk",
		Prefix: "nutanix_volumes_volume_disk_",
		Label:  "volume_disk",
		Fields: []string{
			"controller_num_iops",
			"controller_num_read_iops",
			"controller_num_write_iops",
			"controller_io_bandwidth_kbps",
			"controller_avg_io_latency_micros",
		},
	}
)

// Kinds returns every stat-publishing entity kind.
func Kinds() []Kind {
	return []Kind{
		Cluster, Host, StorageContainer, Disk, VM, VMDisk,
		Layer2Stretch, LoadBalancerSession, TrafficMirror, VPCNorthSouth, VPNConnection,
		Antivirus, FileServer, MountTarget,
		ObjectStore, VolumeGroup, VolumeDisk,
	}
}

// MetricKey derives the metric key for one stat field of this kind.
func (k Kind) MetricKey(field string) string {
	return Sanitize(k.Prefix + SnakeCase(field))
}

// Metrics enumerates the gauges this kind contributes to the registry.
func (k Kind) Metrics() []Metric {
	metrics := make([]Metric, 0, len(k.Fields))
	for _, field := range k.Fields {
		metrics = append(metrics, Metric{
			Key:    k.MetricKey(field),
			Help:   strings.ReplaceAll(field, "_", " ") + " per " + k.Name,
			Labels: []string{k.Label},
		})
	}
	return metrics
}

// HasField reports whether a normalized payload field belongs to the
// kind's declared stat set.
func (k Kind) HasField(field string) bool {
	for _, f := range k.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// StatMetrics enumerates the stat gauges of every kind.
func StatMetrics() []Metric {
	var metrics []Metric
	for _, kind := range Kinds() {
		metrics = append(metrics, kind.Metrics()...)
	}
	return metrics
}

// AllMetrics enumerates every gauge the exporter publishes: per-kind
// stats, derived counts, the cluster info metric and the redfish set.
func AllMetrics() []Metric {
	metrics := StatMetrics()
	metrics = append(metrics, CountMetrics()...)
	metrics = append(metrics, InfoMetrics()...)
	metrics = append(metrics, RedfishMetrics()...)
	metrics = append(metrics, ObjectsS3Metrics()...)
	return metrics
}

// Sanitize replaces the characters that are legal in entity names but
// not in metric names or stable label values. Idempotent.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// ComposeLabel builds the disambiguated child label {parent}_{child}
// used for kinds whose names are only unique within their parent.
func ComposeLabel(parent, child string) string {
	if parent == "" {
		return Sanitize(child)
	}
	return Sanitize(parent) + "_" + Sanitize(child)
}

// SnakeCase converts an upstream payload key to snake_case. Reserved
// keys keep their leading underscore ("$objectType" becomes
// "_object_type") so the exclusion table matches them.
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range s {
		switch {
		case r == '$':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && s[i-1] != '_' && s[i-1] != '$' {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
