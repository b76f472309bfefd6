package catalog

// Label dimensions used by the derived metrics.
const (
	LabelCluster      = "cluster"
	LabelHost         = "host"
	LabelPrismCentral = "prism_central"
	LabelNode         = "node"
	LabelIPMI         = "ipmi"
)

// VM count keys, computed per cluster and per host from the VM list.
// Each gauge carries both parent dimensions; the one that does not apply
// is left empty.
const (
	CountVM                    = "nutanix_count_vm"
	CountVMOn                  = "nutanix_count_vm_on"
	CountVMOff                 = "nutanix_count_vm_off"
	CountVMBootLegacy          = "nutanix_count_vm_boot_legacy"
	CountVMBootUEFI            = "nutanix_count_vm_boot_uefi"
	CountVMGPUs                = "nutanix_count_vm_gpus"
	CountVMUnprotected         = "nutanix_count_vm_unprotected"
	CountVMPDProtected         = "nutanix_count_vm_pd_protected"
	CountVMRuleProtected       = "nutanix_count_vm_rule_protected"
	CountVCPU                  = "nutanix_count_vcpu"
	CountVRAMMiB               = "nutanix_count_vram_mib"
	CountVDisk                 = "nutanix_count_vdisk"
	CountVDiskIDE              = "nutanix_count_vdisk_ide"
	CountVDiskSATA             = "nutanix_count_vdisk_sata"
	CountVDiskSCSI             = "nutanix_count_vdisk_scsi"
	CountVNic                  = "nutanix_count_vnic"
	CountNGTInstalled          = "nutanix_count_ngt_installed"
	CountNGTEnabled            = "nutanix_count_ngt_enabled"
	CountNGTReachable          = "nutanix_count_ngt_reachable"
	CountNGTVSSSnapshotCapable = "nutanix_count_ngt_vss_snapshot_capable"
)

// Physical disk tier counts, computed per cluster and per host.
const (
	CountDiskTierSSDPCIe    = "nutanix_count_disk_tier_ssd_pcie"
	CountDiskTierSSDSATA    = "nutanix_count_disk_tier_ssd_sata"
	CountDiskTierDASSATA    = "nutanix_count_disk_tier_das_sata"
	CountDiskTierSSDMemNVMe = "nutanix_count_disk_tier_ssd_mem_nvme"
)

// Storage container counts per cluster.
const (
	CountStorageContainer          = "nutanix_count_storage_container"
	CountStorageContainerRF1       = "nutanix_count_storage_container_rf1"
	CountStorageContainerRF2       = "nutanix_count_storage_container_rf2"
	CountStorageContainerRF3       = "nutanix_count_storage_container_rf3"
	CountStorageContainerEncrypted = "nutanix_count_storage_container_encrypted"
)

// Subnet counts per cluster.
const (
	CountSubnetVLAN         = "nutanix_count_subnet_vlan"
	CountSubnetOverlay      = "nutanix_count_subnet_overlay"
	CountSubnetExternal     = "nutanix_count_subnet_external"
	CountSubnetVLANBasic    = "nutanix_count_subnet_vlan_basic"
	CountSubnetVLANAdvanced = "nutanix_count_subnet_vlan_advanced"
)

// Volume group count per cluster.
const CountVolumeGroup = "nutanix_count_volume_group"

// Prism Central singleton counts, labeled with the PC hostname.
const (
	CountCluster               = "nutanix_count_cluster"
	CountVPC                   = "nutanix_count_vpc"
	CountBGPSession            = "nutanix_count_bgp_session"
	CountGateway               = "nutanix_count_gateway"
	CountLayer2Stretch         = "nutanix_count_layer2_stretch"
	CountLoadBalancerSession   = "nutanix_count_load_balancer_session"
	CountNetworkController     = "nutanix_count_network_controller"
	CountRoutingPolicy         = "nutanix_count_routing_policy"
	CountTrafficMirror         = "nutanix_count_traffic_mirror"
	CountUplinkBond            = "nutanix_count_uplink_bond"
	CountVirtualSwitch         = "nutanix_count_virtual_switch"
	CountVPNConnection         = "nutanix_count_vpn_connection"
	CountFilesServer           = "nutanix_count_files_server"
	CountFilesUnifiedNamespace = "nutanix_count_files_unified_namespace"
	CountObjectsObjectStores   = "nutanix_count_objects_object_stores"
)

// NCM Self-Service counts, labeled with the PC hostname.
const (
	CountSSPAppsRunning      = "nutanix_count_ssp_apps_running"
	CountSSPAppsProvisioning = "nutanix_count_ssp_apps_provisioning"
	CountSSPAppsDeleting     = "nutanix_count_ssp_apps_deleting"
	CountSSPAppsError        = "nutanix_count_ssp_apps_error"
	CountSSPBlueprints       = "nutanix_count_ssp_blueprints"
	CountSSPRunbooks         = "nutanix_count_ssp_runbooks"
	CountSSPProjects         = "nutanix_count_ssp_projects"
	CountSSPMarketplaceItems = "nutanix_count_ssp_marketplace_items"
)

// ClusterInfoMetric is the descriptive info gauge, always set to 1.
const ClusterInfoMetric = "nutanix_cluster"

// ClusterInfoLabels are the label dimensions of the info gauge.
var ClusterInfoLabels = []string{"name", "ext_id", "version", "is_lts", "num_nodes"}

// Redfish power and thermal keys, labeled node and ipmi.
const (
	PowerConsumedWatts    = "nutanix_power_consumed_watts"
	PowerMinConsumedWatts = "nutanix_power_min_consumed_watts"
	PowerMaxConsumedWatts = "nutanix_power_max_consumed_watts"
	PowerAvgConsumedWatts = "nutanix_power_avg_consumed_watts"
	TempCPUCelsius        = "nutanix_temp_cpu_celsius"
	TempPCHCelsius        = "nutanix_temp_pch_celsius"
	TempSystemCelsius     = "nutanix_temp_system_celsius"
	TempPeripheralCelsius = "nutanix_temp_peripheral_celsius"
	TempInletCelsius      = "nutanix_temp_inlet_celsius"
)

// Objects S3 surface keys.
const (
	ObjectsS3BucketCount   = "nutanix_objects_s3_bucket_count"
	ObjectsS3BucketCreated = "nutanix_objects_s3_bucket_created_timestamp_seconds"
)

// VMCountKeys lists every per-parent VM count key in a fixed order, so
// aggregation emits zero values for absent categories instead of
// omitting the series.
func VMCountKeys() []string {
	return []string{
		CountVM, CountVMOn, CountVMOff,
		CountVMBootLegacy, CountVMBootUEFI,
		CountVMGPUs,
		CountVMUnprotected, CountVMPDProtected, CountVMRuleProtected,
		CountVCPU, CountVRAMMiB,
		CountVDisk, CountVDiskIDE, CountVDiskSATA, CountVDiskSCSI,
		CountVNic,
		CountNGTInstalled, CountNGTEnabled, CountNGTReachable, CountNGTVSSSnapshotCapable,
	}
}

// DiskTierKeys lists the disk tier count keys.
func DiskTierKeys() []string {
	return []string{
		CountDiskTierSSDPCIe, CountDiskTierSSDSATA, CountDiskTierDASSATA, CountDiskTierSSDMemNVMe,
	}
}

// StorageContainerCountKeys lists the per-cluster container count keys.
func StorageContainerCountKeys() []string {
	return []string{
		CountStorageContainer,
		CountStorageContainerRF1, CountStorageContainerRF2, CountStorageContainerRF3,
		CountStorageContainerEncrypted,
	}
}

// SubnetCountKeys lists the per-cluster subnet count keys.
func SubnetCountKeys() []string {
	return []string{
		CountSubnetVLAN, CountSubnetOverlay, CountSubnetExternal,
		CountSubnetVLANBasic, CountSubnetVLANAdvanced,
	}
}

// PCCountKeys lists the Prism Central singleton count keys.
func PCCountKeys() []string {
	return []string{
		CountCluster, CountVPC, CountBGPSession, CountGateway,
		CountLayer2Stretch, CountLoadBalancerSession, CountNetworkController,
		CountRoutingPolicy, CountTrafficMirror, CountUplinkBond,
		CountVirtualSwitch, CountVPNConnection,
		CountFilesServer, CountFilesUnifiedNamespace, CountObjectsObjectStores,
	}
}

// SSPCountKeys lists the NCM Self-Service count keys.
func SSPCountKeys() []string {
	return []string{
		CountSSPAppsRunning, CountSSPAppsProvisioning, CountSSPAppsDeleting, CountSSPAppsError,
		CountSSPBlueprints, CountSSPRunbooks, CountSSPProjects, CountSSPMarketplaceItems,
	}
}

// CountMetrics enumerates every derived count gauge.
func CountMetrics() []Metric {
	var metrics []Metric

	parentLabels := []string{LabelCluster, LabelHost}
	for _, key := range VMCountKeys() {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: parentLabels})
	}
	for _, key := range DiskTierKeys() {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: parentLabels})
	}

	clusterOnly := []string{LabelCluster}
	for _, key := range StorageContainerCountKeys() {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: clusterOnly})
	}
	for _, key := range SubnetCountKeys() {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: clusterOnly})
	}
	metrics = append(metrics, Metric{Key: CountVolumeGroup, Help: countHelp(CountVolumeGroup), Labels: clusterOnly})

	pcOnly := []string{LabelPrismCentral}
	for _, key := range PCCountKeys() {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: pcOnly})
	}
	for _, key := range SSPCountKeys() {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: pcOnly})
	}

	return metrics
}

// InfoMetrics enumerates the descriptive info gauges.
func InfoMetrics() []Metric {
	return []Metric{
		{Key: ClusterInfoMetric, Help: "descriptive cluster attributes, value is always 1", Labels: ClusterInfoLabels},
	}
}

// RedfishMetrics enumerates the BMC power and thermal gauges.
func RedfishMetrics() []Metric {
	keys := []string{
		PowerConsumedWatts, PowerMinConsumedWatts, PowerMaxConsumedWatts, PowerAvgConsumedWatts,
		TempCPUCelsius, TempPCHCelsius, TempSystemCelsius, TempPeripheralCelsius, TempInletCelsius,
	}

	metrics := make([]Metric, 0, len(keys))
	for _, key := range keys {
		metrics = append(metrics, Metric{Key: key, Help: countHelp(key), Labels: []string{LabelNode, LabelIPMI}})
	}
	return metrics
}

// ObjectsS3Metrics enumerates the S3-surface bucket gauges.
func ObjectsS3Metrics() []Metric {
	return []Metric{
		{Key: ObjectsS3BucketCount, Help: "number of buckets visible on the S3 endpoint", Labels: []string{"endpoint"}},
		{Key: ObjectsS3BucketCreated, Help: "bucket creation time as a unix timestamp", Labels: []string{"endpoint", "bucket"}},
	}
}

func countHelp(key string) string {
	const prefix = "nutanix_"
	name := key
	if len(name) > len(prefix) {
		name = name[len(prefix):]
	}
	return "derived " + name + " value"
}
