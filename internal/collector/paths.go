package collector

import (
	"fmt"

	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
)

// v4 list endpoints.
const (
	pathClusters          = "/api/clustermgmt/v4.0/config/clusters"
	pathHosts             = "/api/clustermgmt/v4.0/config/hosts"
	pathDisks             = "/api/clustermgmt/v4.0/config/disks"
	pathStorageContainers = "/api/clustermgmt/v4.0/config/storage-containers"
	pathVMs               = "/api/vmm/v4.0/ahv/config/vms"

	pathSubnets            = "/api/networking/v4.0/config/subnets"
	pathVPCs               = "/api/networking/v4.0/config/vpcs"
	pathLayer2Stretches    = "/api/networking/v4.0/config/layer2-stretches"
	pathLoadBalancers      = "/api/networking/v4.0/config/load-balancer-sessions"
	pathTrafficMirrors     = "/api/networking/v4.0/config/traffic-mirrors"
	pathVPNConnections     = "/api/networking/v4.0/config/vpn-connections"
	pathBGPSessions        = "/api/networking/v4.0/config/bgp-sessions"
	pathGateways           = "/api/networking/v4.0/config/gateways"
	pathNetworkControllers = "/api/networking/v4.0/config/network-controllers"
	pathRoutingPolicies    = "/api/networking/v4.0/config/routing-policies"
	pathUplinkBonds        = "/api/networking/v4.0/config/uplink-bonds"
	pathVirtualSwitches    = "/api/networking/v4.0/config/virtual-switches"

	pathFileServers       = "/api/files/v4.0/config/file-servers"
	pathUnifiedNamespaces = "/api/files/v4.0/config/unified-namespaces"
	pathObjectStores      = "/api/objects/v4.0/config/object-stores"
	pathVolumeGroups      = "/api/volumes/v4.0/config/volume-groups"
)

// Per-entity stats endpoints. Parent-scoped kinds render the parent
// identifier from the descriptor.
func statsClusterPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/clustermgmt/v4.0/stats/clusters/%s", d.UUID)
}

func statsHostPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/clustermgmt/v4.0/stats/clusters/%s/hosts/%s", d.ParentUUID, d.UUID)
}

func statsDiskPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/clustermgmt/v4.0/stats/disks/%s", d.UUID)
}

func statsContainerPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/clustermgmt/v4.0/stats/storage-containers/%s", d.UUID)
}

func statsVMPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/vmm/v4.0/ahv/stats/vms/%s", d.UUID)
}

func statsVMDiskPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/vmm/v4.0/ahv/stats/vms/%s/disks", d.UUID)
}

func statsLayer2StretchPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/networking/v4.0/stats/layer2-stretches/%s", d.UUID)
}

func statsLoadBalancerPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/networking/v4.0/stats/load-balancer-sessions/%s", d.UUID)
}

func statsTrafficMirrorPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/networking/v4.0/stats/traffic-mirrors/%s", d.UUID)
}

func statsVPCNorthSouthPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/networking/v4.0/stats/vpcs/%s/north-south", d.UUID)
}

func statsVPNConnectionPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/networking/v4.0/stats/vpn-connections/%s", d.UUID)
}

func statsFileServerPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/files/v4.0/stats/file-servers/%s", d.UUID)
}

func statsAntivirusPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/files/v4.0/stats/file-servers/%s/antivirus-servers", d.UUID)
}

func statsMountTargetPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/files/v4.0/stats/file-servers/%s/mount-targets/%s", d.ParentUUID, d.UUID)
}

func statsObjectStorePath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/objects/v4.0/stats/object-stores/%s", d.UUID)
}

func statsVolumeGroupPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/volumes/v4.0/stats/volume-groups/%s", d.UUID)
}

func statsVolumeDiskPath(d prism.Descriptor) string {
	return fmt.Sprintf("/api/volumes/v4.0/stats/volume-groups/%s/disks/%s", d.ParentUUID, d.UUID)
}

func mountTargetsPath(fileServerID string) string {
	return fmt.Sprintf("/api/files/v4.0/config/file-servers/%s/mount-targets", fileServerID)
}

func volumeDisksPath(volumeGroupID string) string {
	return fmt.Sprintf("/api/volumes/v4.0/config/volume-groups/%s/disks", volumeGroupID)
}
