// Package aggregate derives per-parent counts and categorical breakdowns
// by joining independently fetched entity lists in memory. All functions
// are pure: no network I/O, inputs never mutated, and every declared
// count key is present in the result even when its value is zero, since
// the absence of a category is itself signal.
package aggregate

import (
	"strings"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
)

// Counts maps count metric keys to derived values.
type Counts map[string]float64

// VMsInCluster selects the VMs referencing the cluster identifier.
func VMsInCluster(vms []prism.VM, clusterID string) []prism.VM {
	var out []prism.VM
	for _, vm := range vms {
		if vm.Cluster.ID() == clusterID {
			out = append(out, vm)
		}
	}
	return out
}

// VMsOnHost selects the powered-on VMs placed on the host. Powered-off
// VMs have no host placement worth counting.
func VMsOnHost(vms []prism.VM, hostID string) []prism.VM {
	var out []prism.VM
	for _, vm := range vms {
		if vm.Host.ID() == hostID && vm.PowerState == "ON" {
			out = append(out, vm)
		}
	}
	return out
}

// DisksInCluster selects the physical disks referencing the cluster.
func DisksInCluster(disks []prism.Disk, clusterID string) []prism.Disk {
	var out []prism.Disk
	for _, disk := range disks {
		if disk.ClusterExtID == clusterID {
			out = append(out, disk)
		}
	}
	return out
}

// DisksOnNode selects the physical disks attached to the node.
func DisksOnNode(disks []prism.Disk, nodeID string) []prism.Disk {
	var out []prism.Disk
	for _, disk := range disks {
		if disk.NodeExtID == nodeID {
			out = append(out, disk)
		}
	}
	return out
}

// ContainersInCluster selects storage containers referencing the cluster.
func ContainersInCluster(containers []prism.StorageContainer, clusterID string) []prism.StorageContainer {
	var out []prism.StorageContainer
	for _, container := range containers {
		if container.ClusterExtID == clusterID {
			out = append(out, container)
		}
	}
	return out
}

// SubnetsInCluster selects subnets referencing the cluster.
func SubnetsInCluster(subnets []prism.Subnet, clusterID string) []prism.Subnet {
	var out []prism.Subnet
	for _, subnet := range subnets {
		if subnet.ClusterReference.ID() == clusterID {
			out = append(out, subnet)
		}
	}
	return out
}

// VolumeGroupsInCluster selects volume groups referencing the cluster.
func VolumeGroupsInCluster(groups []prism.VolumeGroup, clusterID string) []prism.VolumeGroup {
	var out []prism.VolumeGroup
	for _, group := range groups {
		if group.ClusterReference.ID() == clusterID {
			out = append(out, group)
		}
	}
	return out
}

// VMCounts computes the full VM count breakdown for one parent scope.
func VMCounts(vms []prism.VM) Counts {
	counts := zeroCounts(catalog.VMCountKeys())

	counts[catalog.CountVM] = float64(len(vms))
	for _, vm := range vms {
		switch vm.PowerState {
		case "ON":
			counts[catalog.CountVMOn]++
		case "OFF":
			counts[catalog.CountVMOff]++
		}

		if vm.BootConfig.Is("LegacyBoot") {
			counts[catalog.CountVMBootLegacy]++
		} else if vm.BootConfig.Is("UefiBoot") {
			counts[catalog.CountVMBootUEFI]++
		}

		counts[catalog.CountVMGPUs] += float64(len(vm.Gpus))

		switch vm.ProtectionType {
		case "UNPROTECTED":
			counts[catalog.CountVMUnprotected]++
		case "PD_PROTECTED":
			counts[catalog.CountVMPDProtected]++
		case "RULE_PROTECTED":
			counts[catalog.CountVMRuleProtected]++
		}

		counts[catalog.CountVCPU] += float64(vm.NumSockets * vm.NumCoresPerSocket)
		counts[catalog.CountVRAMMiB] += float64(vm.MemorySizeBytes) / (1 << 20)

		for _, disk := range vm.Disks {
			if !disk.BackingInfo.Is("VmDisk") {
				continue // CD-ROMs and volume group attachments are not vdisks.
			}
			counts[catalog.CountVDisk]++
			switch strings.ToUpper(disk.DiskAddress.BusType) {
			case "IDE":
				counts[catalog.CountVDiskIDE]++
			case "SATA":
				counts[catalog.CountVDiskSATA]++
			case "SCSI":
				counts[catalog.CountVDiskSCSI]++
			}
		}

		counts[catalog.CountVNic] += float64(len(vm.Nics))

		if vm.GuestTools.IsInstalled {
			counts[catalog.CountNGTInstalled]++
		}
		if vm.GuestTools.IsEnabled {
			counts[catalog.CountNGTEnabled]++
		}
		if vm.GuestTools.IsReachable {
			counts[catalog.CountNGTReachable]++
		}
		if vm.GuestTools.IsVssSnapshotCapable {
			counts[catalog.CountNGTVSSSnapshotCapable]++
		}
	}
	return counts
}

// DiskTierCounts computes the physical disk tier breakdown.
func DiskTierCounts(disks []prism.Disk) Counts {
	counts := zeroCounts(catalog.DiskTierKeys())

	for _, disk := range disks {
		switch strings.ToUpper(catalog.Sanitize(disk.StorageTier)) {
		case "SSD_PCIE":
			counts[catalog.CountDiskTierSSDPCIe]++
		case "SSD_SATA":
			counts[catalog.CountDiskTierSSDSATA]++
		case "DAS_SATA":
			counts[catalog.CountDiskTierDASSATA]++
		case "SSD_MEM_NVME":
			counts[catalog.CountDiskTierSSDMemNVMe]++
		}
	}
	return counts
}

// ContainerCounts computes the storage container breakdown.
func ContainerCounts(containers []prism.StorageContainer) Counts {
	counts := zeroCounts(catalog.StorageContainerCountKeys())

	counts[catalog.CountStorageContainer] = float64(len(containers))
	for _, container := range containers {
		switch container.ReplicationFactor {
		case 1:
			counts[catalog.CountStorageContainerRF1]++
		case 2:
			counts[catalog.CountStorageContainerRF2]++
		case 3:
			counts[catalog.CountStorageContainerRF3]++
		}
		if container.IsEncrypted {
			counts[catalog.CountStorageContainerEncrypted]++
		}
	}
	return counts
}

// SubnetCounts computes the subnet type breakdown.
func SubnetCounts(subnets []prism.Subnet) Counts {
	counts := zeroCounts(catalog.SubnetCountKeys())

	for _, subnet := range subnets {
		switch strings.ToUpper(subnet.SubnetType) {
		case "VLAN":
			counts[catalog.CountSubnetVLAN]++
			if subnet.IsAdvancedNetworking {
				counts[catalog.CountSubnetVLANAdvanced]++
			} else {
				counts[catalog.CountSubnetVLANBasic]++
			}
		case "OVERLAY":
			counts[catalog.CountSubnetOverlay]++
		}
		if subnet.IsExternal {
			counts[catalog.CountSubnetExternal]++
		}
	}
	return counts
}

func zeroCounts(keys []string) Counts {
	counts := make(Counts, len(keys))
	for _, key := range keys {
		counts[key] = 0
	}
	return counts
}
