package prism

import "strings"

// Reference points at a parent entity by identifier. Different API
// namespaces disagree on the field name, so both spellings are mapped.
type Reference struct {
	ExtID string `json:"extId"`
	UUID  string `json:"uuid"`
}

// ID returns whichever identifier spelling the upstream populated.
func (r Reference) ID() string {
	if r.ExtID != "" {
		return r.ExtID
	}
	return r.UUID
}

// Cluster is a clustermgmt cluster entity.
type Cluster struct {
	ExtID  string        `json:"extId"`
	Name   string        `json:"name"`
	Config ClusterConfig `json:"config"`
	Nodes  ClusterNodes  `json:"nodes"`
}

// ClusterConfig carries the descriptive cluster attributes used for the
// info metric and for Prism Central detection.
type ClusterConfig struct {
	ClusterFunction []string  `json:"clusterFunction"`
	BuildInfo       BuildInfo `json:"buildInfo"`
	IsLTS           bool      `json:"isLts"`
}

// BuildInfo is the AOS build descriptor.
type BuildInfo struct {
	Version string `json:"version"`
}

// ClusterNodes carries the node inventory summary.
type ClusterNodes struct {
	NumberOfNodes int `json:"numberOfNodes"`
}

// IsPrismCentral reports whether the cluster record is the Prism Central
// instance itself rather than a managed cluster.
func (c Cluster) IsPrismCentral() bool {
	for _, fn := range c.Config.ClusterFunction {
		if fn == "PRISM_CENTRAL" {
			return true
		}
	}
	return false
}

// Host is a clustermgmt host entity.
type Host struct {
	ExtID      string    `json:"extId"`
	HostName   string    `json:"hostName"`
	Cluster    Reference `json:"cluster"`
	NodeSerial string    `json:"nodeSerial"`
	BlockModel string    `json:"blockModel"`
	IPMI       IPMIInfo  `json:"ipmi"`
}

// IPMIInfo carries the BMC address of a host.
type IPMIInfo struct {
	IP IPAddress `json:"ip"`
}

// IPAddress is the nested v4 address representation.
type IPAddress struct {
	IPv4 IPv4Address `json:"ipv4"`
}

// IPv4Address holds a dotted-quad value.
type IPv4Address struct {
	Value string `json:"value"`
}

// Disk is a clustermgmt disk entity.
type Disk struct {
	ExtID        string `json:"extId"`
	SerialNumber string `json:"serialNumber"`
	ClusterExtID string `json:"clusterExtId"`
	NodeExtID    string `json:"nodeExtId"`
	StorageTier  string `json:"storageTier"`
}

// VM is a vmm AHV virtual machine entity.
type VM struct {
	ExtID             string      `json:"extId"`
	Name              string      `json:"name"`
	Cluster           Reference   `json:"cluster"`
	Host              Reference   `json:"host"`
	PowerState        string      `json:"powerState"`
	NumSockets        int         `json:"numSockets"`
	NumCoresPerSocket int         `json:"numCoresPerSocket"`
	MemorySizeBytes   int64       `json:"memorySizeBytes"`
	BootConfig        TypedObject `json:"bootConfig"`
	Disks             []VMDisk    `json:"disks"`
	Nics              []VMNic     `json:"nics"`
	Gpus              []VMGpu     `json:"gpus"`
	GuestTools        GuestTools  `json:"guestTools"`
	ProtectionType    string      `json:"protectionType"`
}

// TypedObject captures only the discriminator of a oneOf payload.
type TypedObject struct {
	ObjectType string `json:"$objectType"`
}

// Is reports whether the discriminator names the given variant.
func (t TypedObject) Is(variant string) bool {
	return strings.Contains(t.ObjectType, variant)
}

// VMDisk is one virtual disk attachment of a VM.
type VMDisk struct {
	BackingInfo TypedObject `json:"backingInfo"`
	DiskAddress DiskAddress `json:"diskAddress"`
}

// DiskAddress carries the bus placement of a virtual disk.
type DiskAddress struct {
	BusType string `json:"busType"`
	Index   int    `json:"index"`
}

// VMNic is one virtual NIC attachment of a VM.
type VMNic struct {
	ExtID string `json:"extId"`
}

// VMGpu is one GPU attachment of a VM.
type VMGpu struct {
	ExtID string `json:"extId"`
}

// GuestTools is the NGT state of a VM.
type GuestTools struct {
	IsInstalled          bool `json:"isInstalled"`
	IsEnabled            bool `json:"isEnabled"`
	IsReachable          bool `json:"isReachable"`
	IsVssSnapshotCapable bool `json:"isVssSnapshotCapable"`
}

// StorageContainer is a clustermgmt storage container entity.
type StorageContainer struct {
	ContainerExtID    string `json:"containerExtId"`
	Name              string `json:"name"`
	ClusterExtID      string `json:"clusterExtId"`
	ClusterName       string `json:"clusterName"`
	ReplicationFactor int    `json:"replicationFactor"`
	IsEncrypted       bool   `json:"isEncrypted"`
}

// Subnet is a networking subnet entity.
type Subnet struct {
	ExtID                string    `json:"extId"`
	Name                 string    `json:"name"`
	SubnetType           string    `json:"subnetType"`
	IsExternal           bool      `json:"isExternal"`
	IsAdvancedNetworking bool      `json:"isAdvancedNetworking"`
	ClusterReference     Reference `json:"clusterReference"`
}

// VolumeGroup is a volumes volume group entity.
type VolumeGroup struct {
	ExtID            string    `json:"extId"`
	Name             string    `json:"name"`
	ClusterReference Reference `json:"clusterReference"`
}

// VolumeDisk is one disk inside a volume group.
type VolumeDisk struct {
	ExtID string `json:"extId"`
	Index int    `json:"index"`
}

// FileServer is a files file server entity.
type FileServer struct {
	ExtID string `json:"extId"`
	Name  string `json:"name"`
}

// MountTarget is a files share or export under a file server.
type MountTarget struct {
	ExtID string `json:"extId"`
	Name  string `json:"name"`
}

// ObjectStore is an objects object store entity.
type ObjectStore struct {
	ExtID string `json:"extId"`
	Name  string `json:"name"`
}

// NamedEntity is the projection shared by networking kinds that only
// contribute an identifier and a display name.
type NamedEntity struct {
	ExtID string `json:"extId"`
	Name  string `json:"name"`
}

// Descriptor is the lightweight projection driving stat sampling. A
// populated parent pair scopes the stats query under the parent entity
// and prefixes the emitted label.
type Descriptor struct {
	Name       string
	UUID       string
	ParentUUID string
	ParentName string
}
