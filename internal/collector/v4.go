package collector

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nutanix-exporter/nutanix-exporter/internal/aggregate"
	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/internal/objects"
	"github.com/nutanix-exporter/nutanix-exporter/internal/prism"
	"github.com/nutanix-exporter/nutanix-exporter/internal/stats"
)

// cycleData holds the entity lists fetched once per cycle and reused by
// every aggregation that needs them.
type cycleData struct {
	clusters     []prism.Cluster
	hosts        []prism.Host
	disks        []prism.Disk
	vms          []prism.VM
	containers   []prism.StorageContainer
	subnets      []prism.Subnet
	volumeGroups []prism.VolumeGroup

	// managed excludes the Prism Central record itself.
	managed     []prism.Cluster
	clusterName map[string]string

	// Per-list fetch outcomes. Aggregations only consume lists that
	// enumerated successfully, so a kind that failed mid-cycle keeps
	// its previous gauge values instead of collapsing to zero.
	vmsOK          bool
	disksOK        bool
	containersOK   bool
	subnetsOK      bool
	volumeGroupsOK bool
}

// collectV4 runs one full v4 collection cycle. A kind that fails to
// enumerate is skipped and fails the cycle; every other kind still
// publishes.
func (c *Collector) collectV4(ctx context.Context) bool {
	success := true
	data := &cycleData{clusterName: map[string]string{}}

	clusters, err := prism.FetchAll[prism.Cluster](ctx, c.client, pathClusters, nil,
		prism.DefaultPageSize, c.pageFailure("clusters"))
	if err != nil {
		c.logger.Error("cluster enumeration failed", slog.String("error", err.Error()))
		c.status.RecordKindFailure("clusters")
		return false
	}
	data.clusters = clusters
	for _, cl := range clusters {
		data.clusterName[cl.ExtID] = cl.Name
		if !cl.IsPrismCentral() {
			data.managed = append(data.managed, cl)
		}
	}

	fetch := func(enabled bool, kind string, load func(ctx context.Context) error) {
		if !enabled {
			return
		}
		if err := load(ctx); err != nil {
			c.logger.Error("entity enumeration failed",
				slog.String("kind", kind), slog.String("error", err.Error()))
			c.status.RecordKindFailure(kind)
			success = false
		}
	}

	fetch(true, "hosts", func(ctx context.Context) error {
		data.hosts, err = prism.FetchAll[prism.Host](ctx, c.client, pathHosts, nil,
			prism.DefaultPageSize, c.pageFailure("hosts"))
		return err
	})
	fetch(true, "vms", func(ctx context.Context) error {
		data.vms, err = prism.FetchAll[prism.VM](ctx, c.client, pathVMs, nil,
			prism.DefaultPageSize, c.pageFailure("vms"))
		data.vmsOK = err == nil
		return err
	})
	fetch(c.cfg.Collectors.Disks, "disks", func(ctx context.Context) error {
		data.disks, err = prism.FetchAll[prism.Disk](ctx, c.client, pathDisks, nil,
			prism.DefaultPageSize, c.pageFailure("disks"))
		data.disksOK = err == nil
		return err
	})
	fetch(c.cfg.Collectors.StorageContainers, "storage_containers", func(ctx context.Context) error {
		data.containers, err = prism.FetchAll[prism.StorageContainer](ctx, c.client, pathStorageContainers, nil,
			prism.DefaultPageSize, c.pageFailure("storage_containers"))
		data.containersOK = err == nil
		return err
	})
	fetch(c.cfg.Collectors.Networking, "subnets", func(ctx context.Context) error {
		data.subnets, err = prism.FetchAll[prism.Subnet](ctx, c.client, pathSubnets, nil,
			prism.DefaultPageSize, c.pageFailure("subnets"))
		data.subnetsOK = err == nil
		return err
	})
	fetch(c.cfg.Collectors.Volumes, "volume_groups", func(ctx context.Context) error {
		data.volumeGroups, err = prism.FetchAll[prism.VolumeGroup](ctx, c.client, pathVolumeGroups, nil,
			prism.DefaultPageSize, c.pageFailure("volume_groups"))
		data.volumeGroupsOK = err == nil
		return err
	})

	if c.cfg.Collectors.Clusters {
		c.collectClusters(ctx, data)
	}
	if c.cfg.Collectors.Hosts {
		c.collectHosts(ctx, data)
	}
	if c.cfg.Collectors.Disks {
		c.collectDisks(ctx, data)
	}
	if c.cfg.Collectors.StorageContainers {
		c.collectContainers(ctx, data)
	}
	c.collectVMs(ctx, data)
	if c.cfg.Collectors.Networking {
		success = c.track("networking", c.collectNetworking(ctx, data)) && success
	}
	if c.cfg.Collectors.Files {
		success = c.track("files", c.collectFiles(ctx)) && success
	}
	if c.cfg.Collectors.Objects {
		success = c.track("objects", c.collectObjects(ctx)) && success
	}
	if c.cfg.Collectors.Volumes {
		success = c.track("volumes", c.collectVolumes(ctx, data)) && success
	}
	if c.cfg.Collectors.PrismCentral {
		success = c.track("pc_counts", c.collectPCCounts(ctx, data)) && success
	}
	if c.cfg.Collectors.NCMSSP {
		success = c.track("ssp_counts", c.collectSSPCounts(ctx)) && success
	}

	return success
}

// track folds a sub-collector outcome into the cycle status record.
func (c *Collector) track(kind string, ok bool) bool {
	if !ok {
		c.status.RecordKindFailure(kind)
	}
	return ok
}

func (c *Collector) collectClusters(ctx context.Context, data *cycleData) {
	descriptors := make([]prism.Descriptor, 0, len(data.managed))
	for _, cl := range data.managed {
		descriptors = append(descriptors, prism.Descriptor{Name: cl.Name, UUID: cl.ExtID})

		if err := c.metrics.SetClusterInfo(prometheus.Labels{
			"name":      catalog.Sanitize(cl.Name),
			"ext_id":    cl.ExtID,
			"version":   cl.Config.BuildInfo.Version,
			"is_lts":    strconv.FormatBool(cl.Config.IsLTS),
			"num_nodes": strconv.Itoa(cl.Nodes.NumberOfNodes),
		}); err != nil {
			c.logger.Error("failed to publish cluster info", slog.String("error", err.Error()))
		}
	}

	sampler := stats.NewSampler(c.client, catalog.Cluster, stats.ShapeSeriesMap, statsClusterPath, c.logger)
	c.publish(stats.Collect(ctx, "clusters", descriptors, sampler.Sample, c.metrics, c.logger))

	for _, cl := range data.managed {
		labels := prometheus.Labels{catalog.LabelCluster: catalog.Sanitize(cl.Name)}
		if data.vmsOK {
			c.publishCounts(aggregate.VMCounts(aggregate.VMsInCluster(data.vms, cl.ExtID)), labels)
		}
		if data.disksOK {
			c.publishCounts(aggregate.DiskTierCounts(aggregate.DisksInCluster(data.disks, cl.ExtID)), labels)
		}
		if data.containersOK {
			c.publishCounts(aggregate.ContainerCounts(aggregate.ContainersInCluster(data.containers, cl.ExtID)), labels)
		}
		if data.subnetsOK {
			c.publishCounts(aggregate.SubnetCounts(aggregate.SubnetsInCluster(data.subnets, cl.ExtID)), labels)
		}
		if data.volumeGroupsOK {
			groups := aggregate.VolumeGroupsInCluster(data.volumeGroups, cl.ExtID)
			c.publishCounts(aggregate.Counts{catalog.CountVolumeGroup: float64(len(groups))}, labels)
		}
	}
}

func (c *Collector) collectHosts(ctx context.Context, data *cycleData) {
	descriptors := make([]prism.Descriptor, 0, len(data.hosts))
	for _, h := range data.hosts {
		descriptors = append(descriptors, prism.Descriptor{
			Name:       h.HostName,
			UUID:       h.ExtID,
			ParentUUID: h.Cluster.ID(),
			ParentName: data.clusterName[h.Cluster.ID()],
		})
	}

	sampler := stats.NewSampler(c.client, catalog.Host, stats.ShapeSeriesMap, statsHostPath, c.logger)
	c.publish(stats.Collect(ctx, "hosts", descriptors, sampler.Sample, c.metrics, c.logger))

	// Host-scoped counts consider powered-on VMs only.
	for _, h := range data.hosts {
		labels := prometheus.Labels{catalog.LabelHost: catalog.Sanitize(h.HostName)}
		if data.vmsOK {
			c.publishCounts(aggregate.VMCounts(aggregate.VMsOnHost(data.vms, h.ExtID)), labels)
		}
		if data.disksOK {
			c.publishCounts(aggregate.DiskTierCounts(aggregate.DisksOnNode(data.disks, h.ExtID)), labels)
		}
	}
}

func (c *Collector) collectDisks(ctx context.Context, data *cycleData) {
	descriptors := make([]prism.Descriptor, 0, len(data.disks))
	for _, d := range data.disks {
		descriptors = append(descriptors, prism.Descriptor{
			Name:       d.SerialNumber,
			UUID:       d.ExtID,
			ParentUUID: d.ClusterExtID,
			ParentName: data.clusterName[d.ClusterExtID],
		})
	}

	sampler := stats.NewSampler(c.client, catalog.Disk, stats.ShapeSeriesMap, statsDiskPath, c.logger)
	c.publish(stats.Collect(ctx, "disks", descriptors, sampler.Sample, c.metrics, c.logger))
}

func (c *Collector) collectContainers(ctx context.Context, data *cycleData) {
	descriptors := make([]prism.Descriptor, 0, len(data.containers))
	for _, ctr := range data.containers {
		descriptors = append(descriptors, prism.Descriptor{
			Name:       ctr.Name,
			UUID:       ctr.ContainerExtID,
			ParentUUID: ctr.ClusterExtID,
			ParentName: ctr.ClusterName,
		})
	}

	sampler := stats.NewSampler(c.client, catalog.StorageContainer, stats.ShapeSeriesMap, statsContainerPath, c.logger)
	c.publish(stats.Collect(ctx, "storage_containers", descriptors, sampler.Sample, c.metrics, c.logger))
}

func (c *Collector) collectVMs(ctx context.Context, data *cycleData) {
	all, names := c.cfg.Exporter.SampledVMs()
	if !all && len(names) == 0 {
		return
	}

	var descriptors []prism.Descriptor
	for _, vm := range data.vms {
		if !all && !names[vm.Name] {
			continue
		}
		descriptors = append(descriptors, prism.Descriptor{Name: vm.Name, UUID: vm.ExtID})
	}

	sampler := stats.NewSampler(c.client, catalog.VM, stats.ShapeSeriesMap, statsVMPath, c.logger)
	c.publish(stats.Collect(ctx, "vms", descriptors, sampler.Sample, c.metrics, c.logger))

	diskSampler := stats.NewSampler(c.client, catalog.VMDisk, stats.ShapeTupleList, statsVMDiskPath, c.logger)
	c.publish(stats.Collect(ctx, "vm_disks", descriptors, diskSampler.Sample, c.metrics, c.logger))
}

func (c *Collector) collectNetworking(ctx context.Context, data *cycleData) bool {
	success := true

	kinds := []struct {
		name       string
		configPath string
		kind       catalog.Kind
		shape      stats.Shape
		path       stats.PathFunc
	}{
		{"layer2_stretches", pathLayer2Stretches, catalog.Layer2Stretch, stats.ShapeScalarMap, statsLayer2StretchPath},
		{"load_balancer_sessions", pathLoadBalancers, catalog.LoadBalancerSession, stats.ShapeScalarMap, statsLoadBalancerPath},
		{"traffic_mirrors", pathTrafficMirrors, catalog.TrafficMirror, stats.ShapeScalarMap, statsTrafficMirrorPath},
		{"vpcs", pathVPCs, catalog.VPCNorthSouth, stats.ShapeSeriesMap, statsVPCNorthSouthPath},
		{"vpn_connections", pathVPNConnections, catalog.VPNConnection, stats.ShapeScalarMap, statsVPNConnectionPath},
	}

	for _, k := range kinds {
		entities, err := prism.FetchAll[prism.NamedEntity](ctx, c.client, k.configPath, nil,
			prism.DefaultPageSize, c.pageFailure(k.name))
		if err != nil {
			c.logger.Error("entity enumeration failed",
				slog.String("kind", k.name), slog.String("error", err.Error()))
			success = false
			continue
		}

		descriptors := make([]prism.Descriptor, 0, len(entities))
		for _, e := range entities {
			descriptors = append(descriptors, prism.Descriptor{Name: e.Name, UUID: e.ExtID})
		}

		sampler := stats.NewSampler(c.client, k.kind, k.shape, k.path, c.logger)
		c.publish(stats.Collect(ctx, k.name, descriptors, sampler.Sample, c.metrics, c.logger))
	}

	return success
}

func (c *Collector) collectFiles(ctx context.Context) bool {
	servers, err := prism.FetchAll[prism.FileServer](ctx, c.client, pathFileServers, nil,
		prism.DefaultPageSize, c.pageFailure("file_servers"))
	if err != nil {
		c.logger.Error("file server enumeration failed", slog.String("error", err.Error()))
		return false
	}

	serverDescs := make([]prism.Descriptor, 0, len(servers))
	for _, fs := range servers {
		serverDescs = append(serverDescs, prism.Descriptor{Name: fs.Name, UUID: fs.ExtID})
	}

	filesSampler := func(kind catalog.Kind, path stats.PathFunc) *stats.Sampler {
		return stats.NewSampler(c.client, kind, stats.ShapeSeriesMap, path, c.logger).
			WithWindow(stats.FilesWindow, stats.FilesSamplingInterval)
	}

	c.publish(stats.Collect(ctx, "file_servers", serverDescs,
		filesSampler(catalog.FileServer, statsFileServerPath).Sample, c.metrics, c.logger))
	c.publish(stats.Collect(ctx, "antivirus", serverDescs,
		filesSampler(catalog.Antivirus, statsAntivirusPath).Sample, c.metrics, c.logger))

	success := true
	var mountDescs []prism.Descriptor
	for _, fs := range servers {
		targets, err := prism.FetchAll[prism.MountTarget](ctx, c.client, mountTargetsPath(fs.ExtID), nil,
			prism.DefaultPageSize, c.pageFailure("mount_targets"))
		if err != nil {
			c.logger.Error("mount target enumeration failed",
				slog.String("file_server", fs.Name), slog.String("error", err.Error()))
			success = false
			continue
		}
		for _, mt := range targets {
			mountDescs = append(mountDescs, prism.Descriptor{
				Name:       mt.Name,
				UUID:       mt.ExtID,
				ParentUUID: fs.ExtID,
				ParentName: fs.Name,
			})
		}
	}

	c.publish(stats.Collect(ctx, "mount_targets", mountDescs,
		filesSampler(catalog.MountTarget, statsMountTargetPath).Sample, c.metrics, c.logger))

	return success
}

func (c *Collector) collectObjects(ctx context.Context) bool {
	stores, err := prism.FetchAll[prism.ObjectStore](ctx, c.client, pathObjectStores, nil,
		prism.DefaultPageSize, c.pageFailure("object_stores"))
	if err != nil {
		c.logger.Error("object store enumeration failed", slog.String("error", err.Error()))
		return false
	}

	descriptors := make([]prism.Descriptor, 0, len(stores))
	for _, store := range stores {
		descriptors = append(descriptors, prism.Descriptor{Name: store.Name, UUID: store.ExtID})
	}

	sampler := stats.NewSampler(c.client, catalog.ObjectStore, stats.ShapeSeriesMap, statsObjectStorePath, c.logger)
	c.publish(stats.Collect(ctx, "object_stores", descriptors, sampler.Sample, c.metrics, c.logger))

	return c.collectObjectsS3(ctx)
}

// collectObjectsS3 lists buckets on the S3-compatible endpoint when one
// is configured. The client is built lazily and reused across cycles.
func (c *Collector) collectObjectsS3(ctx context.Context) bool {
	if c.cfg.Objects.S3Endpoint == "" {
		return true
	}

	if c.objects == nil {
		client, err := objects.NewClient(ctx, c.cfg.Objects, c.logger)
		if err != nil {
			c.logger.Error("objects S3 client setup failed", slog.String("error", err.Error()))
			return false
		}
		c.objects = client
	}

	inventory, err := c.objects.ListBuckets(ctx)
	if err != nil {
		c.logger.Error("bucket listing failed", slog.String("error", err.Error()))
		c.metrics.RecordTaskFailure("objects_s3")
		return false
	}

	endpoint := c.cfg.Objects.S3Endpoint
	if err := c.metrics.SetLabeled(catalog.ObjectsS3BucketCount,
		prometheus.Labels{"endpoint": endpoint}, inventory.BucketCount); err != nil {
		c.logger.Error("failed to publish bucket count", slog.String("error", err.Error()))
	}
	for _, bucket := range inventory.Buckets {
		if err := c.metrics.SetLabeled(catalog.ObjectsS3BucketCreated,
			prometheus.Labels{"endpoint": endpoint, "bucket": bucket.Name}, bucket.Created); err != nil {
			c.logger.Error("failed to publish bucket age", slog.String("error", err.Error()))
		}
	}
	return true
}

func (c *Collector) collectVolumes(ctx context.Context, data *cycleData) bool {
	descriptors := make([]prism.Descriptor, 0, len(data.volumeGroups))
	for _, vg := range data.volumeGroups {
		descriptors = append(descriptors, prism.Descriptor{Name: vg.Name, UUID: vg.ExtID})
	}

	sampler := stats.NewSampler(c.client, catalog.VolumeGroup, stats.ShapeSeriesMap, statsVolumeGroupPath, c.logger)
	c.publish(stats.Collect(ctx, "volume_groups", descriptors, sampler.Sample, c.metrics, c.logger))

	success := true
	var diskDescs []prism.Descriptor
	for _, vg := range data.volumeGroups {
		disks, err := prism.FetchAll[prism.VolumeDisk](ctx, c.client, volumeDisksPath(vg.ExtID), nil,
			prism.DefaultPageSize, c.pageFailure("volume_disks"))
		if err != nil {
			c.logger.Error("volume disk enumeration failed",
				slog.String("volume_group", vg.Name), slog.String("error", err.Error()))
			success = false
			continue
		}
		for _, vd := range disks {
			diskDescs = append(diskDescs, prism.Descriptor{
				Name:       strconv.Itoa(vd.Index),
				UUID:       vd.ExtID,
				ParentUUID: vg.ExtID,
				ParentName: vg.Name,
			})
		}
	}

	diskSampler := stats.NewSampler(c.client, catalog.VolumeDisk, stats.ShapeSeriesMap, statsVolumeDiskPath, c.logger)
	c.publish(stats.Collect(ctx, "volume_disks", diskDescs, diskSampler.Sample, c.metrics, c.logger))

	return success
}

// collectPCCounts publishes the Prism Central inventory counts from
// cheap count probes; no entities are enumerated.
func (c *Collector) collectPCCounts(ctx context.Context, data *cycleData) bool {
	success := true
	labels := prometheus.Labels{catalog.LabelPrismCentral: c.cfg.Prism.Host}

	c.publishCounts(aggregate.Counts{catalog.CountCluster: float64(len(data.managed))}, labels)

	probes := []struct {
		key  string
		path string
	}{
		{catalog.CountVPC, pathVPCs},
		{catalog.CountBGPSession, pathBGPSessions},
		{catalog.CountGateway, pathGateways},
		{catalog.CountLayer2Stretch, pathLayer2Stretches},
		{catalog.CountLoadBalancerSession, pathLoadBalancers},
		{catalog.CountNetworkController, pathNetworkControllers},
		{catalog.CountRoutingPolicy, pathRoutingPolicies},
		{catalog.CountTrafficMirror, pathTrafficMirrors},
		{catalog.CountUplinkBond, pathUplinkBonds},
		{catalog.CountVirtualSwitch, pathVirtualSwitches},
		{catalog.CountVPNConnection, pathVPNConnections},
		{catalog.CountFilesServer, pathFileServers},
		{catalog.CountFilesUnifiedNamespace, pathUnifiedNamespaces},
		{catalog.CountObjectsObjectStores, pathObjectStores},
	}
	for _, probe := range probes {
		total, err := prism.Count(ctx, c.client, probe.path, nil)
		if err != nil {
			c.logger.Warn("count probe failed",
				slog.String("key", probe.key), slog.String("error", err.Error()))
			c.metrics.RecordTaskFailure("pc_counts")
			success = false
			continue
		}
		c.publishCounts(aggregate.Counts{probe.key: float64(total)}, labels)
	}
	return success
}

// collectSSPCounts publishes NCM Self-Service inventory counts from the
// v3 list endpoints.
func (c *Collector) collectSSPCounts(ctx context.Context) bool {
	success := true
	labels := prometheus.Labels{catalog.LabelPrismCentral: c.cfg.Prism.Host}

	probes := []struct {
		key    string
		kind   string
		filter string
	}{
		{catalog.CountSSPAppsRunning, "app", "_state==running"},
		{catalog.CountSSPAppsProvisioning, "app", "_state==provisioning"},
		{catalog.CountSSPAppsDeleting, "app", "_state==deleting"},
		{catalog.CountSSPAppsError, "app", "_state==error"},
		{catalog.CountSSPBlueprints, "blueprint", "state!=DELETED"},
		{catalog.CountSSPRunbooks, "runbook", ""},
		{catalog.CountSSPProjects, "project", ""},
		{catalog.CountSSPMarketplaceItems, "marketplace_item", ""},
	}
	for _, probe := range probes {
		total, err := c.client.CountV3(ctx, probe.kind, probe.filter)
		if err != nil {
			c.logger.Warn("self-service count failed",
				slog.String("key", probe.key), slog.String("error", err.Error()))
			c.metrics.RecordTaskFailure("ssp_counts")
			success = false
			continue
		}
		c.publishCounts(aggregate.Counts{probe.key: float64(total)}, labels)
	}
	return success
}

func (c *Collector) publish(triples []catalog.Triple) {
	if err := c.metrics.SetAll(triples); err != nil {
		c.logger.Error("failed to publish triples", slog.String("error", err.Error()))
	}
}

func (c *Collector) publishCounts(counts aggregate.Counts, labels prometheus.Labels) {
	for key, value := range counts {
		if err := c.metrics.SetLabeled(key, labels, value); err != nil {
			c.logger.Error("failed to publish count",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

func labelsNodeIPMI(node, ipmi string) prometheus.Labels {
	return prometheus.Labels{catalog.LabelNode: node, catalog.LabelIPMI: ipmi}
}
