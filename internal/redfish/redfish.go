// Package redfish reads power and thermal sensors from node BMCs over
// the Redfish chassis API. It is the whole of the exporter's redfish
// operations mode.
package redfish

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/internal/catalog"
	"github.com/nutanix-exporter/nutanix-exporter/internal/config"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
)

const chassisBase = "/redfish/v1/Chassis/1"

// Point is one sensor reading attributed to a node and its BMC address.
type Point struct {
	Key   string
	Node  string
	IPMI  string
	Value float64
}

// Target identifies one BMC to poll. Secret falls back to the node
// serial number when no explicit credential is configured.
type Target struct {
	Node     string
	Address  string
	Username string
	Secret   string
}

// Client polls BMCs sequentially. BMC controllers are slow and easily
// overwhelmed, so there is no fan-out here.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

type powerPayload struct {
	PowerControl []struct {
		PowerConsumedWatts float64 `json:"PowerConsumedWatts"`
		PowerMetrics       struct {
			MinConsumedWatts     float64 `json:"MinConsumedWatts"`
			MaxConsumedWatts     float64 `json:"MaxConsumedWatts"`
			AverageConsumedWatts float64 `json:"AverageConsumedWatts"`
		} `json:"PowerMetrics"`
	} `json:"PowerControl"`
}

type thermalPayload struct {
	Temperatures []struct {
		Name           string   `json:"Name"`
		ReadingCelsius *float64 `json:"ReadingCelsius"`
	} `json:"Temperatures"`
}

var cpuSensor = regexp.MustCompile(`^CPU\d+ Temp$`)

// NewClient creates a BMC client. Certificate verification is always
// disabled; BMCs ship self-signed certificates.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: logger,
	}
}

// Targets resolves the BMC endpoints for a set of hosts using the IPMI
// configuration's per-node overrides and fallbacks.
func Targets(hosts []TargetSource, ipmi config.IPMIConfig) []Target {
	targets := make([]Target, 0, len(hosts))
	for _, h := range hosts {
		if h.IPMIAddress == "" {
			continue
		}
		username := ipmi.Username
		if u, ok := ipmi.NodeUsernames[h.Node]; ok && u != "" {
			username = u
		}
		secret := ipmi.Secret
		if s, ok := ipmi.NodeSecrets[h.Node]; ok && s != "" {
			secret = s
		}
		if secret == "" {
			secret = h.NodeSerial
		}
		targets = append(targets, Target{
			Node:     h.Node,
			Address:  h.IPMIAddress,
			Username: username,
			Secret:   secret,
		})
	}
	return targets
}

// TargetSource is the host information Targets needs, decoupled from
// any particular API payload.
type TargetSource struct {
	Node        string
	IPMIAddress string
	NodeSerial  string
}

// Collect polls every target and returns the readings that succeeded.
// A failing BMC is logged and skipped; one dead controller must not
// hide the rest of the fleet.
func (c *Client) Collect(ctx context.Context, targets []Target) []Point {
	var points []Point
	for _, target := range targets {
		pts, err := c.collectTarget(ctx, target)
		if err != nil {
			c.logger.Warn("BMC poll failed",
				"node", target.Node,
				"ipmi", target.Address,
				"error", err)
			continue
		}
		points = append(points, pts...)
	}
	return points
}

func (c *Client) collectTarget(ctx context.Context, target Target) ([]Point, error) {
	var points []Point

	var power powerPayload
	if err := c.get(ctx, target, chassisBase+"/Power", &power); err != nil {
		return nil, err
	}
	if len(power.PowerControl) > 0 {
		pc := power.PowerControl[0]
		points = append(points,
			c.point(target, catalog.PowerConsumedWatts, pc.PowerConsumedWatts),
			c.point(target, catalog.PowerMinConsumedWatts, pc.PowerMetrics.MinConsumedWatts),
			c.point(target, catalog.PowerMaxConsumedWatts, pc.PowerMetrics.MaxConsumedWatts),
			c.point(target, catalog.PowerAvgConsumedWatts, pc.PowerMetrics.AverageConsumedWatts),
		)
	}

	var thermal thermalPayload
	if err := c.get(ctx, target, chassisBase+"/Thermal", &thermal); err != nil {
		return nil, err
	}

	var cpuSum float64
	var cpuCount int
	named := map[string]string{
		"PCH Temp":        catalog.TempPCHCelsius,
		"System Temp":     catalog.TempSystemCelsius,
		"Peripheral Temp": catalog.TempPeripheralCelsius,
		"Inlet Temp":      catalog.TempInletCelsius,
	}
	for _, sensor := range thermal.Temperatures {
		if sensor.ReadingCelsius == nil {
			continue
		}
		if cpuSensor.MatchString(sensor.Name) {
			cpuSum += *sensor.ReadingCelsius
			cpuCount++
			continue
		}
		if key, ok := named[sensor.Name]; ok {
			points = append(points, c.point(target, key, *sensor.ReadingCelsius))
		}
	}
	if cpuCount > 0 {
		points = append(points, c.point(target, catalog.TempCPUCelsius, cpuSum/float64(cpuCount)))
	}

	return points, nil
}

func (c *Client) point(target Target, key string, value float64) Point {
	return Point{Key: key, Node: target.Node, IPMI: target.Address, Value: value}
}

func (c *Client) get(ctx context.Context, target Target, path string, out interface{}) error {
	url := fmt.Sprintf("https://%s%s", target.Address, path)
	if strings.HasPrefix(target.Address, "http://") || strings.HasPrefix(target.Address, "https://") {
		url = target.Address + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewError(errors.ErrCodeInternalError, "failed to build BMC request").
			WithCause(err).WithEndpoint(url)
	}
	req.SetBasicAuth(target.Username, target.Secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewError(errors.ErrCodeConnectionFailed, "BMC request failed").
			WithCause(err).WithEndpoint(url).WithComponent("redfish")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return errors.NewError(errors.ErrCodeHTTPStatus,
			fmt.Sprintf("BMC returned HTTP %d", resp.StatusCode)).
			WithHTTPStatus(resp.StatusCode).WithEndpoint(url).WithComponent("redfish")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewError(errors.ErrCodeDecodeFailed, "failed to decode BMC response").
			WithCause(err).WithEndpoint(url).WithComponent("redfish")
	}
	return nil
}
