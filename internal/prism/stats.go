package prism

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// Stat type operators accepted by the v4 stats endpoints.
const (
	StatTypeLast = "LAST"
	StatTypeAvg  = "AVG"
)

// StatsWindow bounds one time-series statistics query.
type StatsWindow struct {
	Start            time.Time
	End              time.Time
	SamplingInterval int
	StatType         string
}

// NewStatsWindow builds the query window ending now and reaching width
// into the past.
func NewStatsWindow(width time.Duration, samplingInterval int, statType string) StatsWindow {
	now := time.Now().UTC()
	return StatsWindow{
		Start:            now.Add(-width),
		End:              now,
		SamplingInterval: samplingInterval,
		StatType:         statType,
	}
}

// statsEnvelope is the v4 stats response wrapper.
type statsEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// GetStats issues one time-windowed statistics query and returns the raw
// data payload for shape-specific normalization by the caller.
func (c *Client) GetStats(ctx context.Context, path string, window StatsWindow) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("$startTime", window.Start.Format(time.RFC3339))
	query.Set("$endTime", window.End.Format(time.RFC3339))
	query.Set("$samplingInterval", strconv.Itoa(window.SamplingInterval))
	query.Set("$statType", window.StatType)

	var envelope statsEnvelope
	if err := c.Get(ctx, path, query, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
