// Package status tracks poll cycle outcomes and exposes them on a JSON
// endpoint for operators who want more detail than the self-metrics.
package status

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CycleStatus represents the outcome of one poll cycle
type CycleStatus int

const (
	// StatusInProgress indicates the cycle is currently executing
	StatusInProgress CycleStatus = iota

	// StatusCompleted indicates the cycle finished with every kind published
	StatusCompleted

	// StatusDegraded indicates the cycle finished but at least one kind failed
	StatusDegraded
)

// String returns the string representation of a cycle status
func (s CycleStatus) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string form.
func (s CycleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Cycle is the record of one poll cycle.
type Cycle struct {
	Sequence    uint64        `json:"sequence"`
	Status      CycleStatus   `json:"status"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration,omitempty"`
	FailedKinds []string      `json:"failed_kinds,omitempty"`
}

// Tracker records cycle outcomes and keeps a bounded history.
type Tracker struct {
	mu         sync.RWMutex
	sequence   uint64
	current    *Cycle
	last       *Cycle
	history    []*Cycle
	maxHistory int
}

// NewTracker creates a tracker keeping up to maxHistory finished cycles.
func NewTracker(maxHistory int) *Tracker {
	if maxHistory <= 0 {
		maxHistory = 50
	}
	return &Tracker{maxHistory: maxHistory}
}

// BeginCycle marks the start of a poll cycle.
func (t *Tracker) BeginCycle() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sequence++
	t.current = &Cycle{
		Sequence:  t.sequence,
		Status:    StatusInProgress,
		StartTime: time.Now().UTC(),
	}
}

// RecordKindFailure notes that one entity kind failed during the
// current cycle.
func (t *Tracker) RecordKindFailure(kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return
	}
	t.current.FailedKinds = append(t.current.FailedKinds, kind)
}

// EndCycle finalizes the current cycle.
func (t *Tracker) EndCycle(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return
	}
	t.current.Duration = duration
	if len(t.current.FailedKinds) == 0 {
		t.current.Status = StatusCompleted
	} else {
		t.current.Status = StatusDegraded
	}

	t.last = t.current
	t.history = append(t.history, t.current)
	if len(t.history) > t.maxHistory {
		t.history = t.history[len(t.history)-t.maxHistory:]
	}
	t.current = nil
}

// Last returns the most recently finished cycle, or nil before the
// first cycle completes.
func (t *Tracker) Last() *Cycle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// History returns the finished cycles, oldest first.
func (t *Tracker) History() []*Cycle {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Cycle, len(t.history))
	copy(out, t.history)
	return out
}

// Handler serves the tracker state as JSON.
func (t *Tracker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.mu.RLock()
		payload := struct {
			Current *Cycle   `json:"current,omitempty"`
			Last    *Cycle   `json:"last,omitempty"`
			History []*Cycle `json:"history"`
		}{
			Current: t.current,
			Last:    t.last,
			History: t.history,
		}
		t.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
