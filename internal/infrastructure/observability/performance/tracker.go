// Package performance provides lightweight operation timing markers for the
// analytics engine.
package performance

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Marker tracks one operation from start to completion.
type Marker struct {
	ID        string        `json:"id"`
	Operation string        `json:"operation"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Completed bool          `json:"completed"`

	tracker *Tracker
}

// Tracker manages performance markers and aggregates basic operation stats.
type Tracker struct {
	markers    map[string]*Marker
	maxMarkers int
	mu         sync.RWMutex
	started    time.Time
}

// NewTracker creates a performance tracker.
func NewTracker() *Tracker {
	return &Tracker{
		markers:    make(map[string]*Marker),
		maxMarkers: 10000,
		started:    time.Now().UTC(),
	}
}

// StartOperation begins tracking a named operation and returns its marker.
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		ID:        ulid.Make().String(),
		Operation: operation,
		StartTime: time.Now().UTC(),
		tracker:   t,
	}

	t.mu.Lock()
	if len(t.markers) >= t.maxMarkers {
		t.evictOldestLocked()
	}
	t.markers[marker.ID] = marker
	t.mu.Unlock()

	return marker
}

// Complete stamps the marker's end time and duration. Safe to call once via
// defer; later SetSuccess calls still apply.
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.EndTime = time.Now().UTC()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess records whether the operation succeeded.
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// evictOldestLocked drops the oldest completed marker. Caller holds t.mu.
func (t *Tracker) evictOldestLocked() {
	var oldestID string
	var oldestStart time.Time
	for id, m := range t.markers {
		if !m.Completed {
			continue
		}
		if oldestID == "" || m.StartTime.Before(oldestStart) {
			oldestID = id
			oldestStart = m.StartTime
		}
	}
	if oldestID != "" {
		delete(t.markers, oldestID)
	}
}

// OperationStats summarizes tracked timings for one operation name.
type OperationStats struct {
	Operation   string        `json:"operation"`
	Count       int           `json:"count"`
	Failures    int           `json:"failures"`
	AvgDuration time.Duration `json:"avgDuration"`
	MaxDuration time.Duration `json:"maxDuration"`
}

// Stats aggregates completed markers per operation name.
func (t *Tracker) Stats() map[string]OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	totals := make(map[string]time.Duration)
	stats := make(map[string]OperationStats)
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		s := stats[m.Operation]
		s.Operation = m.Operation
		s.Count++
		if !m.Success {
			s.Failures++
		}
		if m.Duration > s.MaxDuration {
			s.MaxDuration = m.Duration
		}
		totals[m.Operation] += m.Duration
		stats[m.Operation] = s
	}
	for op, s := range stats {
		if s.Count > 0 {
			s.AvgDuration = totals[op] / time.Duration(s.Count)
			stats[op] = s
		}
	}
	return stats
}

// Uptime returns how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
