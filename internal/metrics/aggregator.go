// Package metrics summarizes the event store into a point-in-time snapshot
// for the dashboard: recent event counts, open drift, API statistics and an
// overall health status. The snapshot is rewritten wholesale every cycle.
package metrics

import (
	"os"
	"time"

	"shieldclaw/internal/store"
)

// window is the lookback for event and API aggregates.
const window = 24 * time.Hour

// HealthStatus is the overall condition of the monitored deployment.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// Unresolved-event thresholds. Absolute, not relative to history.
const (
	warningThreshold  = 10
	criticalThreshold = 50
)

// Health is the lightweight health sub-check included in each snapshot.
type Health struct {
	Status           HealthStatus `json:"status"`
	MissingFiles     []string     `json:"missing_files,omitempty"`
	UnresolvedEvents int64        `json:"unresolved_events"`
}

// EventsSection groups recent event counts by type and severity.
type EventsSection struct {
	Recent []store.EventCount `json:"recent"`
}

// DriftSection carries the open drift alert count.
type DriftSection struct {
	Unacknowledged int64 `json:"unacknowledged"`
}

// Snapshot is the aggregate written for the dashboard.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Events    EventsSection  `json:"events"`
	Drift     DriftSection   `json:"drift"`
	Api       store.ApiStats `json:"api"`
	Health    Health         `json:"health"`
}

// Aggregator builds snapshots from the store and the monitored file set.
type Aggregator struct {
	Store          *store.Store
	MonitoredFiles []string
}

// Aggregate computes the snapshot over the last 24 hours.
func (a Aggregator) Aggregate() (Snapshot, error) {
	since := time.Now().UTC().Add(-window)

	counts, err := a.Store.EventCountsSince(since)
	if err != nil {
		return Snapshot{}, err
	}

	unacked, err := a.Store.UnacknowledgedDriftCount()
	if err != nil {
		return Snapshot{}, err
	}

	apiStats, err := a.Store.ApiStatsSince(since)
	if err != nil {
		return Snapshot{}, err
	}

	unresolved, err := a.Store.UnresolvedEventCount()
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Timestamp: time.Now().UTC(),
		Events:    EventsSection{Recent: counts},
		Drift:     DriftSection{Unacknowledged: unacked},
		Api:       apiStats,
		Health:    a.health(unresolved),
	}, nil
}

// health starts at healthy and degrades in order: missing critical file,
// unresolved events above the warning threshold, then above the critical
// threshold.
func (a Aggregator) health(unresolved int64) Health {
	h := Health{
		Status:           HealthHealthy,
		UnresolvedEvents: unresolved,
	}

	for _, path := range a.MonitoredFiles {
		if _, err := os.Stat(path); err != nil {
			h.MissingFiles = append(h.MissingFiles, path)
		}
	}
	if len(h.MissingFiles) > 0 {
		h.Status = HealthDegraded
	}

	if unresolved > warningThreshold {
		h.Status = HealthWarning
	}
	if unresolved > criticalThreshold {
		h.Status = HealthCritical
	}

	return h
}
