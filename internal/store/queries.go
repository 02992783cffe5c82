package store

import (
	"time"

	"shieldclaw/internal/alert"
)

// EventCount is one row of the event_type × severity grouping.
type EventCount struct {
	EventType string         `json:"type"`
	Severity  alert.Severity `json:"severity"`
	Count     int64          `json:"count"`
}

// ApiStats summarizes API metric rows over a window.
type ApiStats struct {
	TotalRequests      int64   `json:"total_requests"`
	AvgResponseTime    float64 `json:"avg_response_time"`
	TotalTokens        int64   `json:"total_tokens"`
	SuspiciousRequests int64   `json:"suspicious_requests"`
}

// EventCountsSince groups security events newer than the cutoff by type and
// severity.
func (s *Store) EventCountsSince(since time.Time) ([]EventCount, error) {
	counts := []EventCount{}
	err := s.db.Model(&SecurityEvent{}).
		Select("event_type, severity, COUNT(*) AS count").
		Where("timestamp > ?", since).
		Group("event_type").Group("severity").
		Order("event_type, severity").
		Scan(&counts).Error
	return counts, err
}

// UnacknowledgedDriftCount counts drift alerts awaiting approval.
func (s *Store) UnacknowledgedDriftCount() (int64, error) {
	var n int64
	err := s.db.Model(&DriftAlert{}).
		Where("acknowledged = ?", false).
		Count(&n).Error
	return n, err
}

// UnacknowledgedDrift returns the open drift alerts for a path, newest first.
func (s *Store) UnacknowledgedDrift(path string) ([]DriftAlert, error) {
	alerts := []DriftAlert{}
	err := s.db.
		Where("file_path = ? AND acknowledged = ?", path, false).
		Order("timestamp DESC, id DESC").
		Find(&alerts).Error
	return alerts, err
}

// UnresolvedEventCount counts security events not yet resolved.
func (s *Store) UnresolvedEventCount() (int64, error) {
	var n int64
	err := s.db.Model(&SecurityEvent{}).
		Where("resolved = ?", false).
		Count(&n).Error
	return n, err
}

// ApiStatsSince summarizes API metrics newer than the cutoff. Aggregates over
// an empty window come back zeroed, not NULL.
func (s *Store) ApiStatsSince(since time.Time) (ApiStats, error) {
	var stats ApiStats
	err := s.db.Model(&ApiMetric{}).
		Select(
			"COUNT(*) AS total_requests, " +
				"COALESCE(AVG(response_time), 0) AS avg_response_time, " +
				"COALESCE(SUM(tokens_used), 0) AS total_tokens, " +
				"COALESCE(SUM(CASE WHEN suspicious THEN 1 ELSE 0 END), 0) AS suspicious_requests").
		Where("timestamp > ?", since).
		Scan(&stats).Error
	return stats, err
}

// RecentEvents returns the newest events up to limit, for operator tooling.
func (s *Store) RecentEvents(limit int) ([]SecurityEvent, error) {
	events := []SecurityEvent{}
	err := s.db.
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
