package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"shieldclaw/internal/alert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestActiveBaselinePicksLatest(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	records := []ConfigHistoryRecord{
		{Timestamp: now.Add(-2 * time.Hour), FilePath: "config.json", ContentHash: "sha256:old", ChangeType: ChangeBaseline},
		{Timestamp: now.Add(-1 * time.Hour), FilePath: "config.json", ContentHash: "sha256:mid", ChangeType: ChangeApproved},
		{Timestamp: now, FilePath: "config.json", ContentHash: "sha256:new", ChangeType: ChangeBaseline},
		{Timestamp: now, FilePath: "other.json", ContentHash: "sha256:other", ChangeType: ChangeBaseline},
	}
	for _, rec := range records {
		if err := s.InsertBaseline(rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	rec, err := s.ActiveBaseline("config.json")
	if err != nil {
		t.Fatalf("active baseline: %v", err)
	}
	if rec.ContentHash != "sha256:new" {
		t.Errorf("expected latest record, got %s", rec.ContentHash)
	}
}

func TestActiveBaselineMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ActiveBaseline("never-seen.json")
	if !errors.Is(err, ErrNoBaseline) {
		t.Errorf("expected ErrNoBaseline, got %v", err)
	}
}

func TestRecordDriftPairsAlertAndEvent(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordDrift(
		DriftAlert{FilePath: "config.json", ExpectedHash: "sha256:a", ActualHash: "sha256:b"},
		SecurityEvent{EventType: "config_drift", Severity: alert.SeverityWarning, Description: "drift"},
	)
	if err != nil {
		t.Fatalf("record drift: %v", err)
	}

	drifts, err := s.UnacknowledgedDriftCount()
	if err != nil {
		t.Fatal(err)
	}
	if drifts != 1 {
		t.Errorf("expected 1 drift alert, got %d", drifts)
	}

	events, err := s.RecentEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].EventType != "config_drift" {
		t.Errorf("expected paired config_drift event, got %+v", events)
	}
	if events[0].EventID == "" {
		t.Error("expected event ID to be assigned")
	}
}

func TestApproveDriftAcknowledgesAndInserts(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 2; i++ {
		err := s.RecordDrift(
			DriftAlert{FilePath: "config.json", ExpectedHash: "sha256:a", ActualHash: "sha256:b"},
			SecurityEvent{EventType: "config_drift", Severity: alert.SeverityWarning},
		)
		if err != nil {
			t.Fatal(err)
		}
	}

	acked, err := s.ApproveDrift(ConfigHistoryRecord{FilePath: "config.json", ContentHash: "sha256:b"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if acked != 2 {
		t.Errorf("expected 2 acknowledged, got %d", acked)
	}

	open, err := s.UnacknowledgedDrift("config.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 0 {
		t.Errorf("expected no open alerts, got %d", len(open))
	}

	rec, err := s.ActiveBaseline("config.json")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ChangeType != ChangeApproved || rec.ContentHash != "sha256:b" {
		t.Errorf("expected approved_change baseline with new hash, got %+v", rec)
	}
}

func TestEventCountsSinceGroupsByTypeAndSeverity(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	events := []SecurityEvent{
		{Timestamp: now, EventType: "config_drift", Severity: alert.SeverityWarning},
		{Timestamp: now, EventType: "config_drift", Severity: alert.SeverityWarning},
		{Timestamp: now, EventType: "injection_attempt", Severity: alert.SeverityCritical},
		{Timestamp: now.Add(-25 * time.Hour), EventType: "config_drift", Severity: alert.SeverityWarning},
	}
	for _, evt := range events {
		if err := s.InsertEvent(evt); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.EventCountsSince(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 groups, got %+v", counts)
	}

	byType := map[string]int64{}
	for _, c := range counts {
		byType[c.EventType] = c.Count
	}
	if byType["config_drift"] != 2 {
		t.Errorf("expected 2 recent drift events, got %d", byType["config_drift"])
	}
	if byType["injection_attempt"] != 1 {
		t.Errorf("expected 1 injection event, got %d", byType["injection_attempt"])
	}
}

func TestResolveEvent(t *testing.T) {
	s := newTestStore(t)

	evt := SecurityEvent{EventID: "evt-1", EventType: "config_drift", Severity: alert.SeverityWarning}
	if err := s.InsertEvent(evt); err != nil {
		t.Fatal(err)
	}

	before, err := s.UnresolvedEventCount()
	if err != nil {
		t.Fatal(err)
	}
	if before != 1 {
		t.Fatalf("expected 1 unresolved, got %d", before)
	}

	if err := s.ResolveEvent("evt-1"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	after, err := s.UnresolvedEventCount()
	if err != nil {
		t.Fatal(err)
	}
	if after != 0 {
		t.Errorf("expected 0 unresolved, got %d", after)
	}

	if err := s.ResolveEvent("unknown"); err == nil {
		t.Error("expected error for unknown event ID")
	}
}

func TestApiStatsSince(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	metrics := []ApiMetric{
		{Timestamp: now, Endpoint: "/chat", Method: "POST", StatusCode: 200, ResponseTime: 0.2, TokensUsed: 100},
		{Timestamp: now, Endpoint: "/chat", Method: "POST", StatusCode: 200, ResponseTime: 0.4, TokensUsed: 300, Suspicious: true},
		{Timestamp: now.Add(-25 * time.Hour), Endpoint: "/chat", Method: "POST", StatusCode: 200, ResponseTime: 9.9, TokensUsed: 999},
	}
	for _, m := range metrics {
		if err := s.InsertMetric(m); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.ApiStatsSince(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRequests != 2 {
		t.Errorf("expected 2 requests, got %d", stats.TotalRequests)
	}
	if stats.AvgResponseTime < 0.29 || stats.AvgResponseTime > 0.31 {
		t.Errorf("expected avg about 0.3, got %f", stats.AvgResponseTime)
	}
	if stats.TotalTokens != 400 {
		t.Errorf("expected 400 tokens, got %d", stats.TotalTokens)
	}
	if stats.SuspiciousRequests != 1 {
		t.Errorf("expected 1 suspicious request, got %d", stats.SuspiciousRequests)
	}
}

func TestApiStatsEmptyWindow(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.ApiStatsSince(time.Now().UTC().Add(-24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRequests != 0 || stats.AvgResponseTime != 0 || stats.TotalTokens != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}
