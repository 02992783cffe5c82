// Package monitor runs the fixed-interval monitoring loop: establish
// baselines, run an initial audit, then repeat drift scan, log scan and
// metrics publishing until stopped. All steps inside a cycle run strictly in
// sequence; only the sleep between cycles observes cancellation.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"shieldclaw/internal/alert"
	"shieldclaw/internal/audit"
	"shieldclaw/internal/config"
	"shieldclaw/internal/drift"
	"shieldclaw/internal/metrics"
	"shieldclaw/internal/scanner"
	"shieldclaw/internal/store"
)

// Monitor owns one monitoring loop over one store. Running two monitors
// against the same store is unsupported.
type Monitor struct {
	cfg        config.Config
	store      *store.Store
	log        zerolog.Logger
	dispatcher alert.Dispatcher
	detector   *drift.Detector
	aggregator metrics.Aggregator
	auditor    audit.Engine
}

// New wires a monitor from its collaborators.
func New(cfg config.Config, s *store.Store, log zerolog.Logger, dispatcher alert.Dispatcher) *Monitor {
	return &Monitor{
		cfg:        cfg,
		store:      s,
		log:        log,
		dispatcher: dispatcher,
		detector:   drift.NewDetector(s),
		aggregator: metrics.Aggregator{Store: s, MonitoredFiles: cfg.MonitoredFiles},
		auditor: audit.Engine{
			ConfigPath:     cfg.DeployConfig,
			SensitiveFiles: cfg.MonitoredFiles,
		},
	}
}

// Run executes the loop until ctx is cancelled or a store failure aborts it.
// Per-file problems are logged and surface in the next snapshot's health;
// store failures propagate so the daemon restarts externally.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info().Msg("ShieldClaw monitor starting")

	if err := m.EstablishBaselines(); err != nil {
		return fmt.Errorf("establish baselines: %w", err)
	}

	result, err := m.auditor.RunAndRecord(m.store)
	if err != nil {
		return fmt.Errorf("initial audit: %w", err)
	}
	m.log.Info().Int("score", result.Score).Msg("initial audit complete")
	if result.Severity() == alert.SeverityCritical {
		m.dispatch(ctx, alert.Payload{
			Type:     "security_audit",
			Severity: alert.SeverityCritical,
			Message:  fmt.Sprintf("Security audit scored %d/100", result.Score),
			Metadata: map[string]any{"issues": result.Issues},
		})
	}

	m.log.Info().Dur("interval", m.cfg.Interval).Msg("monitoring started")

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := m.Cycle(ctx); err != nil {
			m.log.Error().Err(err).Msg("monitoring cycle failed")
			return err
		}

		select {
		case <-ctx.Done():
			m.log.Info().Msg("monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// EstablishBaselines records a baseline fingerprint for each monitored file
// that exists on disk and has no history yet. Files with history keep their
// accepted baseline across restarts; missing files are skipped, not fatal.
func (m *Monitor) EstablishBaselines() error {
	m.log.Info().Msg("establishing baseline hashes")

	for _, path := range m.cfg.MonitoredFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			m.log.Warn().Str("file", path).Err(err).Msg("skipping baseline for unreadable file")
			continue
		}

		if _, err := m.store.ActiveBaseline(path); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNoBaseline) {
			return err
		}

		rec := drift.NewBaselineRecord(path, data, store.ChangeBaseline)
		if err := m.store.InsertBaseline(rec); err != nil {
			return err
		}
		m.log.Info().Str("file", path).Str("hash", rec.ContentHash).Msg("baseline set")
	}

	return nil
}

// Cycle runs one pass of drift scan, log scan, aggregation and publish. The
// returned error is non-nil only for store failures.
func (m *Monitor) Cycle(ctx context.Context) error {
	if err := m.scanDrift(ctx); err != nil {
		return err
	}
	if err := m.scanLogs(ctx); err != nil {
		return err
	}
	return m.publish()
}

func (m *Monitor) scanDrift(ctx context.Context) error {
	result, err := m.detector.ScanFiles(m.cfg.MonitoredFiles)
	if err != nil {
		return err
	}

	for _, fr := range result.Details {
		switch fr.Status {
		case drift.StatusMissing:
			m.log.Warn().Str("file", fr.FilePath).Msg("monitored file not found")
		case drift.StatusNoBaseline:
			m.log.Warn().Str("file", fr.FilePath).Msg("monitored file has no baseline")
		case drift.StatusDrift:
			if err := m.recordDrift(ctx, fr); err != nil {
				return err
			}
		}
	}

	if result.FilesWithDrift > 0 {
		m.log.Warn().Int("count", result.FilesWithDrift).Msg("configuration drift detected")
	}
	return nil
}

func (m *Monitor) recordDrift(ctx context.Context, fr drift.FileResult) error {
	m.log.Warn().
		Str("file", fr.FilePath).
		Str("expected", fr.BaselineHash).
		Str("actual", fr.CurrentHash).
		Msg("DRIFT DETECTED")

	severity := m.driftSeverity(fr.FilePath)

	da := store.DriftAlert{
		FilePath:     fr.FilePath,
		ExpectedHash: fr.BaselineHash,
		ActualHash:   fr.CurrentHash,
		DiffSummary:  fr.Summary(),
	}
	evt := store.SecurityEvent{
		EventType:   "config_drift",
		Severity:    severity,
		Description: fmt.Sprintf("Configuration drift detected in %s", fr.FilePath),
	}
	if meta, err := json.Marshal(fr); err == nil {
		evt.Metadata = datatypes.JSON(meta)
	}

	if err := m.store.RecordDrift(da, evt); err != nil {
		return err
	}

	m.dispatch(ctx, alert.Payload{
		Type:     "config_drift",
		Severity: severity,
		Message:  evt.Description,
		Metadata: map[string]any{
			"file":     fr.FilePath,
			"expected": fr.BaselineHash,
			"actual":   fr.CurrentHash,
		},
	})
	return nil
}

// driftSeverity ranks drift in the deployment config or the policy document
// above drift in the remaining monitored files.
func (m *Monitor) driftSeverity(path string) alert.Severity {
	if path == m.cfg.DeployConfig || filepath.Base(path) == "SOUL.md" {
		return alert.SeverityCritical
	}
	return alert.SeverityWarning
}

func (m *Monitor) scanLogs(ctx context.Context) error {
	for _, source := range m.cfg.LogSources {
		matches, err := scanner.ScanFile(source)
		if err != nil {
			if !os.IsNotExist(err) {
				m.log.Warn().Str("log", source).Err(err).Msg("cannot scan log source")
			}
			continue
		}

		for _, match := range matches {
			m.log.Error().
				Str("log", source).
				Str("pattern", match.Pattern).
				Int("line", match.LineNumber).
				Msg("INJECTION ATTEMPT")

			evt := store.SecurityEvent{
				EventType:   "injection_attempt",
				Severity:    match.Severity,
				Description: fmt.Sprintf("Possible injection attempt detected: %s", match.Pattern),
			}
			if meta, err := json.Marshal(match); err == nil {
				evt.Metadata = datatypes.JSON(meta)
			}
			if err := m.store.InsertEvent(evt); err != nil {
				return err
			}

			m.dispatch(ctx, alert.Payload{
				Type:     "injection_attempt",
				Severity: match.Severity,
				Message:  evt.Description,
				Metadata: map[string]any{
					"log":         source,
					"line_number": match.LineNumber,
					"excerpt":     match.Excerpt,
				},
			})
		}

		if len(matches) > 0 {
			m.log.Error().Str("log", source).Int("count", len(matches)).Msg("potential injection attempts detected")
		}
	}
	return nil
}

func (m *Monitor) publish() error {
	snap, err := m.aggregator.Aggregate()
	if err != nil {
		return err
	}

	// A snapshot write failure is a per-cycle problem, not a store failure.
	if err := metrics.WriteSnapshot(m.cfg.MetricsPath, snap); err != nil {
		m.log.Error().Str("path", m.cfg.MetricsPath).Err(err).Msg("cannot publish metrics snapshot")
	}
	return nil
}

// dispatch hands a payload to the alert dispatcher. Delivery failures are
// logged and never fail the cycle.
func (m *Monitor) dispatch(ctx context.Context, p alert.Payload) {
	if m.dispatcher == nil {
		return
	}
	if err := m.dispatcher.Dispatch(ctx, p); err != nil {
		m.log.Warn().Str("alert_type", p.Type).Err(err).Msg("alert dispatch failed")
	}
}
