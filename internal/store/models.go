package store

import (
	"time"

	"gorm.io/datatypes"

	"shieldclaw/internal/alert"
)

// ChangeType classifies a config history row.
type ChangeType string

const (
	ChangeBaseline ChangeType = "baseline"        // Fingerprint recorded at startup
	ChangeApproved ChangeType = "approved_change" // Drift approved, new accepted baseline
)

// ConfigHistoryRecord is one append-only fingerprint record for a monitored
// file. The most recent row per file_path, regardless of change type, is the
// authoritative expected fingerprint for that path.
type ConfigHistoryRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time      `gorm:"index;not null" json:"timestamp"`
	FilePath    string         `gorm:"index;size:1024;not null" json:"filePath"`
	ContentHash string         `gorm:"size:80;not null" json:"contentHash"`
	ChangeType  ChangeType     `gorm:"size:32;not null" json:"changeType"`
	Snapshot    datatypes.JSON `gorm:"type:text" json:"snapshot,omitempty"`   // Parsed document, structured files only
	RawContent  string         `gorm:"type:text" json:"rawContent,omitempty"` // Verbatim content for line diffing
	AlertSent   bool           `json:"alertSent"`
}

func (ConfigHistoryRecord) TableName() string { return "config_history" }

// SecurityEvent is the append-only record of anything notable: drift
// detections, injection matches, audit runs. Resolved is the only mutable
// field, flipped by an external remediation workflow.
type SecurityEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     string         `gorm:"uniqueIndex;size:36" json:"eventId"`
	Timestamp   time.Time      `gorm:"index;not null" json:"timestamp"`
	EventType   string         `gorm:"index;size:64;not null" json:"eventType"`
	Severity    alert.Severity `gorm:"index;size:16;not null" json:"severity"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `gorm:"type:text" json:"metadata,omitempty"`
	Resolved    bool           `gorm:"index" json:"resolved"`
}

func (SecurityEvent) TableName() string { return "security_events" }

// DriftAlert is one record per detected fingerprint mismatch. Acknowledged is
// set in bulk when a new baseline is approved for the file.
type DriftAlert struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AlertID      string    `gorm:"uniqueIndex;size:36" json:"alertId"`
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
	FilePath     string    `gorm:"index;size:1024;not null" json:"filePath"`
	ExpectedHash string    `gorm:"size:80" json:"expectedHash"`
	ActualHash   string    `gorm:"size:80" json:"actualHash"`
	DiffSummary  string    `gorm:"type:text" json:"diffSummary"`
	Acknowledged bool      `gorm:"index" json:"acknowledged"`
}

func (DriftAlert) TableName() string { return "drift_alerts" }

// ApiMetric is written by the request-handling layer; the monitor only reads
// it when aggregating.
type ApiMetric struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
	Endpoint     string    `gorm:"size:256" json:"endpoint"`
	Method       string    `gorm:"size:16" json:"method"`
	StatusCode   int       `json:"statusCode"`
	ResponseTime float64   `json:"responseTime"` // Seconds
	TokensUsed   int       `json:"tokensUsed"`
	Suspicious   bool      `gorm:"index" json:"suspicious"`
}

func (ApiMetric) TableName() string { return "api_metrics" }
