package drift

import "time"

// ChangeKind represents the type of configuration change.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"    // Key in current but not baseline
	ChangeRemoved  ChangeKind = "removed"  // Key in baseline but not current
	ChangeModified ChangeKind = "modified" // Key in both with different values
)

// Change is a single field-level difference, addressed by dotted path.
type Change struct {
	Kind     ChangeKind `json:"type"`
	Path     string     `json:"path"`
	OldValue any        `json:"old_value,omitempty"`
	NewValue any        `json:"new_value,omitempty"`
}

// Status is the per-file outcome of a drift scan.
type Status string

const (
	StatusOK         Status = "ok"
	StatusDrift      Status = "drift_detected"
	StatusMissing    Status = "missing"
	StatusNoBaseline Status = "no_baseline"
)

// FileResult is the scan outcome for one monitored file.
type FileResult struct {
	FilePath     string   `json:"filepath"`
	Status       Status   `json:"status"`
	BaselineHash string   `json:"baseline_hash,omitempty"`
	CurrentHash  string   `json:"current_hash,omitempty"`
	Changes      []Change `json:"changes,omitempty"` // Structured files only
	Diff         string   `json:"diff,omitempty"`    // Unstructured files, unified diff
	Error        string   `json:"error,omitempty"`
}

// ScanResult is the full drift analysis over a set of files.
type ScanResult struct {
	Timestamp      time.Time    `json:"timestamp"`
	TotalFiles     int          `json:"total_files"`
	FilesWithDrift int          `json:"files_with_drift"`
	Details        []FileResult `json:"details"`
}

// Approval is the outcome of accepting a file's current content as the new
// baseline.
type Approval struct {
	Status       string `json:"status"`
	FilePath     string `json:"filepath"`
	NewBaseline  string `json:"new_baseline"`
	Acknowledged int64  `json:"acknowledged_alerts"`
}
