// Package drift detects configuration drift: deviations of a monitored
// file's current content from its accepted baseline fingerprint. Structured
// documents (JSON, YAML) are diffed field by field; everything else gets a
// line-level unified diff.
package drift

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"

	"shieldclaw/internal/hashwatch"
	"shieldclaw/internal/store"
)

// Detector scans files against the baselines recorded in the store.
type Detector struct {
	Store *store.Store
}

// NewDetector creates a detector backed by the given store.
func NewDetector(s *store.Store) *Detector {
	return &Detector{Store: s}
}

// NewBaselineRecord builds the config history record for a file's current
// content: fingerprint, verbatim content, and for structured files the parsed
// document snapshot used later for field-level diffing. An unparseable
// structured file still gets a record; only the snapshot is omitted.
func NewBaselineRecord(path string, data []byte, changeType store.ChangeType) store.ConfigHistoryRecord {
	rec := store.ConfigHistoryRecord{
		Timestamp:   time.Now().UTC(),
		FilePath:    path,
		ContentHash: hashwatch.FingerprintBytes(data),
		ChangeType:  changeType,
		RawContent:  string(data),
	}
	if IsStructured(path) {
		if doc, err := ParseDoc(path, data); err == nil {
			if snap, err := json.Marshal(doc); err == nil {
				rec.Snapshot = datatypes.JSON(snap)
			}
		}
	}
	return rec
}

// ScanFiles runs the drift check over each path and collects per-file
// results. Unreadable files and files without history are reported as
// statuses, not errors; only store failures abort the scan.
func (d *Detector) ScanFiles(paths []string) (ScanResult, error) {
	result := ScanResult{
		Timestamp:  time.Now().UTC(),
		TotalFiles: len(paths),
		Details:    []FileResult{},
	}

	for _, path := range paths {
		fr, err := d.ScanFile(path)
		if err != nil {
			return ScanResult{}, err
		}
		if fr.Status == StatusDrift {
			result.FilesWithDrift++
		}
		result.Details = append(result.Details, fr)
	}

	return result, nil
}

// ScanFile checks one file against its active baseline. The returned error is
// non-nil only for store failures.
func (d *Detector) ScanFile(path string) (FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{FilePath: path, Status: StatusMissing, Error: err.Error()}, nil
	}

	rec, err := d.Store.ActiveBaseline(path)
	if errors.Is(err, store.ErrNoBaseline) {
		return FileResult{FilePath: path, Status: StatusNoBaseline, Error: "no baseline hash found"}, nil
	}
	if err != nil {
		return FileResult{}, err
	}

	currentHash := hashwatch.FingerprintBytes(data)
	if currentHash == rec.ContentHash {
		return FileResult{FilePath: path, Status: StatusOK}, nil
	}

	fr := FileResult{
		FilePath:     path,
		Status:       StatusDrift,
		BaselineHash: rec.ContentHash,
		CurrentHash:  currentHash,
	}

	// A structured file with a stored snapshot gets a field-level diff. A
	// decode failure falls back to the raw hash mismatch already recorded.
	if IsStructured(path) && len(rec.Snapshot) > 0 {
		var baseDoc map[string]any
		if err := json.Unmarshal(rec.Snapshot, &baseDoc); err == nil {
			if curDoc, err := ParseDoc(path, data); err == nil {
				fr.Changes = CompareDocs(baseDoc, curDoc)
			}
		}
	} else if rec.RawContent != "" {
		fr.Diff = UnifiedDiff(path, rec.RawContent, string(data))
	}

	return fr, nil
}

// Approve accepts the file's current content as the new baseline. All prior
// unacknowledged drift alerts for the path are acknowledged and a new
// approved_change history record is appended, in one transaction. Calling it
// again acknowledges nothing further but appends another baseline record.
func (d *Detector) Approve(path string) (Approval, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Approval{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	rec := NewBaselineRecord(path, data, store.ChangeApproved)
	acked, err := d.Store.ApproveDrift(rec)
	if err != nil {
		return Approval{}, err
	}

	return Approval{
		Status:       "approved",
		FilePath:     path,
		NewBaseline:  rec.ContentHash,
		Acknowledged: acked,
	}, nil
}

// Summary renders the one-line drift description stored on the alert row.
func (r FileResult) Summary() string {
	s := fmt.Sprintf("hash changed from %s to %s", shortHash(r.BaselineHash), shortHash(r.CurrentHash))
	if len(r.Changes) > 0 {
		s += fmt.Sprintf("; %d field change(s)", len(r.Changes))
	}
	return s
}

func shortHash(h string) string {
	h = strings.TrimPrefix(h, "sha256:")
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
