// Package audit scores a deployment against a fixed security checklist:
// sensitive file permissions, the authentication flag and the prompt
// injection defense flag.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gorm.io/datatypes"

	"shieldclaw/internal/alert"
	"shieldclaw/internal/store"
)

// CheckStatus is the outcome of a single audit check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckFail CheckStatus = "fail"
)

// Fixed penalties per failing check.
const (
	penaltyFileMode         = 10
	penaltyAuthentication   = 20
	penaltyInjectionDefense = 20
)

// criticalScore is the threshold below which an audit is recorded as a
// critical security event.
const criticalScore = 70

// Check is one entry of the ordered checklist.
type Check struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Details string      `json:"details"`
}

// Result is a point-in-time scored evaluation of the deployment.
type Result struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Checks    []Check   `json:"checks"`
	Issues    []string  `json:"issues"`
}

// Engine runs the audit against the filesystem and the deployment config.
type Engine struct {
	ConfigPath     string   // Deployment configuration document
	SensitiveFiles []string // Files whose mode must be owner read-write only
}

// Run executes the fixed, ordered checklist. The score starts at 100, each
// failing check deducts its penalty, and the final score is clamped to zero
// so it always presents on a 0-100 scale.
func (e Engine) Run() Result {
	result := Result{
		Timestamp: time.Now().UTC(),
		Score:     100,
		Checks:    []Check{},
		Issues:    []string{},
	}

	for _, path := range e.SensitiveFiles {
		info, err := os.Stat(path)
		if err != nil {
			continue // Absent files are not a permissions failure
		}

		mode := info.Mode().Perm()
		check := Check{
			Name:    fmt.Sprintf("Permissions: %s", path),
			Status:  CheckPass,
			Details: fmt.Sprintf("Mode: %03o", mode),
		}
		if mode != 0o600 {
			check.Status = CheckFail
			result.Score -= penaltyFileMode
			result.Issues = append(result.Issues, fmt.Sprintf("Insecure permissions on %s", path))
		}
		result.Checks = append(result.Checks, check)
	}

	// An unreadable or unparseable config document means both flags are
	// absent, which fails the same as disabled.
	cfg, err := LoadDeployConfig(e.ConfigPath)
	details := func(enabled bool) string {
		if err != nil {
			return fmt.Sprintf("Config unreadable: %v", err)
		}
		return fmt.Sprintf("Enabled: %t", enabled)
	}

	authEnabled := err == nil && cfg.Security.Authentication.Enabled
	check := Check{
		Name:    "Authentication enabled",
		Status:  CheckPass,
		Details: details(authEnabled),
	}
	if !authEnabled {
		check.Status = CheckFail
		result.Score -= penaltyAuthentication
		result.Issues = append(result.Issues, "Authentication is disabled")
	}
	result.Checks = append(result.Checks, check)

	defenseEnabled := err == nil && cfg.Security.InjectionDefense.Enabled
	check = Check{
		Name:    "Prompt injection defense",
		Status:  CheckPass,
		Details: details(defenseEnabled),
	}
	if !defenseEnabled {
		check.Status = CheckFail
		result.Score -= penaltyInjectionDefense
		result.Issues = append(result.Issues, "Prompt injection defense is disabled")
	}
	result.Checks = append(result.Checks, check)

	if result.Score < 0 {
		result.Score = 0
	}

	return result
}

// RunAndRecord executes the audit and persists the result as a security
// event: critical when the score falls below the threshold, info otherwise.
func (e Engine) RunAndRecord(s *store.Store) (Result, error) {
	result := e.Run()

	evt := store.SecurityEvent{
		Timestamp:   result.Timestamp,
		EventType:   "security_audit",
		Severity:    result.Severity(),
		Description: fmt.Sprintf("Security audit completed. Score: %d", result.Score),
	}
	if meta, err := json.Marshal(result); err == nil {
		evt.Metadata = datatypes.JSON(meta)
	}

	if err := s.InsertEvent(evt); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Severity maps the score onto the event severity scale.
func (r Result) Severity() alert.Severity {
	if r.Score < criticalScore {
		return alert.SeverityCritical
	}
	return alert.SeverityInfo
}
