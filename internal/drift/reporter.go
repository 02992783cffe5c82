package drift

import (
	"encoding/json"
	"fmt"
	"strings"
)

// reportChangeCap bounds how many changes the console report prints per file.
const reportChangeCap = 5

// FormatReport formats a scan result for terminal output.
func FormatReport(result ScanResult) string {
	var sb strings.Builder

	sb.WriteString("\n╔════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║           ShieldClaw Drift Detection Report            ║\n")
	sb.WriteString("╚════════════════════════════════════════════════════════╝\n\n")

	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", result.Timestamp.Format("2006-01-02T15:04:05Z07:00")))
	sb.WriteString(fmt.Sprintf("Total files monitored: %d\n", result.TotalFiles))
	sb.WriteString(fmt.Sprintf("Files with drift: %d\n", result.FilesWithDrift))
	sb.WriteString("\nDetails:\n\n")

	for _, detail := range result.Details {
		switch detail.Status {
		case StatusOK:
			sb.WriteString(fmt.Sprintf("✓ %s: OK\n", detail.FilePath))
		case StatusDrift:
			sb.WriteString(fmt.Sprintf("✗ %s: DRIFT DETECTED\n", detail.FilePath))
			for i, change := range detail.Changes {
				if i >= reportChangeCap {
					sb.WriteString(fmt.Sprintf("  … %d more change(s)\n", len(detail.Changes)-reportChangeCap))
					break
				}
				sb.WriteString(fmt.Sprintf("  - %s: %s\n", change.Kind, change.Path))
			}
		case StatusMissing:
			sb.WriteString(fmt.Sprintf("⚠ %s: MISSING\n", detail.FilePath))
		case StatusNoBaseline:
			sb.WriteString(fmt.Sprintf("⚠ %s: NO BASELINE\n", detail.FilePath))
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatJSON formats a result object as indented JSON.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
