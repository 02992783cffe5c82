// Package scanner screens log streams for known prompt-injection phrasing.
// Matching is literal case-insensitive substring containment against a fixed
// dictionary: a heuristic screen, not a classifier, so false positives on
// benign text are expected and accepted.
package scanner

import (
	"bufio"
	"io"
	"os"
	"strings"

	"shieldclaw/internal/alert"
)

// Patterns is the fixed dictionary of injection-indicative phrases. Every
// entry must be lowercase; lines are lowered before matching.
var Patterns = []string{
	"ignore previous instructions",
	"disregard all previous",
	"you are now",
	"new instructions",
	"system prompt",
	"forget everything",
	"developer mode",
	"jailbreak",
}

// excerptCap bounds how much of a matched line is carried on the alert.
const excerptCap = 200

// Match is one (line, pattern) hit. A line containing several patterns
// produces several matches; the scanner does not deduplicate.
type Match struct {
	LineNumber int            `json:"line_number"`
	Pattern    string         `json:"pattern"`
	Excerpt    string         `json:"excerpt"`
	Severity   alert.Severity `json:"severity"`
}

// Scan reads r line by line and returns all pattern matches. Every match is
// severity critical unconditionally.
func Scan(r io.Reader) ([]Match, error) {
	var matches []Match

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		lower := strings.ToLower(line)

		for _, pattern := range Patterns {
			if strings.Contains(lower, pattern) {
				matches = append(matches, Match{
					LineNumber: lineNum,
					Pattern:    pattern,
					Excerpt:    excerpt(line),
					Severity:   alert.SeverityCritical,
				})
			}
		}
	}

	return matches, sc.Err()
}

// ScanFile scans a log file on disk.
func ScanFile(path string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Scan(f)
}

func excerpt(line string) string {
	line = strings.TrimSpace(line)
	if len(line) > excerptCap {
		return line[:excerptCap]
	}
	return line
}
