package agent

import (
	"regexp"
	"strings"
)

// verifyPattern spots commands whose output is a pass/fail verdict
// worth surfacing as a dedicated card.
var verifyPattern = regexp.MustCompile(`\b(pytest|npm test|go test|ruff|cargo test|jest|vitest|mypy|tox)\b`)

// summaryPattern pulls the verdict line out of a test runner's tail.
var summaryPattern = regexp.MustCompile(`(?i)(\d+ passed|\d+ failed|\d+ error(s)?|^ok\b|^PASS\b|^FAIL\b|FAILED)`)

// IsVerifyCommand reports whether command looks like a test or lint run.
func IsVerifyCommand(command string) bool {
	return verifyPattern.MatchString(command)
}

// SummarizeVerify condenses a verify command's output into a one-line
// verdict. It scans the last lines for a summary; failing that it
// falls back to the last non-empty line.
func SummarizeVerify(output string, failed bool) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")

	// Walk from the end: verdict lines live at the bottom.
	const window = 15
	start := len(lines) - window
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if summaryPattern.MatchString(line) {
			return clampLine(line)
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return clampLine(line)
		}
	}
	if failed {
		return "verification failed"
	}
	return "verification passed"
}

func clampLine(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
