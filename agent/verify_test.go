package agent

import (
	"strings"
	"testing"
)

func TestIsVerifyCommand(t *testing.T) {
	tests := []struct {
		command string
		want    bool
	}{
		{"go test ./...", true},
		{"pytest -x tests/", true},
		{"npm test", true},
		{"cargo test --release", true},
		{"ruff check .", true},
		{"mypy src", true},
		{"tox -e py311", true},
		{"ls -la", false},
		{"npm install", false},
		{"go build ./...", false},
	}
	for _, tt := range tests {
		if got := IsVerifyCommand(tt.command); got != tt.want {
			t.Fatalf("IsVerifyCommand(%q) = %v, want %v", tt.command, got, tt.want)
		}
	}
}

func TestSummarizeVerifyFindsVerdictLine(t *testing.T) {
	output := strings.Join([]string{
		"STDOUT:",
		"=== RUN TestThing",
		"--- PASS: TestThing (0.00s)",
		"PASS",
		"ok  \tcodeward/agent\t0.31s",
		"STDERR:",
		"(empty)",
	}, "\n")

	got := SummarizeVerify(output, false)
	if !strings.Contains(got, "ok") && !strings.Contains(got, "PASS") {
		t.Fatalf("summary = %q, want a verdict line", got)
	}
}

func TestSummarizeVerifyPytestCounts(t *testing.T) {
	output := "collected 12 items\n............\n12 passed in 0.42s"
	got := SummarizeVerify(output, false)
	if !strings.Contains(got, "12 passed") {
		t.Fatalf("summary = %q, want pytest counts", got)
	}
}

func TestSummarizeVerifyFallsBackToLastLine(t *testing.T) {
	got := SummarizeVerify("no verdict anywhere\njust chatter", true)
	if got != "just chatter" {
		t.Fatalf("summary = %q, want last non-empty line", got)
	}
}

func TestSummarizeVerifyEmptyOutput(t *testing.T) {
	if got := SummarizeVerify("", true); got != "verification failed" {
		t.Fatalf("summary = %q, want failure default", got)
	}
	if got := SummarizeVerify("  \n ", false); got != "verification passed" {
		t.Fatalf("summary = %q, want success default", got)
	}
}

func TestSummarizeVerifyClampsLongLines(t *testing.T) {
	long := strings.Repeat("x", 300) + " 3 failed"
	got := SummarizeVerify(long, true)
	if len(got) > 203 {
		t.Fatalf("summary length = %d, want clamped", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("summary = %q, want ellipsis suffix", got)
	}
}
