package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFillPlaceholders(t *testing.T) {
	got := fillPlaceholders("project={{project}} date={{date}}", "/work/demo")
	if !strings.Contains(got, "project=/work/demo") {
		t.Fatalf("project placeholder not filled: %q", got)
	}
	if strings.Contains(got, "{{date}}") {
		t.Fatalf("date placeholder not filled: %q", got)
	}
}

func TestBuildSystemPromptAppendsProjectNotes(t *testing.T) {
	dir := t.TempDir()
	notes := "Always run gofmt before committing."
	if err := os.WriteFile(filepath.Join(dir, "AGENTS.md"), []byte(notes), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	prompt := BuildSystemPrompt(dir)
	if !strings.Contains(prompt, "Project notes from AGENTS.md") {
		t.Fatalf("prompt missing notes header:\n%s", prompt)
	}
	if !strings.Contains(prompt, notes) {
		t.Fatal("prompt missing notes content")
	}
}

func TestBuildSystemPromptWithoutNotes(t *testing.T) {
	prompt := BuildSystemPrompt(t.TempDir())
	if strings.Contains(prompt, "Project notes") {
		t.Fatalf("unexpected notes section:\n%s", prompt)
	}
	if strings.Contains(prompt, "{{project}}") {
		t.Fatal("project placeholder not filled")
	}
}
