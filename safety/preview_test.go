package safety

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProfile() Profile {
	return Profile{Category: CategoryFileWrite, Gated: true, Preview: PreviewWrite}
}

// canonTemp resolves the temp dir so prefix checks against the
// previewer's canonicalized root compare like with like.
func canonTemp(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func replaceProfile() Profile {
	return Profile{Category: CategoryFileWrite, Gated: true, Preview: PreviewReplace}
}

func TestPreviewWriteNewFile(t *testing.T) {
	root := t.TempDir()
	p := NewPreviewer(root)

	path, diff := p.Build(writeProfile(), map[string]any{
		"path":    "notes.txt",
		"content": "hello\nworld\n",
	})
	if path != "notes.txt" {
		t.Fatalf("path = %q, want notes.txt", path)
	}
	if !strings.Contains(diff, "+hello") || !strings.Contains(diff, "+world") {
		t.Fatalf("diff missing added lines:\n%s", diff)
	}
	if !strings.Contains(diff, "--- a/notes.txt") || !strings.Contains(diff, "+++ b/notes.txt") {
		t.Fatalf("diff missing file headers:\n%s", diff)
	}
}

func TestPreviewWriteOverwrite(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "cfg.yaml"), []byte("old: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPreviewer(root)

	_, diff := p.Build(writeProfile(), map[string]any{
		"path":    "cfg.yaml",
		"content": "new: 2\n",
	})
	if !strings.Contains(diff, "-old: 1") || !strings.Contains(diff, "+new: 2") {
		t.Fatalf("diff should show both sides:\n%s", diff)
	}
}

func TestPreviewWriteIdenticalContent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "same.txt"), []byte("stable\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPreviewer(root)

	path, diff := p.Build(writeProfile(), map[string]any{
		"path":    "same.txt",
		"content": "stable\n",
	})
	if path != "same.txt" || diff != "" {
		t.Fatalf("identical content should yield empty diff, got path=%q diff=%q", path, diff)
	}
}

func TestPreviewReplace(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("alpha\nbeta\ngamma\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPreviewer(root)

	path, diff := p.Build(replaceProfile(), map[string]any{
		"path":    "main.go",
		"old_str": "beta",
		"new_str": "delta",
	})
	if path != "main.go" {
		t.Fatalf("path = %q, want main.go", path)
	}
	if !strings.Contains(diff, "-beta") || !strings.Contains(diff, "+delta") {
		t.Fatalf("diff should show the replacement:\n%s", diff)
	}
}

func TestPreviewReplaceOldStrMissing(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewPreviewer(root)

	path, diff := p.Build(replaceProfile(), map[string]any{
		"path":    "main.go",
		"old_str": "not-there",
		"new_str": "x",
	})
	if path != "main.go" || diff != "" {
		t.Fatalf("missing old_str should yield empty diff, got path=%q diff=%q", path, diff)
	}
}

func TestPreviewRejectsPathEscape(t *testing.T) {
	root := t.TempDir()
	p := NewPreviewer(root)

	path, diff := p.Build(writeProfile(), map[string]any{
		"path":    filepath.Join("..", "escape.txt"),
		"content": "x",
	})
	if path != "" || diff != "" {
		t.Fatalf("escaping path should yield no preview, got path=%q diff=%q", path, diff)
	}
}

func TestPreviewAbsolutePathInsideRoot(t *testing.T) {
	root := canonTemp(t)
	p := NewPreviewer(root)

	abs := filepath.Join(root, "sub", "file.txt")
	path, diff := p.Build(writeProfile(), map[string]any{
		"path":    abs,
		"content": "data\n",
	})
	if path != filepath.Join("sub", "file.txt") {
		t.Fatalf("path = %q, want sub/file.txt", path)
	}
	if !strings.Contains(diff, "+data") {
		t.Fatalf("diff missing content:\n%s", diff)
	}
}

func TestPreviewNoneAndBadArgs(t *testing.T) {
	root := t.TempDir()
	p := NewPreviewer(root)

	if path, diff := p.Build(Profile{Preview: PreviewNone}, map[string]any{"path": "a"}); path != "" || diff != "" {
		t.Fatalf("PreviewNone should yield nothing, got path=%q diff=%q", path, diff)
	}
	if path, diff := p.Build(writeProfile(), nil); path != "" || diff != "" {
		t.Fatalf("nil args should yield nothing, got path=%q diff=%q", path, diff)
	}
	if path, diff := p.Build(writeProfile(), map[string]any{"path": 42}); path != "" || diff != "" {
		t.Fatalf("non-string path should yield nothing, got path=%q diff=%q", path, diff)
	}
	if path, diff := p.Build(replaceProfile(), map[string]any{"path": "f.txt", "old_str": ""}); path != "" || diff != "" {
		t.Fatalf("empty old_str should yield nothing, got path=%q diff=%q", path, diff)
	}
}
