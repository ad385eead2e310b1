package safety

import (
	"os"
	"path/filepath"
	"strings"

	"codeward/pkg/udiff"
)

// Previewer builds the advisory unified diff shown in decision dialogs
// for file-writing tools. It only ever reads; the preview is display
// material, not a gating input, so anything it cannot compute (bad
// args, path escape, binary noise) degrades to an empty diff and the
// gate still asks.
type Previewer struct {
	root string
}

// NewPreviewer confines previews to the workspace root.
func NewPreviewer(root string) *Previewer {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &Previewer{root: abs}
}

// Build returns the workspace-relative path and unified diff for the
// prospective change, or ("", "") when no preview applies.
func (p *Previewer) Build(profile Profile, args map[string]any) (string, string) {
	switch profile.Preview {
	case PreviewWrite:
		return p.diffWrite(argStr(args, "path"), argStr(args, "content"))
	case PreviewReplace:
		return p.diffReplace(argStr(args, "path"), argStr(args, "old_str"), argStr(args, "new_str"))
	default:
		return "", ""
	}
}

func (p *Previewer) diffWrite(path, content string) (string, string) {
	target, rel, ok := p.resolve(path)
	if !ok {
		return "", ""
	}

	current := readOrEmpty(target)
	if current == content {
		return rel, ""
	}

	return rel, udiff.Unified(current, content, "a/"+rel, "b/"+rel)
}

func (p *Previewer) diffReplace(path, oldStr, newStr string) (string, string) {
	target, rel, ok := p.resolve(path)
	if !ok || oldStr == "" {
		return "", ""
	}

	current := readOrEmpty(target)
	if !strings.Contains(current, oldStr) {
		return rel, ""
	}

	updated := strings.Replace(current, oldStr, newStr, 1)
	return rel, udiff.Unified(current, updated, "a/"+rel, "b/"+rel)
}

// resolve canonicalizes path against the workspace root and rejects
// anything that lands outside it.
func (p *Previewer) resolve(path string) (target, rel string, ok bool) {
	if path == "" {
		return "", "", false
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(p.root, path)
	}
	path = filepath.Clean(path)

	// Symlinked parents could point anywhere; resolve the deepest
	// existing ancestor before the prefix check.
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	} else if resolvedDir, err := filepath.EvalSymlinks(filepath.Dir(path)); err == nil {
		path = filepath.Join(resolvedDir, filepath.Base(path))
	}

	if path != p.root && !strings.HasPrefix(path, p.root+string(filepath.Separator)) {
		return "", "", false
	}

	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return "", "", false
	}

	return path, rel, true
}

func readOrEmpty(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func argStr(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}
