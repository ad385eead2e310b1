package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"codeward/component/tool"
)

// maxFileBytes caps read_file output so a stray log dump or vendored
// bundle cannot blow up the model context.
const maxFileBytes = 256 * 1024

// resolvePath confines path under root. Relative paths join root;
// absolute ones must already sit inside it. Symlinks are followed
// through the deepest existing parent so a link cannot point the tool
// outside the workspace. The root is resolved the same way: os.Getwd
// can hand back a path through a symlink, and the prefix check only
// works when both sides are canonical.
func resolvePath(root, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required. Pass a path relative to the workspace root")
	}

	root = canonicalize(filepath.Clean(root))

	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = canonicalize(filepath.Clean(p))

	if p != root && !strings.HasPrefix(p, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes the workspace root. Use paths under %s", path, root)
	}
	return p, nil
}

func canonicalize(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	// Target may not exist yet; resolve its parent instead.
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(resolved, filepath.Base(p))
	}
	return p
}

type ReadFileInput struct {
	Path   string `json:"path"             jsonschema:"description=The path to the file to read"`
	Offset int    `json:"offset,omitempty" jsonschema:"description=1-based line to start reading from"`
	Limit  int    `json:"limit,omitempty"  jsonschema:"description=Maximum number of lines to return"`
}

// ReadFile reads a text file inside the workspace. Binary files are
// reported instead of dumped.
func ReadFile(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "read_file",
		Description: "Read the contents of a text file at the given path. Large files can be paged with offset and limit.",
	}, func(ctx context.Context, input ReadFileInput) (string, error) {
		path, err := resolvePath(root, input.Path)
		if err != nil {
			return "", err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w. Check the path with list_dir", input.Path, err)
		}

		if mt := mimetype.Detect(content); !isTextMime(mt) {
			return fmt.Sprintf("%s is a binary file (%s, %d bytes), not showing its contents", input.Path, mt.String(), len(content)), nil
		}

		text := string(content)
		if input.Offset > 0 || input.Limit > 0 {
			text, err = sliceLines(text, input.Offset, input.Limit)
			if err != nil {
				return "", fmt.Errorf("%w in %s. The file has fewer lines than offset", err, input.Path)
			}
		}

		if len(text) > maxFileBytes {
			more := len(text) - maxFileBytes
			return text[:maxFileBytes] + fmt.Sprintf("\n... (truncated, %d more bytes)", more), nil
		}
		return text, nil
	})
}

// sliceLines pages text by 1-based line offset and line count.
func sliceLines(text string, offset, limit int) (string, error) {
	lines := strings.Split(text, "\n")
	if offset < 1 {
		offset = 1
	}
	if offset > len(lines) {
		return "", fmt.Errorf("offset %d is past the last line %d", offset, len(lines))
	}
	lines = lines[offset-1:]
	if limit > 0 && limit < len(lines) {
		lines = lines[:limit]
	}
	return strings.Join(lines, "\n"), nil
}

// isTextMime walks the mime hierarchy looking for text/plain, which
// is the root of everything textual mimetype knows about.
func isTextMime(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

type WriteFileInput struct {
	Path    string `json:"path"    jsonschema:"description=The path to the file to write"`
	Content string `json:"content" jsonschema:"description=The full content to write to the file"`
}

// WriteFile writes a whole file, creating parent directories as needed.
func WriteFile(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "write_file",
		Description: "Write content to a file at the given path. Creates parent directories if necessary. Overwrites existing content.",
		Dangerous:   true,
	}, func(ctx context.Context, input WriteFileInput) (string, error) {
		path, err := resolvePath(root, input.Path)
		if err != nil {
			return "", err
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("failed to create parent directories for %s: %w", input.Path, err)
		}
		if err := os.WriteFile(path, []byte(input.Content), 0644); err != nil {
			return "", fmt.Errorf("failed to write file %s: %w", input.Path, err)
		}

		return fmt.Sprintf("Wrote %d bytes to %s", len(input.Content), input.Path), nil
	})
}

type StrReplaceInput struct {
	Path   string `json:"path"    jsonschema:"description=The path to the file to edit"`
	OldStr string `json:"old_str" jsonschema:"description=The exact text to replace. Only the first occurrence is replaced"`
	NewStr string `json:"new_str" jsonschema:"description=The replacement text"`
}

// StrReplace replaces the first occurrence of old_str in a file.
func StrReplace(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "str_replace",
		Description: "Replace the first occurrence of old_str with new_str in the given file.",
		Dangerous:   true,
	}, func(ctx context.Context, input StrReplaceInput) (string, error) {
		path, err := resolvePath(root, input.Path)
		if err != nil {
			return "", err
		}
		if input.OldStr == "" {
			return "", fmt.Errorf("old_str is empty. Pass the exact text to replace")
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w. Check the path with list_dir", input.Path, err)
		}

		text := string(content)
		if !strings.Contains(text, input.OldStr) {
			return "", fmt.Errorf("old_str not found in %s. Read the file and pass the exact text to replace", input.Path)
		}

		updated := strings.Replace(text, input.OldStr, input.NewStr, 1)
		if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
			return "", fmt.Errorf("failed to write file %s: %w", input.Path, err)
		}

		return fmt.Sprintf("Replaced 1 occurrence in %s", input.Path), nil
	})
}

type ListDirInput struct {
	Path string `json:"path" jsonschema:"description=The path to the directory to list"`
}

// ListDir lists one directory level, directories marked with a
// trailing slash.
func ListDir(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "list_dir",
		Description: "List the contents of a directory.",
	}, func(ctx context.Context, input ListDirInput) (string, error) {
		path, err := resolvePath(root, input.Path)
		if err != nil {
			return "", err
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return "", fmt.Errorf("failed to read directory %s: %w", input.Path, err)
		}
		if len(entries) == 0 {
			return "Directory is empty", nil
		}

		var sb strings.Builder
		sb.Grow(len(entries) * 16)
		for _, entry := range entries {
			sb.WriteString(entry.Name())
			if entry.IsDir() {
				sb.WriteByte('/')
			}
			sb.WriteByte('\n')
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	})
}
