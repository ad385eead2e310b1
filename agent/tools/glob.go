package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"codeward/component/tool"
)

const maxGlobMatches = 200

type GlobInput struct {
	Pattern string `json:"pattern" jsonschema:"description=A glob pattern like **/*.go matched against the workspace root"`
}

// Glob finds files by pattern. Matching is rooted at the workspace so
// the pattern cannot reach outside it.
func Glob(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "glob",
		Description: "Find files matching a glob pattern. Supports ** for recursive matching.",
	}, func(ctx context.Context, input GlobInput) (string, error) {
		pattern := strings.TrimSpace(input.Pattern)
		if pattern == "" {
			return "", fmt.Errorf("pattern is empty. Pass a glob pattern like **/*.go")
		}

		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return "", fmt.Errorf("invalid glob pattern %q: %w. See the doublestar pattern syntax", pattern, err)
		}
		if len(matches) == 0 {
			return fmt.Sprintf("No files match %s", pattern), nil
		}

		total := len(matches)
		if total > maxGlobMatches {
			matches = matches[:maxGlobMatches]
		}
		out := strings.Join(matches, "\n")
		if total > maxGlobMatches {
			out += fmt.Sprintf("\n... and %d more", total-maxGlobMatches)
		}
		return out, nil
	})
}
