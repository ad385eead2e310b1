package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"codeward/component/tool"
)

const gitTimeout = 30 * time.Second

// runGit executes git with fixed argv against the workspace repo.
// Arguments never pass through a shell.
func runGit(ctx context.Context, root string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	argv := append([]string{"-C", root}, args...)
	cmd := exec.CommandContext(ctx, "git", argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("git %s failed: %v: %s. Fix the repository state and try again",
			strings.Join(args, " "), err, detail)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		out = "(no output)"
	}
	return truncateOutput(out), nil
}

type GitStatusInput struct{}

func GitStatus(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "git_status",
		Description: "Show the working tree status of the workspace repository.",
	}, func(ctx context.Context, input GitStatusInput) (string, error) {
		return runGit(ctx, root, "status", "--short", "--branch")
	})
}

type GitDiffInput struct {
	Path   string `json:"path,omitempty"   jsonschema:"description=Optional path to narrow the diff to"`
	Staged bool   `json:"staged,omitempty" jsonschema:"description=Show the staged diff instead of the working tree diff"`
}

func GitDiff(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "git_diff",
		Description: "Show uncommitted changes in the workspace repository.",
	}, func(ctx context.Context, input GitDiffInput) (string, error) {
		args := []string{"diff"}
		if input.Staged {
			args = append(args, "--cached")
		}
		if input.Path != "" {
			args = append(args, "--", input.Path)
		}
		return runGit(ctx, root, args...)
	})
}

type GitLogInput struct {
	Count int `json:"count,omitempty" jsonschema:"description=How many commits to show. Defaults to 10"`
}

func GitLog(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "git_log",
		Description: "Show recent commits in the workspace repository.",
	}, func(ctx context.Context, input GitLogInput) (string, error) {
		count := input.Count
		if count <= 0 {
			count = 10
		}
		return runGit(ctx, root, "log", "--oneline", "-n", strconv.Itoa(count))
	})
}

type GitAddInput struct {
	Paths []string `json:"paths" jsonschema:"description=The paths to stage"`
}

func GitAdd(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "git_add",
		Description: "Stage the given paths in the workspace repository.",
		Dangerous:   true,
	}, func(ctx context.Context, input GitAddInput) (string, error) {
		if len(input.Paths) == 0 {
			return "", fmt.Errorf("paths is empty. Pass the paths to stage")
		}
		args := append([]string{"add", "--"}, input.Paths...)
		if _, err := runGit(ctx, root, args...); err != nil {
			return "", err
		}
		return fmt.Sprintf("Staged %s", strings.Join(input.Paths, ", ")), nil
	})
}

type GitCommitInput struct {
	Message string `json:"message" jsonschema:"description=The commit message"`
}

func GitCommit(root string) tool.Tool {
	return tool.Func(tool.Definition{
		Name:        "git_commit",
		Description: "Commit staged changes in the workspace repository.",
		Dangerous:   true,
	}, func(ctx context.Context, input GitCommitInput) (string, error) {
		if strings.TrimSpace(input.Message) == "" {
			return "", fmt.Errorf("message is empty. Pass a commit message")
		}
		return runGit(ctx, root, "commit", "-m", input.Message)
	})
}
