package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeward/config"
	pkgos "codeward/pkg/os"
)

const promptSeparator = "\n\n---\n\n"

// projectContextFiles are picked up from the project root when present
// and appended to the system prompt, most specific last.
var projectContextFiles = []string{
	"AGENTS.md",
	"CODEWARD.md",
}

const basePrompt = `You are codeward, a coding agent running in a terminal session.

You operate on the project at {{project}} on {{distro}}. Today is {{date}}.

How to work:
- Inspect before you change: read files and run read-only git commands freely.
- Make changes with write_file and str_replace; keep edits minimal and focused.
- run_command executes a single command without a shell. Pipes, redirection
  and command chaining are not available; run commands one at a time.
- Some tools require the user to approve each call. A denial is an answer:
  do not retry a denied call with the same arguments.
- After changing code, verify it: run the project's tests or linters when
  they are on the allowed command list.
- Keep answers short. The user is in a terminal, not a browser.`

// BuildSystemPrompt assembles the system prompt: the built-in base, an
// optional workspace override, then any project context files.
func BuildSystemPrompt(projectDir string) string {
	var sb strings.Builder

	base := basePrompt
	if override, err := os.ReadFile(filepath.Join(config.GetWorkspaceDir(), "prompts", "SYSTEM.md")); err == nil {
		base = string(override)
	}
	sb.WriteString(fillPlaceholders(base, projectDir))

	for _, name := range projectContextFiles {
		content, err := os.ReadFile(filepath.Join(projectDir, name))
		if err != nil {
			continue
		}
		sb.WriteString(promptSeparator)
		sb.WriteString(fmt.Sprintf("Project notes from %s:\n\n", name))
		sb.Write(content)
	}

	return sb.String()
}

func fillPlaceholders(s, projectDir string) string {
	r := strings.NewReplacer(
		"{{project}}", projectDir,
		"{{distro}}", pkgos.GetSystemDistro(),
		"{{date}}", time.Now().Format(time.DateOnly),
		"{{workspace}}", config.GetWorkspaceDir(),
	)
	return r.Replace(s)
}
