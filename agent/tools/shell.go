package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"codeward/component/tool"
	"codeward/config"
	"codeward/pkg/os"
	"codeward/pkg/schema"
	"codeward/pkg/shellwords"
	"codeward/pkg/xstring"
)

const (
	maxOutputLen       = 15000
	defaultExecTimeout = 30 * time.Second
)

type RunCommandInput struct {
	Command    string `json:"command"               jsonschema:"description=The command to execute along with its arguments"`
	WorkingDir string `json:"working_dir,omitempty" jsonschema:"description=Optional working directory relative to the workspace root"`
}

type runFunc func(ctx context.Context, name string, args []string, dir string) (stdout, stderr []byte, err error)

// RunCommand executes a single allowlisted command directly, never
// through a shell. Checks run in a fixed order: metacharacters first
// so nothing shell-like is ever tokenized, then the blocklist, then
// tokenization, then the allowlist, then workspace confinement.
type RunCommand struct {
	def  tool.Definition
	cfg  config.ShellConfig
	root string
	run  runFunc
}

func NewRunCommand(cfg config.ShellConfig, root string) *RunCommand {
	def := tool.Definition{
		Name: "run_command",
		Description: fmt.Sprintf(
			"Execute a command on %s inside the workspace. No shell features: one command with arguments. Pipes and redirection are not supported.",
			os.GetSystemDistro(),
		),
		Schema:    schema.Get[RunCommandInput]().Ptr(),
		Dangerous: true,
	}
	t := &RunCommand{def: def, cfg: cfg, root: root}
	t.run = execRun
	return t
}

func (t *RunCommand) Definition() tool.Definition {
	return t.def
}

func (t *RunCommand) Invoke(ctx context.Context, arguments string) (string, error) {
	var input RunCommandInput
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("invalid arguments for run_command: %w. Pass a JSON object matching the tool schema", err)
		}
	}

	command := strings.TrimSpace(input.Command)
	if command == "" {
		return "", errors.New("command is empty. Pass the command to execute")
	}

	if meta := shellwords.FindMetachar(command); meta != "" {
		return "", fmt.Errorf("command contains the shell operator %q which is not supported. Run commands one at a time without pipes or redirection", meta)
	}

	for _, blocked := range t.cfg.Blocked {
		if blocked != "" && strings.Contains(command, blocked) {
			return "", fmt.Errorf("command contains the blocked pattern %q and cannot be run. Use a narrower command", blocked)
		}
	}

	tokens, err := shellwords.Split(command)
	if err != nil {
		return "", fmt.Errorf("failed to parse command: %w. Check the quoting", err)
	}
	if len(tokens) == 0 {
		return "", errors.New("command is empty. Pass the command to execute")
	}

	if !slices.Contains(t.cfg.Allowed, tokens[0]) {
		return "", fmt.Errorf("%q is not an allowed command. Allowed commands: %s. Ask the user to add it to shell.allowed in the config",
			tokens[0], strings.Join(t.cfg.Allowed, ", "))
	}

	dir := t.root
	if wd := strings.TrimSpace(input.WorkingDir); wd != "" {
		dir, err = resolvePath(t.root, wd)
		if err != nil {
			return "", err
		}
	}

	timeout := time.Duration(t.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := t.run(ctx, tokens[0], tokens[1:], dir)
	output := composeOutput(stdout, stderr)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("command timed out after %s and was killed. Use a faster command or raise shell.timeout_seconds in the config", timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("command failed (exit %d)\n%s\nInspect the output and adjust the command", exitErr.ExitCode(), output)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("executable %q was not found. Check the spelling or install it first", tokens[0])
		}
		return "", fmt.Errorf("command failed: %v\n%s\nInspect the output and adjust the command", err, output)
	}

	return output, nil
}

func execRun(ctx context.Context, name string, args []string, dir string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Do not wait forever on inherited pipes after the kill.
	cmd.WaitDelay = 3 * time.Second

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func composeOutput(stdout, stderr []byte) string {
	var sb strings.Builder
	sb.Grow(len(stdout) + len(stderr) + 32)

	sb.WriteString("STDOUT:\n")
	if len(stdout) > 0 {
		sb.WriteString(strings.TrimRight(xstring.FromBytes(stdout), "\n"))
	} else {
		sb.WriteString("(empty)")
	}
	sb.WriteString("\nSTDERR:\n")
	if len(stderr) > 0 {
		sb.WriteString(strings.TrimRight(xstring.FromBytes(stderr), "\n"))
	} else {
		sb.WriteString("(empty)")
	}

	return truncateOutput(sb.String())
}

func truncateOutput(s string) string {
	if len(s) <= maxOutputLen {
		return s
	}
	more := len(s) - maxOutputLen
	return s[:maxOutputLen] + fmt.Sprintf("\n... (truncated, %d more chars)", more)
}
