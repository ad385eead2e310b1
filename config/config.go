package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	ApiKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
}

type AgentConfig struct {
	// MaxIterations bounds tool-call round trips within one turn.
	MaxIterations int `yaml:"max_iterations"`
	// ContextWindow is the model context size in tokens, for the
	// context gauge in the status bar.
	ContextWindow int64 `yaml:"context_window"`
}

type ShellConfig struct {
	// Allowed is the executable allowlist checked against the first
	// token of every run_command call.
	Allowed []string `yaml:"allowed"`
	// Blocked substrings reject a command wherever they occur in it.
	Blocked        []string `yaml:"blocked"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

type UIConfig struct {
	// Markdown renders finished assistant turns through glamour.
	Markdown bool   `yaml:"markdown"`
	LogLevel string `yaml:"log_level"`
}

type SessionConfig struct {
	// Autosave is a cron spec for transcript flushes.
	Autosave string `yaml:"autosave"`
}

type MCPServerConfig struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Env     []string `yaml:"env"`
}

// The configuration for codeward. Loaded once at startup; nothing in
// the app writes it back.
type Config struct {
	DefaultProvider string                    `yaml:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
	Agent           AgentConfig               `yaml:"agent"`
	Shell           ShellConfig               `yaml:"shell"`
	UI              UIConfig                  `yaml:"ui"`
	Session         SessionConfig             `yaml:"session"`
	MCP             []MCPServerConfig         `yaml:"mcp"`
}

func BootstrapConfig() Config {
	return Config{
		DefaultProvider: "openai",
		Providers: map[string]ProviderConfig{
			"openai": {
				ApiKey:       "",
				BaseURL:      "https://api.openai.com/v1",
				DefaultModel: "gpt-4o-mini",
			},
			"anthropic": {
				ApiKey:       "",
				DefaultModel: "claude-sonnet-4-5",
			},
		},
		Agent: AgentConfig{
			MaxIterations: 20,
			ContextWindow: 128000,
		},
		Shell: ShellConfig{
			Allowed:        []string{"ls", "cat", "grep", "git", "pytest", "npm", "go", "echo", "pwd", "mkdir", "touch"},
			Blocked:        []string{"rm -rf", "sudo", "/dev/"},
			TimeoutSeconds: 30,
		},
		UI: UIConfig{
			Markdown: true,
			LogLevel: "info",
		},
		Session: SessionConfig{
			Autosave: "@every 15s",
		},
	}
}

const bootstrapHeader = `# codeward configuration.
# Fill in providers.<name>.api_key, or export CODEWARD_API_KEY instead.
# The shell allowlist below is checked against the first token of every
# run_command call; blocked substrings reject a command outright.
`

// Bootstrap writes a commented starter config to path. Fails when the
// file already exists so it never clobbers a real config.
func Bootstrap(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	c := BootstrapConfig()
	content, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(bootstrapHeader), content...), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// LoadConfig reads path, or the workspace config when path is empty.
// A missing file is not an error: you get the bootstrap defaults and a
// log line, so the TUI comes up before anyone has run setup.
func LoadConfig(path string) (Config, error) {
	c := BootstrapConfig()

	if path == "" {
		var err error
		path, err = GetWorkspaceConfigPath()
		if err != nil {
			return c, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("[config] no config file, using defaults", "path", path)
			return c, nil
		}
		return c, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	return c, nil
}
