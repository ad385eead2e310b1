package config

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	workspaceDir     string
	workspaceDirOnce sync.Once

	projectDir     string
	projectDirOnce sync.Once
)

const configFileName = "config.yaml"

// GetWorkspaceDir is where codeward keeps its own state (config, log,
// session transcripts), not the directory being worked on.
func GetWorkspaceDir() string {
	workspaceDirOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}
		workspaceDir = filepath.Join(home, ".codeward")
	})

	return workspaceDir
}

// GetProjectDir is the directory the agent operates on: the cwd the
// binary was started in. Tool paths and the shell cwd are confined to
// it.
func GetProjectDir() string {
	projectDirOnce.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		projectDir = cwd
	})

	return projectDir
}

func GetWorkspaceConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".codeward", configFileName), nil
}

func GetLogPath() string {
	return filepath.Join(GetWorkspaceDir(), "codeward.log")
}

func GetSessionsDir() string {
	return filepath.Join(GetWorkspaceDir(), "sessions")
}

// GetProjectSessionsDir separates transcripts per project so two
// checkouts never share history.
func GetProjectSessionsDir() string {
	sum := sha1.Sum([]byte(GetProjectDir()))
	return filepath.Join(GetSessionsDir(), hex.EncodeToString(sum[:])[:12])
}
