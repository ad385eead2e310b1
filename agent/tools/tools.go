package tools

import (
	"codeward/component/tool"
	"codeward/config"
	"codeward/safety"
)

// RegisterAll wires every built-in tool into the registry together
// with its risk profile. Read-only tools pass the gate unasked; tools
// with side effects are gated and carry the category their blanket
// approval is keyed by.
func RegisterAll(reg *tool.Registry, catalog *safety.Catalog, cfg *config.Config, root string) {
	register := func(t tool.Tool, p safety.Profile) {
		reg.Register(t)
		catalog.Register(t.Definition().Name, p)
	}

	readOnly := safety.Profile{
		Category: safety.CategoryOther,
		Reason:   "Tool execution",
		Severity: safety.SeverityLow,
	}
	register(ReadFile(root), readOnly)
	register(ListDir(root), readOnly)
	register(Glob(root), readOnly)
	register(FetchPage(), readOnly)

	register(WriteFile(root), safety.Profile{
		Category: safety.CategoryFileWrite,
		Reason:   "Modifies workspace files",
		Severity: safety.SeverityHigh,
		Gated:    true,
		Preview:  safety.PreviewWrite,
	})
	register(StrReplace(root), safety.Profile{
		Category: safety.CategoryFileWrite,
		Reason:   "Modifies workspace files",
		Severity: safety.SeverityHigh,
		Gated:    true,
		Preview:  safety.PreviewReplace,
	})

	register(NewRunCommand(cfg.Shell, root), safety.Profile{
		Category: safety.CategoryShellExec,
		Reason:   "Executes shell commands",
		Severity: safety.SeverityHigh,
		Gated:    true,
	})

	register(GitStatus(root), readOnly)
	register(GitDiff(root), readOnly)
	register(GitLog(root), readOnly)

	gitWrite := safety.Profile{
		Category: safety.CategoryGitOp,
		Reason:   "Changes repository state",
		Severity: safety.SeverityMedium,
		Gated:    true,
	}
	register(GitAdd(root), gitWrite)
	register(GitCommit(root), gitWrite)
}
