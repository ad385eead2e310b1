package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"

	"codeward/agent"
	"codeward/agent/tools"
	"codeward/cmd/chat/ui/tui"
	"codeward/component/mcp"
	"codeward/component/tool"
	"codeward/config"
	"codeward/event"
	"codeward/llm/estimator"
	"codeward/llm/factory"
	"codeward/safety"
	"codeward/session"
)

// prepare assembles everything one chat session needs. The returned
// cleanup flushes and releases it all; call it after the TUI exits.
func prepare(ctx context.Context) (tui.Deps, func(), error) {
	noop := func() {}

	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return tui.Deps{}, noop, err
	}

	setupLogger(cfg.UI.LogLevel)

	providerName := cfg.DefaultProvider
	provider, ok := cfg.Providers[providerName]
	if !ok {
		return tui.Deps{}, noop, fmt.Errorf("provider %q is not configured; run codeward setup", providerName)
	}
	model := provider.DefaultModel
	if flagModel != "" {
		model = flagModel
	}

	llmClient, err := factory.New(providerName, provider)
	if err != nil {
		return tui.Deps{}, noop, fmt.Errorf("failed to create llm client: %w", err)
	}

	projectDir := config.GetProjectDir()

	registry := tool.NewRegistry()
	catalog := safety.NewCatalog()
	tools.RegisterAll(registry, catalog, &cfg, projectDir)

	loader := mcp.NewLoader()
	loader.Connect(ctx, cfg.MCP, registry, catalog)

	gate := safety.NewGate(catalog, safety.NewTracker())
	gate.SetPreviewer(safety.NewPreviewer(projectDir))

	bus := event.NewBus()

	manager := session.NewManager(config.GetProjectSessionsDir())
	sessionId, resumed := pickSession(manager)
	log, err := manager.GetOrCreate(sessionId)
	if err != nil {
		loader.Close()
		return tui.Deps{}, noop, err
	}

	cronRunner := cron.New()
	if spec := cfg.Session.Autosave; spec != "" {
		if _, err := cronRunner.AddFunc(spec, manager.SyncAll); err != nil {
			slog.Warn("[chat] invalid autosave spec, autosave disabled", "spec", spec, "error", err)
		}
	}
	cronRunner.Start()

	conv := agent.NewConversation(agent.BuildSystemPrompt(projectDir), log, estimator.NewHeuristic(), cfg.Agent.ContextWindow)
	if resumed {
		n := conv.Resume()
		slog.Info("[chat] session resumed", "id", sessionId, "messages", n)
	}

	ag := agent.New(agent.Config{
		Model:         model,
		MaxIterations: cfg.Agent.MaxIterations,
		ContextSize:   cfg.Agent.ContextWindow,
		SessionId:     sessionId,
	}, agent.Deps{
		LLM:      llmClient,
		Registry: registry,
		Gate:     gate,
		Bus:      bus,
		Conv:     conv,
	})

	// Size 1 and nonblocking: the pool is the second line of defense
	// behind the UI processing flag against concurrent turns.
	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		loader.Close()
		cronRunner.Stop()
		return tui.Deps{}, noop, err
	}

	cleanup := func() {
		cronRunner.Stop()
		loader.Close()
		manager.SyncAll()
		manager.CloseAll()
		pool.Release()
	}

	deps := tui.Deps{
		Cfg:       &cfg,
		Agent:     ag,
		Gate:      gate,
		Bus:       bus,
		Pool:      pool,
		Log:       log,
		SessionId: sessionId,
	}
	return deps, cleanup, nil
}

// pickSession resolves --resume into a concrete session id.
func pickSession(manager *session.Manager) (string, bool) {
	if flagResume == "" {
		return session.NewSessionId(), false
	}
	if flagResume == "latest" {
		if id, ok := manager.Latest(); ok {
			return id, true
		}
		slog.Warn("[chat] no session to resume, starting fresh")
		return session.NewSessionId(), false
	}
	return flagResume, true
}

// setupLogger sends slog to the workspace log file. The TUI owns the
// terminal, so nothing may write to stderr after this.
func setupLogger(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	if err := os.MkdirAll(config.GetWorkspaceDir(), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(config.GetLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
}
