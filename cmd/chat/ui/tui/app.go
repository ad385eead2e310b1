package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/handlers"
	"codeward/cmd/chat/ui/types"
	"codeward/safety"
)

// Run starts the TUI application and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	model := New(ctx, deps)

	program := tea.NewProgram(&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Wire the gate into the UI. Both callbacks fire on the turn
	// goroutine; program.Send is safe from there.
	bridge := handlers.NewGateBridge(program, deps.Bus, deps.SessionId)
	deps.Gate.SetPrompter(bridge)
	deps.Gate.SetDecisionSink(func(rec safety.Record) {
		if deps.Log != nil {
			_ = deps.Log.AppendDecision(rec.Tool, string(rec.Category), string(rec.Outcome), rec.Interactive)
		}
		program.Send(types.DecisionRecord(rec))
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
