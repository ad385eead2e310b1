package handlers

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/types"
	"codeward/event"
	"codeward/safety"
)

// GateBridge carries gate prompts from the turn goroutine into the
// bubbletea loop. Prompt blocks the agent until the dialog resolves or
// the turn context dies; either way the gate gets exactly one answer.
type GateBridge struct {
	program   *tea.Program
	bus       *event.Bus
	sessionId string
}

func NewGateBridge(program *tea.Program, bus *event.Bus, sessionId string) *GateBridge {
	return &GateBridge{
		program:   program,
		bus:       bus,
		sessionId: sessionId,
	}
}

// Prompt implements safety.Prompter.
func (h *GateBridge) Prompt(ctx context.Context, req *safety.Request) (safety.Decision, error) {
	if req.Diff != "" {
		h.bus.Publish(event.New(event.TypeDiff, event.SourceUI, h.sessionId, map[string]any{
			"path": req.Path,
			"diff": req.Diff,
		}))
	}

	// Buffered so a late dialog answer after cancellation has
	// somewhere to go.
	respCh := make(chan safety.Decision, 1)
	h.program.Send(types.DecisionRequest{
		Req:  req,
		Resp: respCh,
	})

	select {
	case d := <-respCh:
		return d, nil
	case <-ctx.Done():
		return safety.DecisionDeny, ctx.Err()
	}
}

// RequireArmed implements safety.Prompter.
func (h *GateBridge) RequireArmed(ctx context.Context, req *safety.Request) {
	done := make(chan struct{})
	h.program.Send(types.ArmRequired{
		Req:  req,
		Done: done,
	})

	select {
	case <-done:
	case <-ctx.Done():
	}
}
