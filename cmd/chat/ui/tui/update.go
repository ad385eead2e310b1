package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/tui/components"
	"codeward/cmd/chat/ui/types"
	"codeward/event"
	"codeward/safety"
)

// tickEvery is the drain cadence: buffered stream deltas hit the
// screen at most this often.
const tickEvery = 50 * time.Millisecond

// interruptMarker matches what the agent appends to the history, so
// the card and the replayed conversation agree.
const interruptMarker = "\n\n[Interrupted]"

func tickCmd() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles all model updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		newModel, cmd, handled := m.handleKeyPress(msg)
		if handled {
			return newModel, cmd
		}
		return newModel, newModel.input.Update(msg)

	case tea.MouseMsg:
		// Wheel goes to whichever scrollable surface is up
		if m.decision.IsVisible() {
			return m, m.decision.Update(msg)
		}
		if m.diffPanel.IsVisible() {
			return m, m.diffPanel.Update(msg)
		}
		return m, m.transcript.Update(msg)

	case decisionRequestMsg:
		// An Esc can land between the gate sending this request and
		// the loop processing it. The gate already took the deny from
		// the dying context then, so opening the dialog would strand
		// the user's answer in a channel nobody reads.
		if !m.processing {
			return m, nil
		}
		m.decision.Show(msg.Req, msg.Resp)
		m.status.SetMode(m.deps.Gate.Mode())
		return m, nil

	case armRequiredMsg:
		notice := fmt.Sprintf("The agent wants to run %s but the session is SAFE. Press F2 to arm, then ask again.", msg.Req.Tool)
		m.confirm.ShowNotice(notice, msg.Done)
		return m, nil

	case decisionRecordMsg:
		return m.handleDecisionRecord(msg), nil
	}

	// Blink, spinner frames and other component traffic
	var cmds []tea.Cmd
	if cmd := m.input.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.status.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleTick drains the event bus, flushes buffered deltas and
// re-arms the ticker.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	events := m.deps.Bus.Drain(drainLimit)
	m = m.applyEvents(events)
	m.transcript.FlushPending()

	m.ticks++
	if m.ticks%headerEvery == 0 {
		m.status.SetMode(m.deps.Gate.Mode())
	}

	return m, tickCmd()
}

// applyEvents folds drained events into the components in publish
// order. Card-producing events go through AppendCard, which flushes
// buffered deltas first, so the transcript order always matches the
// order the agent emitted things.
func (m Model) applyEvents(events []event.Event) Model {
	for _, e := range events {
		switch e.Type {
		case event.TypeMessage:
			m.transcript.BufferDelta(e.Str("delta"))

		case event.TypeToolResult:
			m.transcript.AppendCard(types.Card{
				Kind:    types.CardTool,
				Tool:    e.Str("tool_name"),
				Args:    e.Str("arguments"),
				Output:  e.Str("content"),
				IsError: e.Bool("is_error"),
			})
			m.logsPanel.Add(fmt.Sprintf("tool  %-12s error=%v", e.Str("tool_name"), e.Bool("is_error")))

		case event.TypePlan:
			m.transcript.AppendCard(types.Card{Kind: types.CardPlan, Steps: e.Str("steps")})

		case event.TypeVerifyResult:
			m.transcript.AppendCard(types.Card{
				Kind:    types.CardVerify,
				Command: e.Str("command"),
				Summary: e.Str("summary"),
				Ok:      e.Bool("ok"),
			})

		case event.TypeDiff:
			m.diffPanel.SetDiff(e.Str("path"), e.Str("diff"))

		case event.TypeContext:
			m.status.SetContextPct(e.Float("ctx_pct"))

		case event.TypeAgentState:
			m.status.SetState(e.Str("state"))

		case event.TypeStatus:
			m = m.setProcessing(e.Str("state") != "ready")

		case event.TypeStreamEnd:
			// Stale after an Esc interrupt: Finalize is a no-op then.
			m.transcript.Finalize()
			m = m.setProcessing(false)
		}
	}
	return m
}

func (m Model) setProcessing(on bool) Model {
	m.processing = on
	m.status.SetProcessing(on)
	if !on && m.turnCancel != nil {
		m.turnCancel()
		m.turnCancel = nil
	}
	return m
}

// handleWindowSize handles window resize events
func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	return m.layout()
}

// layout recomputes component sizes from the current window and which
// panels are open.
func (m Model) layout() Model {
	reserved := inputHeight + 1 + 2 // input, status line, separators
	if m.diffPanel.IsVisible() {
		reserved += m.diffPanel.Height()
	}
	if m.logsPanel.IsVisible() {
		reserved += m.logsPanel.Height()
	}

	chatHeight := m.height - reserved
	if chatHeight < 5 {
		chatHeight = 5
	}

	m.transcript.SetSize(m.width, chatHeight)
	m.input.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.decision.SetWidth(m.width)
	m.confirm.SetWidth(m.width)
	m.diffPanel.SetWidth(m.width)
	m.logsPanel.SetWidth(m.width)

	return m
}

// handleKeyPress handles keyboard input. handled=false passes the key
// on to the textarea.
func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// The decision dialog owns the keyboard while it is up.
	if m.decision.IsVisible() {
		return m.handleDecisionKey(msg)
	}
	if m.confirm.IsVisible() {
		return m.handleConfirmKey(msg), nil, true
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()

	case tea.KeyEsc:
		if m.processing {
			return m.interruptTurn(), nil, true
		}
		return m, nil, true

	case tea.KeyF2:
		return m.toggleMode(), nil, true

	case tea.KeyCtrlD:
		m.diffPanel.Toggle()
		return m.layout(), nil, true

	case tea.KeyCtrlL:
		m.logsPanel.Toggle()
		return m.layout(), nil, true

	case tea.KeyCtrlR:
		if m.processing {
			m.transcript.AppendCard(types.Card{Kind: types.CardNotice, Text: "finish or interrupt the turn before clearing"})
			return m, nil, true
		}
		m.confirm.Show(components.ConfirmClear, "Clear the transcript and forget session approvals?")
		return m, nil, true

	case tea.KeyEnter:
		return m.submit()
	}

	return m, nil, false
}

// handleDecisionKey routes keys while the three-way dialog is up.
// Esc both denies the call and interrupts the turn; plain n denies
// and lets the turn continue.
func (m Model) handleDecisionKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "y":
		m.decision.Resolve(safety.DecisionApproveOnce)
		return m, nil, true
	case "a":
		m.decision.Resolve(safety.DecisionApproveCategory)
		return m, nil, true
	case "n":
		m.decision.Resolve(safety.DecisionDeny)
		return m, nil, true
	case "esc":
		return m.interruptTurn(), nil, true
	case "ctrl+c":
		model, cmd, _ := m.quit()
		return model, cmd, true
	default:
		// Scroll keys for the diff viewport
		return m, m.decision.Update(msg), true
	}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	if m.confirm.Kind() == components.NoticeArmRequired {
		// Any key acknowledges the notice.
		m.confirm.Dismiss()
		return m
	}

	switch msg.String() {
	case "y", "enter":
		kind := m.confirm.Kind()
		m.confirm.Dismiss()
		switch kind {
		case components.ConfirmArm:
			m.deps.Gate.Arm()
			m.status.SetMode(m.deps.Gate.Mode())
			m.transcript.AppendCard(types.Card{Kind: types.CardNotice, Text: "session ARMED; gated tools run after per-call approval (F2 to disarm)"})
		case components.ConfirmClear:
			m = m.clearTranscript()
		}
	case "n", "esc", "ctrl+c":
		m.confirm.Dismiss()
	}
	return m
}

func (m Model) toggleMode() Model {
	switch m.deps.Gate.Mode() {
	case safety.ModeSafe:
		m.confirm.Show(components.ConfirmArm, "Arm the session? Gated tools can then run after you approve each one.")
	case safety.ModeArmed:
		m.deps.Gate.Disarm()
		m.status.SetMode(m.deps.Gate.Mode())
		m.transcript.AppendCard(types.Card{Kind: types.CardNotice, Text: "session SAFE; category approvals cleared"})
	case safety.ModeArmedPending:
		// The decision dialog owns the mode until it resolves.
	}
	return m
}

func (m Model) clearTranscript() Model {
	m.transcript.Reset()
	m.deps.Agent.Conversation().Clear()
	m.deps.Gate.Tracker().Reset()
	m.logsPanel.Add("transcript cleared, approvals reset")
	return m
}

// submit launches one turn on the worker pool.
func (m Model) submit() (Model, tea.Cmd, bool) {
	text := m.input.Value()
	if text == "" {
		return m, nil, true
	}

	// One turn in flight: the flag catches the common path, the
	// nonblocking pool below catches any race with turn teardown.
	if m.processing || m.deps.Agent.Processing() {
		m.transcript.AppendCard(types.Card{Kind: types.CardNotice, Text: "a turn is already in progress (Esc interrupts it)"})
		return m, nil, true
	}

	m.transcript.AppendCard(types.Card{Kind: types.CardUser, Text: text})
	m.input.Reset()

	turnCtx, cancel := context.WithCancel(m.ctx)
	m.turnCancel = cancel

	ag := m.deps.Agent
	err := m.deps.Pool.Submit(func() {
		_ = ag.ProcessTurn(turnCtx, text)
	})
	if err != nil {
		cancel()
		m.turnCancel = nil
		m.transcript.AppendCard(types.Card{Kind: types.CardNotice, Text: "a turn is already in progress (Esc interrupts it)"})
		return m, nil, true
	}

	m = m.setProcessing(true)
	m.status.SetState("thinking")
	m.deps.Bus.Publish(event.New(event.TypeStatus, event.SourceUI, m.deps.SessionId, map[string]any{
		"state": "processing",
	}))

	return m, m.input.Init(), true
}

// interruptTurn tears the running turn down synchronously: cancel the
// child context, stamp the marker onto the active card, answer any
// open dialog and drop the processing flag. The agent's own stream_end
// arrives later and finds nothing left to finalize.
func (m Model) interruptTurn() Model {
	if m.turnCancel != nil {
		m.turnCancel()
		m.turnCancel = nil
	}

	m.transcript.BufferDelta(interruptMarker)
	m.transcript.Finalize()

	if m.decision.IsVisible() {
		m.decision.Resolve(safety.DecisionDeny)
	}
	if m.confirm.IsVisible() && m.confirm.Kind() == components.NoticeArmRequired {
		m.confirm.Dismiss()
	}

	m = m.setProcessing(false)
	m.status.SetState("ready")
	m.status.SetMode(m.deps.Gate.Mode())
	m.logsPanel.Add("turn interrupted")
	return m
}

func (m Model) handleDecisionRecord(rec decisionRecordMsg) Model {
	m.transcript.AppendCard(types.Card{
		Kind:        types.CardDecision,
		Tool:        rec.Tool,
		Outcome:     string(rec.Outcome),
		Category:    string(rec.Category),
		Interactive: rec.Interactive,
	})
	m.logsPanel.Add(fmt.Sprintf("gate  %-12s %s (%s)", rec.Tool, rec.Outcome, rec.Category))
	return m
}

func (m Model) quit() (Model, tea.Cmd, bool) {
	if m.turnCancel != nil {
		m.turnCancel()
		m.turnCancel = nil
	}
	return m, tea.Quit, true
}
