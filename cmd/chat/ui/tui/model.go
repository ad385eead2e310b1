package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/panjf2000/ants/v2"

	"codeward/agent"
	"codeward/cmd/chat/ui/tui/components"
	"codeward/cmd/chat/ui/tui/styles"
	"codeward/cmd/chat/ui/types"
	"codeward/config"
	"codeward/event"
	"codeward/llm/schema"
	"codeward/safety"
	"codeward/session"
)

const (
	inputHeight = 2
	drainLimit  = 256
	// headerEvery is how many drain ticks pass between mode badge
	// refreshes (10 ticks at 50ms is twice a second).
	headerEvery = 10
)

// Deps is everything the TUI drives. prepare() in cmd/chat builds it.
type Deps struct {
	Cfg       *config.Config
	Agent     *agent.Agent
	Gate      *safety.Gate
	Bus       *event.Bus
	Pool      *ants.Pool
	Log       *session.Log
	SessionId string
}

// Model is the main TUI model
type Model struct {
	ctx   context.Context
	deps  Deps
	theme *styles.Theme

	// Components
	transcript *components.Transcript
	input      *components.Input
	status     *components.StatusBar
	decision   *components.DecisionDialog
	confirm    *components.ConfirmDialog
	diffPanel  *components.DiffPanel
	logsPanel  *components.LogsPanel

	// State
	processing bool
	turnCancel context.CancelFunc
	ticks      int
	width      int
	height     int
	err        error
}

// New creates a new TUI model
func New(ctx context.Context, deps Deps) Model {
	theme := styles.DefaultTheme()

	transcript := components.NewTranscript(theme, deps.Cfg.UI.Markdown)
	input := components.NewInput(inputHeight)
	status := components.NewStatusBar(theme, deps.SessionId)
	status.SetMode(deps.Gate.Mode())

	m := Model{
		ctx:        ctx,
		deps:       deps,
		theme:      theme,
		transcript: transcript,
		input:      input,
		status:     status,
		decision:   components.NewDecisionDialog(theme),
		confirm:    components.NewConfirmDialog(theme),
		diffPanel:  components.NewDiffPanel(theme),
		logsPanel:  components.NewLogsPanel(theme),
		width:      80,
		height:     24,
	}
	m.loadHistory(deps.Agent.Conversation().Messages())
	return m
}

// loadHistory seeds the transcript from a resumed conversation. Only
// the user/assistant exchange is replayed; tool traffic would drown
// the scrollback and is still in the session log for anyone who needs
// it.
func (m *Model) loadHistory(history []schema.MessageParam) {
	for i := range history {
		msg := &history[i]
		switch {
		case msg.User != nil:
			m.transcript.AppendCard(types.Card{Kind: types.CardUser, Text: msg.User.Content})
		case msg.Assistant != nil && msg.Assistant.Content != "":
			m.transcript.BufferDelta(msg.Assistant.Content)
			m.transcript.Finalize()
		}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.status.Init(),
		tickCmd(),
	)
}
