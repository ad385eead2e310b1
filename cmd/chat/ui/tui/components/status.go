package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/tui/styles"
	"codeward/safety"
)

// StatusBar is the single bottom line: mode badge, agent state, a
// spinner while a turn runs, the context gauge and the session id.
type StatusBar struct {
	theme   *styles.Theme
	spinner spinner.Model

	mode       safety.Mode
	state      string
	processing bool
	ctxPct     float64
	sessionId  string
	width      int
}

func NewStatusBar(theme *styles.Theme, sessionId string) *StatusBar {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(styles.ColorSpinner)

	return &StatusBar{
		theme:     theme,
		spinner:   sp,
		state:     "ready",
		sessionId: sessionId,
		width:     80,
	}
}

func (c *StatusBar) Init() tea.Cmd {
	return c.spinner.Tick
}

func (c *StatusBar) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	return cmd
}

func (c *StatusBar) SetMode(mode safety.Mode) {
	c.mode = mode
}

func (c *StatusBar) SetState(state string) {
	c.state = state
}

func (c *StatusBar) SetProcessing(on bool) {
	c.processing = on
}

func (c *StatusBar) SetContextPct(pct float64) {
	c.ctxPct = pct
}

func (c *StatusBar) SetWidth(width int) {
	c.width = width
}

func (c *StatusBar) badge() string {
	switch c.mode {
	case safety.ModeArmed:
		return c.theme.Status.BadgeArmed.Render("ARMED")
	case safety.ModeArmedPending:
		return c.theme.Status.BadgePending.Render("CONFIRM")
	default:
		return c.theme.Status.BadgeSafe.Render("SAFE")
	}
}

func (c *StatusBar) View() string {
	var parts []string
	parts = append(parts, c.badge())

	state := c.state
	if c.processing {
		state += " " + c.spinner.View()
	}
	parts = append(parts, c.theme.Status.TextStyle.Render(state))

	if c.ctxPct > 0 {
		parts = append(parts, c.theme.Status.TextStyle.Render(fmt.Sprintf("ctx %.0f%%", c.ctxPct)))
	}

	parts = append(parts, c.theme.Status.TextStyle.Render(c.sessionId))
	parts = append(parts, c.theme.Status.TextStyle.Render("F2 arm · Esc stop · ^D diff · ^L log · ^R clear"))

	return c.theme.Status.BarStyle.Width(c.width).Render(strings.Join(parts, "  "))
}
