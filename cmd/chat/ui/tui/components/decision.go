package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/tui/styles"
	"codeward/cmd/chat/ui/types"
	"codeward/safety"
)

const diffViewportHeight = 10

// DecisionDialog is the three-way approval prompt for one gated tool
// call. It owns the response channel for the call it is showing;
// Resolve answers the gate and hides the dialog.
type DecisionDialog struct {
	theme   *styles.Theme
	req     *safety.Request
	respCh  chan safety.Decision
	diff    viewport.Model
	visible bool
	width   int
}

func NewDecisionDialog(theme *styles.Theme) *DecisionDialog {
	vp := viewport.New(80, diffViewportHeight)
	vp.MouseWheelEnabled = true

	return &DecisionDialog{
		theme: theme,
		diff:  vp,
		width: 80,
	}
}

func (c *DecisionDialog) Init() tea.Cmd {
	return nil
}

// Update scrolls the diff viewport while the dialog is up.
func (c *DecisionDialog) Update(msg tea.Msg) tea.Cmd {
	if !c.visible {
		return nil
	}
	var cmd tea.Cmd
	c.diff, cmd = c.diff.Update(msg)
	return cmd
}

// Show displays the dialog for one request.
func (c *DecisionDialog) Show(req *safety.Request, respCh chan safety.Decision) {
	c.req = req
	c.respCh = respCh
	c.visible = true
	if req.Diff != "" {
		c.diff.SetContent(c.renderDiff(req.Diff))
		c.diff.GotoTop()
	}
}

// Resolve answers the gate and hides the dialog. Safe to call when
// nothing is showing.
func (c *DecisionDialog) Resolve(d safety.Decision) {
	if !c.visible {
		return
	}
	if c.respCh != nil {
		c.respCh <- d
		close(c.respCh)
	}
	c.hide()
}

func (c *DecisionDialog) hide() {
	c.visible = false
	c.req = nil
	c.respCh = nil
}

func (c *DecisionDialog) IsVisible() bool {
	return c.visible
}

func (c *DecisionDialog) SetWidth(width int) {
	c.width = width
	c.diff.Width = width - 8
}

func (c *DecisionDialog) View() string {
	if !c.visible || c.req == nil {
		return ""
	}

	boxWidth := c.width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	var sb strings.Builder
	sb.WriteString(c.theme.Dialog.TitleStyle.Render("Approve tool call?"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s  (%s, severity %s)\n", c.req.Tool, c.req.Category, c.req.Severity))
	if c.req.Reason != "" {
		sb.WriteString(c.req.Reason + "\n")
	}
	sb.WriteString(types.FormatToolArgs(c.req.Tool, c.req.RawArgs, 200))
	sb.WriteString("\n")

	if c.req.Diff != "" {
		sb.WriteString("\n")
		if c.req.Path != "" {
			sb.WriteString(c.theme.Diff.MetaStyle.Render(c.req.Path) + "\n")
		}
		sb.WriteString(c.diff.View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(c.theme.Dialog.KeyStyle.Render("[y] approve once  [a] approve category  [n/esc] deny  (↑/↓ scroll diff)"))

	return c.theme.Dialog.BoxStyle.Width(boxWidth).Render(sb.String())
}

func (c *DecisionDialog) renderDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			out = append(out, c.theme.Diff.AddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			out = append(out, c.theme.Diff.DelStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			out = append(out, c.theme.Diff.MetaStyle.Render(line))
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
