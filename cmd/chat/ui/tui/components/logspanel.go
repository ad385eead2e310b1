package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/tui/styles"
)

const (
	logsPanelLines = 6
	logsKept       = 100
)

// LogsPanel keeps a short in-memory feed of gate decisions and tool
// results. ctrl+l toggles it.
type LogsPanel struct {
	theme   *styles.Theme
	lines   []string
	visible bool
	width   int
}

func NewLogsPanel(theme *styles.Theme) *LogsPanel {
	return &LogsPanel{
		theme: theme,
		width: 80,
	}
}

func (c *LogsPanel) Init() tea.Cmd {
	return nil
}

func (c *LogsPanel) Update(msg tea.Msg) tea.Cmd {
	return nil
}

// Add appends one line, dropping the oldest past the cap.
func (c *LogsPanel) Add(line string) {
	c.lines = append(c.lines, line)
	if len(c.lines) > logsKept {
		c.lines = c.lines[len(c.lines)-logsKept:]
	}
}

func (c *LogsPanel) Toggle() {
	c.visible = !c.visible
}

func (c *LogsPanel) IsVisible() bool {
	return c.visible
}

func (c *LogsPanel) Height() int {
	return logsPanelLines + 2
}

func (c *LogsPanel) SetWidth(width int) {
	c.width = width
}

func (c *LogsPanel) View() string {
	if !c.visible {
		return ""
	}

	start := len(c.lines) - logsPanelLines
	if start < 0 {
		start = 0
	}
	shown := c.lines[start:]
	if len(shown) == 0 {
		shown = []string{"no activity yet"}
	}

	header := c.theme.Logs.HeaderStyle.Render("activity")
	body := c.theme.Logs.BodyStyle.Render(strings.Join(shown, "\n"))
	return c.theme.Logs.BoxStyle.Width(c.width - 2).Render(header + "\n" + body)
}
