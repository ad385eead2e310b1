package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/tui/styles"
)

const diffPanelHeight = 10

// DiffPanel shows the most recent write preview. Hidden by default;
// ctrl+d toggles it.
type DiffPanel struct {
	theme    *styles.Theme
	viewport viewport.Model
	path     string
	diff     string
	visible  bool
	width    int
}

func NewDiffPanel(theme *styles.Theme) *DiffPanel {
	vp := viewport.New(80, diffPanelHeight)
	vp.MouseWheelEnabled = true

	return &DiffPanel{
		theme:    theme,
		viewport: vp,
		width:    80,
	}
}

func (c *DiffPanel) Init() tea.Cmd {
	return nil
}

func (c *DiffPanel) Update(msg tea.Msg) tea.Cmd {
	if !c.visible {
		return nil
	}
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

// SetDiff replaces the panel content with the latest preview.
func (c *DiffPanel) SetDiff(path, diff string) {
	c.path = path
	c.diff = diff
	c.refresh()
}

func (c *DiffPanel) Toggle() {
	c.visible = !c.visible
}

func (c *DiffPanel) IsVisible() bool {
	return c.visible
}

func (c *DiffPanel) Height() int {
	// content + border
	return diffPanelHeight + 2
}

func (c *DiffPanel) SetWidth(width int) {
	c.width = width
	c.viewport.Width = width - 4
	c.refresh()
}

func (c *DiffPanel) View() string {
	if !c.visible {
		return ""
	}

	title := "diff: (none yet)"
	if c.path != "" {
		title = "diff: " + c.path
	}
	header := c.theme.Diff.MetaStyle.Render(title)
	return c.theme.Diff.BoxStyle.Width(c.width - 2).Render(header + "\n" + c.viewport.View())
}

func (c *DiffPanel) refresh() {
	if c.diff == "" {
		c.viewport.SetContent(c.theme.Status.TextStyle.Render("no write previews in this session yet"))
		return
	}

	lines := strings.Split(c.diff, "\n")
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
	c.viewport.SetContent(strings.Join(out, "\n"))
	c.viewport.GotoTop()
}
