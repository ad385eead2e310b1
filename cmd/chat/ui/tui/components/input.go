package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Input handles user input
type Input struct {
	textarea textarea.Model
	height   int
}

func NewInput(height int) *Input {
	ta := textarea.New()
	ta.Placeholder = "What can I do for you?"
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetHeight(height)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	return &Input{
		textarea: ta,
		height:   height,
	}
}

func (c *Input) Init() tea.Cmd {
	return textarea.Blink
}

func (c *Input) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return cmd
}

func (c *Input) View() string {
	return c.textarea.View()
}

// Value returns the current input value
func (c *Input) Value() string {
	return strings.TrimSpace(c.textarea.Value())
}

// Reset clears the input and refocuses
func (c *Input) Reset() {
	c.textarea.Reset()
	c.textarea.Focus()
}

func (c *Input) SetWidth(width int) {
	c.textarea.SetWidth(width)
}

func (c *Input) Focus() {
	c.textarea.Focus()
}

func (c *Input) Blur() {
	c.textarea.Blur()
}
