package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"codeward/cmd/chat/ui/tui/styles"
)

// ConfirmKind says what the modal is asking.
type ConfirmKind int

const (
	// ConfirmArm asks before switching the session to ARMED.
	ConfirmArm ConfirmKind = iota
	// ConfirmClear asks before wiping the transcript and approvals.
	ConfirmClear
	// NoticeArmRequired is informational: a gated call was denied in
	// SAFE mode. Any key dismisses it.
	NoticeArmRequired
)

// ConfirmDialog is the yes/no modal shared by arming and clearing,
// plus the arm-required notice. Ack is non-nil only for the notice and
// is closed on dismissal so the gate can stop waiting.
type ConfirmDialog struct {
	theme   *styles.Theme
	kind    ConfirmKind
	message string
	ack     chan struct{}
	visible bool
	width   int
}

func NewConfirmDialog(theme *styles.Theme) *ConfirmDialog {
	return &ConfirmDialog{
		theme: theme,
		width: 80,
	}
}

func (c *ConfirmDialog) Init() tea.Cmd {
	return nil
}

func (c *ConfirmDialog) Update(msg tea.Msg) tea.Cmd {
	return nil
}

// Show displays a yes/no question.
func (c *ConfirmDialog) Show(kind ConfirmKind, message string) {
	c.kind = kind
	c.message = message
	c.ack = nil
	c.visible = true
}

// ShowNotice displays the arm-required notice. done is closed when the
// user dismisses it.
func (c *ConfirmDialog) ShowNotice(message string, done chan struct{}) {
	c.kind = NoticeArmRequired
	c.message = message
	c.ack = done
	c.visible = true
}

// Dismiss hides the modal, acking the notice if one was up.
func (c *ConfirmDialog) Dismiss() {
	if c.ack != nil {
		close(c.ack)
		c.ack = nil
	}
	c.visible = false
	c.message = ""
}

func (c *ConfirmDialog) Kind() ConfirmKind {
	return c.kind
}

func (c *ConfirmDialog) IsVisible() bool {
	return c.visible
}

func (c *ConfirmDialog) SetWidth(width int) {
	c.width = width
}

func (c *ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	boxWidth := c.width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	keys := "[y/Enter] yes  [n/Esc] no"
	if c.kind == NoticeArmRequired {
		keys = "press any key to dismiss"
	}

	text := c.message + "\n\n" + c.theme.Dialog.KeyStyle.Render(keys)
	return c.theme.Dialog.BoxStyle.Width(boxWidth).Render(text)
}
