package styles

import "github.com/charmbracelet/lipgloss"

// MessageTheme defines styling for a message type
type MessageTheme struct {
	HeaderStyle lipgloss.Style
	BodyStyle   lipgloss.Style
	BoxStyle    lipgloss.Style
}

// ToolTheme defines styling for tool call cards
type ToolTheme struct {
	NameStyle   lipgloss.Style
	ArgsStyle   lipgloss.Style
	OutputStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
}

// StatusTheme defines styling for the status bar
type StatusTheme struct {
	BarStyle     lipgloss.Style
	BadgeSafe    lipgloss.Style
	BadgeArmed   lipgloss.Style
	BadgePending lipgloss.Style
	TextStyle    lipgloss.Style
}

// DialogTheme defines styling for modal dialogs
type DialogTheme struct {
	BoxStyle   lipgloss.Style
	TitleStyle lipgloss.Style
	KeyStyle   lipgloss.Style
}

// DiffTheme defines styling for unified diff lines
type DiffTheme struct {
	AddStyle  lipgloss.Style
	DelStyle  lipgloss.Style
	MetaStyle lipgloss.Style
	BoxStyle  lipgloss.Style
}

// Theme contains all UI styling
type Theme struct {
	User      MessageTheme
	Assistant MessageTheme
	Notice    MessageTheme
	Plan      MessageTheme
	Decision  MessageTheme
	Verify    MessageTheme
	Tool      ToolTheme
	Status    StatusTheme
	Dialog    DialogTheme
	Diff      DiffTheme
	Logs      MessageTheme
}

// DefaultTheme returns the default theme
func DefaultTheme() *Theme {
	return &Theme{
		User: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorUserPrimary).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorUserPrimary).
				AlignHorizontal(lipgloss.Left),
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true, true, true, true).
				BorderForeground(ColorUserPrimary).
				Padding(0, 1).
				MarginBottom(1),
		},
		Assistant: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorAssistantPrimary).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				AlignHorizontal(lipgloss.Left),
			BoxStyle: lipgloss.NewStyle().
				MarginBottom(1),
		},
		Notice: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorNotice).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorNotice),
			BoxStyle: lipgloss.NewStyle(),
		},
		Plan: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorMuted).
				Italic(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
			BoxStyle: lipgloss.NewStyle(),
		},
		Decision: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorPending).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
			BoxStyle: lipgloss.NewStyle(),
		},
		Verify: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
			BoxStyle: lipgloss.NewStyle(),
		},
		Tool: ToolTheme{
			NameStyle: lipgloss.NewStyle().
				Foreground(ColorToolCall).
				Italic(true).
				Bold(true),
			ArgsStyle: lipgloss.NewStyle().
				Foreground(ColorToolCallArgs),
			OutputStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
			ErrorStyle: lipgloss.NewStyle().
				Foreground(ColorToolError),
		},
		Status: StatusTheme{
			BarStyle: lipgloss.NewStyle(),
			BadgeSafe: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#000000")).
				Background(ColorSafe).
				Bold(true).
				Padding(0, 1),
			BadgeArmed: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")).
				Background(ColorArmed).
				Bold(true).
				Padding(0, 1),
			BadgePending: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#000000")).
				Background(ColorPending).
				Bold(true).
				Padding(0, 1),
			TextStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
		},
		Dialog: DialogTheme{
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorConfirmDanger).
				Padding(1, 2),
			TitleStyle: lipgloss.NewStyle().
				Foreground(ColorConfirmDanger).
				Bold(true),
			KeyStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
		},
		Diff: DiffTheme{
			AddStyle:  lipgloss.NewStyle().Foreground(ColorDiffAdd),
			DelStyle:  lipgloss.NewStyle().Foreground(ColorDiffDel),
			MetaStyle: lipgloss.NewStyle().Foreground(ColorDiffMeta),
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorDiffMeta).
				Padding(0, 1),
		},
		Logs: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().
				Foreground(ColorMuted).
				Bold(true),
			BodyStyle: lipgloss.NewStyle().
				Foreground(ColorMuted),
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorMuted).
				Padding(0, 1),
		},
	}
}
