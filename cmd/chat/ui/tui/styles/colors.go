package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions
var (
	ColorUserPrimary      = lipgloss.Color("#937dd8")
	ColorAssistantPrimary = lipgloss.Color("#0f8b56")
	ColorToolCall         = lipgloss.Color("#6b7b8c") // blue-gray
	ColorToolCallArgs     = lipgloss.Color("#5e6e7e") // slightly lighter blue-gray
	ColorToolError        = lipgloss.Color("#d06060")
	ColorMuted            = lipgloss.Color("#808080")
	ColorNotice           = lipgloss.Color("#e6ca3d")
	ColorSafe             = lipgloss.Color("#2ECC71")
	ColorArmed            = lipgloss.Color("#ff6b6b")
	ColorPending          = lipgloss.Color("#e6ca3d")
	ColorVerifyPass       = lipgloss.Color("#2ECC71")
	ColorVerifyFail       = lipgloss.Color("#ff6b6b")
	ColorDiffAdd          = lipgloss.Color("#0f8b56")
	ColorDiffDel          = lipgloss.Color("#d06060")
	ColorDiffMeta         = lipgloss.Color("#6b7b8c")
	ColorSpinner          = lipgloss.Color("#2ECC71")
	ColorConfirmDanger    = lipgloss.Color("#ff6b6b")
)
