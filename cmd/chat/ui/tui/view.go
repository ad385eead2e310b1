package tui

import "strings"

// View renders the entire UI
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.transcript.View())
	sb.WriteString("\n")

	if m.diffPanel.IsVisible() {
		sb.WriteString(m.diffPanel.View())
		sb.WriteString("\n")
	}
	if m.logsPanel.IsVisible() {
		sb.WriteString(m.logsPanel.View())
		sb.WriteString("\n")
	}

	// Dialogs replace the input area while they are up
	switch {
	case m.decision.IsVisible():
		sb.WriteString(m.decision.View())
	case m.confirm.IsVisible():
		sb.WriteString(m.confirm.View())
	default:
		sb.WriteString(m.input.View())
	}

	sb.WriteString("\n")
	sb.WriteString(m.status.View())

	return sb.String()
}
