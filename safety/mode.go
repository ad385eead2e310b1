package safety

// Mode is the session tool-execution mode. Sessions always start in
// ModeSafe; nothing about the mode is ever persisted.
type Mode int

const (
	// ModeSafe denies every gated tool call outright.
	ModeSafe Mode = iota
	// ModeArmed allows gated calls after per-call or per-category approval.
	ModeArmed
	// ModeArmedPending is ModeArmed while a decision dialog is on
	// screen. It always returns to ModeArmed, whichever way the dialog
	// resolves.
	ModeArmedPending
)

func (m Mode) String() string {
	switch m {
	case ModeSafe:
		return "SAFE"
	case ModeArmed:
		return "ARMED"
	case ModeArmedPending:
		return "ARMED_PENDING"
	default:
		return "UNKNOWN"
	}
}
