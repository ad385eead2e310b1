package tui

import (
	"time"

	"codeward/cmd/chat/ui/types"
)

// Tea messages for event handling

type (
	// tickMsg drives the event drain loop.
	tickMsg time.Time

	// decisionRequestMsg is an alias for types.DecisionRequest
	decisionRequestMsg = types.DecisionRequest

	// armRequiredMsg is an alias for types.ArmRequired
	armRequiredMsg = types.ArmRequired

	// decisionRecordMsg is an alias for types.DecisionRecord
	decisionRecordMsg = types.DecisionRecord
)
