package types

import "time"

// CardKind discriminates transcript cards.
type CardKind int

const (
	CardUser CardKind = iota
	CardStream // assistant text, streaming until finalized
	CardTool
	CardPlan
	CardDecision
	CardVerify
	CardNotice
)

// Card is one rendered block in the transcript. Kind decides which
// fields matter; the rest stay zero.
type Card struct {
	Kind CardKind
	When time.Time

	// CardUser, CardStream, CardNotice
	Text     string
	Rendered string // markdown output for a finalized stream card
	Open     bool   // stream card still accepting deltas

	// CardTool
	Tool    string
	Args    string
	Output  string
	IsError bool

	// CardPlan
	Steps string

	// CardDecision
	Outcome     string
	Category    string
	Interactive bool

	// CardVerify
	Command string
	Summary string
	Ok      bool
}
