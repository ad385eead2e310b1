package types

import "codeward/safety"

// DecisionRequest asks the UI to rule on one gated tool call. The
// gate goroutine blocks on Resp until the dialog resolves.
type DecisionRequest struct {
	Req  *safety.Request
	Resp chan safety.Decision
}

// ArmRequired tells the UI a gated call arrived while the session was
// in SAFE mode. The gate waits on Done so the notice is seen before
// the denial lands in the transcript.
type ArmRequired struct {
	Req  *safety.Request
	Done chan struct{}
}

// DecisionRecord mirrors one gate audit record into the transcript.
type DecisionRecord safety.Record
