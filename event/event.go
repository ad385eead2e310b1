package event

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates what a UI event carries. The payload keys each
// type uses are set by the producer in agent/ and read by the drain
// loop in the TUI.
type Type string

const (
	TypeMessage      Type = "message"       // role, delta, done
	TypeToolResult   Type = "tool_result"   // tool_name, arguments, content, is_error
	TypePlan         Type = "plan"          // steps
	TypeStatus       Type = "status"        // state: processing | ready
	TypeDiff         Type = "diff"          // path, diff
	TypeContext      Type = "context"       // ctx_pct
	TypeStreamEnd    Type = "stream_end"    // no payload
	TypeAgentState   Type = "agent_state"   // state
	TypeVerifyResult Type = "verify_result" // command, summary, ok
)

// Source tells the consumer who emitted an event. System events mark
// turn-boundary failures rather than model output.
type Source string

const (
	SourceAgent  Source = "agent"
	SourceUI     Source = "ui"
	SourceSystem Source = "system"
)

// Event is one item on the agent → UI queue.
type Event struct {
	ID        string
	Type      Type
	Timestamp time.Time
	SessionID string
	Payload   map[string]any
	Source    Source
}

func New(typ Type, src Source, sessionID string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Payload:   payload,
		Source:    src,
	}
}

// Str returns a string payload field, "" when absent or mistyped.
func (e Event) Str(key string) string {
	s, _ := e.Payload[key].(string)
	return s
}

// Bool returns a bool payload field, false when absent or mistyped.
func (e Event) Bool(key string) bool {
	b, _ := e.Payload[key].(bool)
	return b
}

// Float returns a numeric payload field, 0 when absent or mistyped.
func (e Event) Float(key string) float64 {
	switch v := e.Payload[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
