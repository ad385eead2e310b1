package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeward/component/tool"
	"codeward/event"
	"codeward/llm"
	"codeward/llm/schema"
	"codeward/safety"
)

// scriptedLLM replays one canned chunk sequence per stream call.
type scriptedLLM struct {
	turns   [][]*schema.StreamResponseChunk
	calls   int
	openErr error
}

func (s *scriptedLLM) ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	return nil, errors.New("not implemented")
}

func (s *scriptedLLM) ChatCompletionStream(ctx context.Context, req *schema.Request) (<-chan *schema.StreamResponseChunk, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	if s.calls >= len(s.turns) {
		return nil, errors.New("scripted llm exhausted")
	}
	chunks := s.turns[s.calls]
	s.calls++

	ch := make(chan *schema.StreamResponseChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func textChunk(text string) *schema.StreamResponseChunk {
	return &schema.StreamResponseChunk{
		Choices: []schema.StreamChoice{{Delta: schema.StreamChoiceDelta{Content: text}}},
	}
}

func callChunk(id, name, args string) *schema.StreamResponseChunk {
	return &schema.StreamResponseChunk{
		Choices: []schema.StreamChoice{{
			Delta: schema.StreamChoiceDelta{
				ToolCalls: []schema.StreamChoiceDeltaToolCall{{
					Id:       id,
					Type:     schema.ToolCallTypeFunction,
					Function: schema.CompletionToolCallFunction{Name: name, Arguments: args},
				}},
			},
		}},
	}
}

// echoTool returns canned output and counts invocations.
type echoTool struct {
	name    string
	out     string
	invoked int
}

func (e *echoTool) Definition() tool.Definition {
	return tool.Definition{Name: e.name, Description: "test tool"}
}

func (e *echoTool) Invoke(ctx context.Context, arguments string) (string, error) {
	e.invoked++
	return e.out, nil
}

type panicTool struct{}

func (panicTool) Definition() tool.Definition {
	return tool.Definition{Name: "boom", Description: "test tool"}
}

func (panicTool) Invoke(ctx context.Context, arguments string) (string, error) {
	panic("kaboom")
}

type stubPrompter struct {
	decision safety.Decision
	prompts  int
	notices  int
}

func (p *stubPrompter) Prompt(ctx context.Context, req *safety.Request) (safety.Decision, error) {
	p.prompts++
	return p.decision, nil
}

func (p *stubPrompter) RequireArmed(ctx context.Context, req *safety.Request) {
	p.notices++
}

func newTestAgent(t *testing.T, llmStub llm.LLM, tools map[string]safety.Profile, impls ...tool.Tool) (*Agent, *event.Bus) {
	t.Helper()

	registry := tool.NewRegistry()
	catalog := safety.NewCatalog()
	for _, impl := range impls {
		registry.Register(impl)
	}
	for name, profile := range tools {
		catalog.Register(name, profile)
	}

	bus := event.NewBus()
	gate := safety.NewGate(catalog, safety.NewTracker())
	conv := NewConversation("system prompt", nil, nil, 0)

	a := New(Config{Model: "test-model", MaxIterations: 5, SessionId: "s-test"}, Deps{
		LLM:      llmStub,
		Registry: registry,
		Gate:     gate,
		Bus:      bus,
		Conv:     conv,
	})
	return a, bus
}

func ungated() safety.Profile {
	return safety.Profile{Category: safety.CategoryOther, Reason: "test", Severity: safety.SeverityLow}
}

func gated() safety.Profile {
	return safety.Profile{Category: safety.CategoryShellExec, Reason: "test", Severity: safety.SeverityHigh, Gated: true}
}

func ofType(events []event.Event, typ event.Type) []event.Event {
	var out []event.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestProcessTurnStreamsAndEnds(t *testing.T) {
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{textChunk("Hel"), textChunk("lo")},
	}}
	a, bus := newTestAgent(t, stub, nil)

	if err := a.ProcessTurn(t.Context(), "hi"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	events := bus.Drain(0)
	wantTypes := []event.Type{
		event.TypeAgentState, // thinking
		event.TypeMessage,
		event.TypeMessage,
		event.TypeContext,
		event.TypeStreamEnd,
		event.TypeAgentState, // ready
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantTypes), events)
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Fatalf("event %d type = %s, want %s", i, events[i].Type, want)
		}
	}
	if got := events[0].Str("state"); got != "thinking" {
		t.Fatalf("first agent_state = %q, want thinking", got)
	}
	if got := events[len(events)-1].Str("state"); got != "ready" {
		t.Fatalf("last agent_state = %q, want ready", got)
	}
	if got := events[1].Str("delta") + events[2].Str("delta"); got != "Hello" {
		t.Fatalf("streamed content = %q, want Hello", got)
	}
	if events[1].Bool("done") {
		t.Fatal("stream delta should not be marked done")
	}

	// system + user + assistant
	if n := a.Conversation().Len(); n != 3 {
		t.Fatalf("conversation length = %d, want 3", n)
	}
}

func TestProcessTurnExecutesToolCalls(t *testing.T) {
	echo := &echoTool{name: "echo_tool", out: "echoed"}
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{callChunk("call-1", "echo_tool", `{}`)},
		{textChunk("done")},
	}}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"echo_tool": ungated()}, echo)

	if err := a.ProcessTurn(t.Context(), "run the tool"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if echo.invoked != 1 {
		t.Fatalf("tool invoked %d times, want 1", echo.invoked)
	}

	events := bus.Drain(0)

	plans := ofType(events, event.TypePlan)
	if len(plans) != 1 || plans[0].Str("steps") != "echo_tool" {
		t.Fatalf("plan events = %+v, want one with steps echo_tool", plans)
	}

	results := ofType(events, event.TypeToolResult)
	if len(results) != 1 {
		t.Fatalf("got %d tool_result events, want 1", len(results))
	}
	if results[0].Str("tool_name") != "echo_tool" || results[0].Str("content") != "echoed" || results[0].Bool("is_error") {
		t.Fatalf("unexpected tool_result payload: %+v", results[0].Payload)
	}

	ends := ofType(events, event.TypeStreamEnd)
	if len(ends) != 1 {
		t.Fatalf("got %d stream_end events, want exactly 1", len(ends))
	}

	// system + user + assistant(call) + tool + assistant
	if n := a.Conversation().Len(); n != 5 {
		t.Fatalf("conversation length = %d, want 5", n)
	}
}

func TestProcessTurnDeniedWithoutPrompter(t *testing.T) {
	echo := &echoTool{name: "risky", out: "ran"}
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{callChunk("call-1", "risky", `{}`)},
		{textChunk("understood")},
	}}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"risky": gated()}, echo)

	if err := a.ProcessTurn(t.Context(), "do it"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if echo.invoked != 0 {
		t.Fatalf("denied tool ran %d times", echo.invoked)
	}

	results := ofType(bus.Drain(0), event.TypeToolResult)
	if len(results) != 1 {
		t.Fatalf("got %d tool_result events, want 1", len(results))
	}
	if !results[0].Bool("is_error") {
		t.Fatal("denied call should surface as an error result")
	}
	if got := results[0].Str("content"); !strings.Contains(got, "no interactive approval") {
		t.Fatalf("denial content = %q, want headless explanation", got)
	}
}

func TestProcessTurnSafeModeShowsArmNotice(t *testing.T) {
	echo := &echoTool{name: "risky", out: "ran"}
	prompter := &stubPrompter{decision: safety.DecisionApproveOnce}
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{callChunk("call-1", "risky", `{}`)},
		{textChunk("understood")},
	}}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"risky": gated()}, echo)
	a.d.Gate.SetPrompter(prompter)

	if err := a.ProcessTurn(t.Context(), "do it"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	if prompter.notices != 1 {
		t.Fatalf("RequireArmed shown %d times, want 1", prompter.notices)
	}
	if prompter.prompts != 0 {
		t.Fatal("safe mode must not show the approval dialog")
	}
	if echo.invoked != 0 {
		t.Fatal("safe mode must not execute gated tools")
	}

	results := ofType(bus.Drain(0), event.TypeToolResult)
	if len(results) != 1 {
		t.Fatalf("got %d tool_result events, want 1", len(results))
	}
	content := results[0].Str("content")
	if !strings.Contains(content, "SAFE mode") || !strings.Contains(content, "F2") {
		t.Fatalf("denial content should point at arming, got %q", content)
	}
}

func TestProcessTurnArmedApprovesAndRuns(t *testing.T) {
	echo := &echoTool{name: "risky", out: "ran"}
	prompter := &stubPrompter{decision: safety.DecisionApproveOnce}
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{callChunk("call-1", "risky", `{}`)},
		{textChunk("understood")},
	}}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"risky": gated()}, echo)
	a.d.Gate.SetPrompter(prompter)
	a.d.Gate.Arm()

	if err := a.ProcessTurn(t.Context(), "do it"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	if prompter.prompts != 1 {
		t.Fatalf("dialog shown %d times, want 1", prompter.prompts)
	}
	if echo.invoked != 1 {
		t.Fatalf("approved tool invoked %d times, want 1", echo.invoked)
	}

	results := ofType(bus.Drain(0), event.TypeToolResult)
	if len(results) != 1 || results[0].Bool("is_error") {
		t.Fatalf("unexpected tool results: %+v", results)
	}
}

func TestProcessTurnBusy(t *testing.T) {
	a, bus := newTestAgent(t, &scriptedLLM{}, nil)
	a.processing.Store(true)

	err := a.ProcessTurn(t.Context(), "hi")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
	if n := bus.Len(); n != 0 {
		t.Fatalf("busy rejection published %d events", n)
	}
}

func TestProcessTurnPanicBecomesFailure(t *testing.T) {
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{callChunk("call-1", "boom", `{}`)},
	}}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"boom": ungated()}, panicTool{})

	err := a.ProcessTurn(t.Context(), "explode")
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("err = %v, want wrapped panic", err)
	}
	if a.Processing() {
		t.Fatal("processing flag stuck after panic")
	}

	events := bus.Drain(0)

	var failure *event.Event
	for i := range events {
		if events[i].Type == event.TypeToolResult && events[i].Source == event.SourceSystem {
			failure = &events[i]
			break
		}
	}
	if failure == nil {
		t.Fatalf("no system tool_result in %+v", events)
	}
	if got := failure.Str("content"); !strings.HasPrefix(got, "CRITICAL_FAILURE: ") {
		t.Fatalf("failure content = %q", got)
	}
	if !failure.Bool("is_error") {
		t.Fatal("failure result must be marked as error")
	}

	statuses := ofType(events, event.TypeStatus)
	if len(statuses) != 1 || statuses[0].Str("state") != "ready" {
		t.Fatalf("status events = %+v, want one ready", statuses)
	}
	if ends := ofType(events, event.TypeStreamEnd); len(ends) != 1 {
		t.Fatalf("got %d stream_end events, want 1", len(ends))
	}
}

func TestProcessTurnStreamOpenError(t *testing.T) {
	stub := &scriptedLLM{openErr: errors.New("provider down")}
	a, bus := newTestAgent(t, stub, nil)

	err := a.ProcessTurn(t.Context(), "hi")
	if err == nil || !strings.Contains(err.Error(), "provider down") {
		t.Fatalf("err = %v, want provider error", err)
	}

	events := bus.Drain(0)
	found := false
	for _, e := range events {
		if e.Type == event.TypeToolResult && strings.HasPrefix(e.Str("content"), "CRITICAL_FAILURE: ") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no failure event in %+v", events)
	}
	if ends := ofType(events, event.TypeStreamEnd); len(ends) != 1 {
		t.Fatalf("got %d stream_end events, want 1", len(ends))
	}
}

// cancellingLLM cancels the turn context after the first chunk and
// leaves the stream open, the way an interrupted provider read looks.
type cancellingLLM struct {
	cancel context.CancelFunc
}

func (c *cancellingLLM) ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	return nil, errors.New("not implemented")
}

func (c *cancellingLLM) ChatCompletionStream(ctx context.Context, req *schema.Request) (<-chan *schema.StreamResponseChunk, error) {
	ch := make(chan *schema.StreamResponseChunk)
	go func() {
		// Unbuffered: the chunk is consumed before the cancel lands,
		// so the agent observes cancellation only after the delta.
		ch <- textChunk("partial answer")
		c.cancel()
	}()
	return ch, nil
}

func TestProcessTurnInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	a, bus := newTestAgent(t, &cancellingLLM{cancel: cancel}, nil)

	if err := a.ProcessTurn(ctx, "hi"); err != nil {
		t.Fatalf("interrupted turn should not error, got %v", err)
	}

	// The marker is drawn by the UI on cancel; the agent must not
	// publish any message events after the cutoff.
	events := bus.Drain(0)
	for _, e := range ofType(events, event.TypeMessage) {
		if strings.Contains(e.Str("delta"), "[Interrupted]") {
			t.Fatalf("agent published interrupt marker event: %+v", e.Payload)
		}
	}

	msgs := a.Conversation().Messages()
	final := msgs[len(msgs)-1]
	if final.Assistant == nil {
		t.Fatalf("final history message is not assistant: %+v", final)
	}
	if got := final.Assistant.Content; got != "partial answer\n\n[Interrupted]" {
		t.Fatalf("final history content = %q", got)
	}
}

func TestProcessTurnVerifyResult(t *testing.T) {
	runner := &echoTool{name: "run_command", out: "STDOUT:\nok  \tpkg\t0.3s\nSTDERR:\n(empty)"}
	stub := &scriptedLLM{turns: [][]*schema.StreamResponseChunk{
		{callChunk("call-1", "run_command", `{"command":"go test ./..."}`)},
		{textChunk("tests pass")},
	}}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"run_command": ungated()}, runner)

	if err := a.ProcessTurn(t.Context(), "run the tests"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}

	verifies := ofType(bus.Drain(0), event.TypeVerifyResult)
	if len(verifies) != 1 {
		t.Fatalf("got %d verify_result events, want 1", len(verifies))
	}
	v := verifies[0]
	if v.Str("command") != "go test ./..." {
		t.Fatalf("verify command = %q", v.Str("command"))
	}
	if !v.Bool("ok") {
		t.Fatal("verify ok = false, want true")
	}
	if v.Str("summary") == "" {
		t.Fatal("verify summary is empty")
	}
}

func TestProcessTurnMaxIterations(t *testing.T) {
	echo := &echoTool{name: "echo_tool", out: "echoed"}
	var turns [][]*schema.StreamResponseChunk
	for i := 0; i < 5; i++ {
		turns = append(turns, []*schema.StreamResponseChunk{callChunk("call-x", "echo_tool", `{}`)})
	}
	stub := &scriptedLLM{turns: turns}
	a, bus := newTestAgent(t, stub, map[string]safety.Profile{"echo_tool": ungated()}, echo)

	if err := a.ProcessTurn(t.Context(), "loop"); err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if echo.invoked != 5 {
		t.Fatalf("tool invoked %d times, want 5", echo.invoked)
	}

	events := bus.Drain(0)
	messages := ofType(events, event.TypeMessage)
	last := messages[len(messages)-1]
	if !strings.Contains(last.Str("delta"), "stopped after 5 tool iterations") {
		t.Fatalf("missing iteration-cap notice, got %q", last.Str("delta"))
	}
}

func TestDeniedContent(t *testing.T) {
	tests := []struct {
		outcome safety.Outcome
		want    string
	}{
		{safety.OutcomeDeniedSafe, "SAFE mode"},
		{safety.OutcomeDeniedNoPrompt, "no interactive approval"},
		{safety.OutcomeDenied, "denied by the user"},
	}
	for _, tt := range tests {
		got := deniedContent("write_file", tt.outcome)
		if !strings.Contains(got, tt.want) {
			t.Fatalf("deniedContent(%s) = %q, want substring %q", tt.outcome, got, tt.want)
		}
	}
}
