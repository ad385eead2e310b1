package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"codeward/component/tool"
	"codeward/event"
	"codeward/llm"
	"codeward/llm/schema"
	"codeward/safety"
)

const interruptMarker = "\n\n[Interrupted]"

// ErrBusy rejects a submission while a turn is already in flight.
var ErrBusy = errors.New("a turn is already in progress")

type Config struct {
	Model         string
	MaxIterations int
	// ContextSize is the model context window in tokens, for the
	// context gauge.
	ContextSize int64
	SessionId   string
}

// Deps are the collaborators one agent drives.
type Deps struct {
	LLM      llm.LLM
	Registry *tool.Registry
	Gate     *safety.Gate
	Bus      *event.Bus
	Conv     *Conversation
}

// Agent runs user turns: it streams model output, routes tool calls
// through the confirmation gate, and publishes everything the UI
// renders onto the event bus.
type Agent struct {
	cfg Config
	d   Deps

	processing atomic.Bool
}

func New(cfg Config, d Deps) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 20
	}
	return &Agent{cfg: cfg, d: d}
}

func (a *Agent) Processing() bool {
	return a.processing.Load()
}

func (a *Agent) Conversation() *Conversation {
	return a.d.Conv
}

func (a *Agent) publish(typ event.Type, src event.Source, payload map[string]any) {
	a.d.Bus.Publish(event.New(typ, src, a.cfg.SessionId, payload))
}

// publishFailure is the turn-boundary failure signal: a system-sourced
// tool result the transcript renders as a failure card, plus a ready
// status so the UI never sticks in processing.
func (a *Agent) publishFailure(detail string) {
	a.publish(event.TypeToolResult, event.SourceSystem, map[string]any{
		"tool_name": "system",
		"arguments": "",
		"content":   "CRITICAL_FAILURE: " + detail,
		"is_error":  true,
	})
	a.publish(event.TypeStatus, event.SourceSystem, map[string]any{"state": "ready"})
}

// ProcessTurn runs one user turn to completion. It is the single error
// chokepoint for the turn: panics and provider failures surface as
// events, and stream_end is published on every exit path.
func (a *Agent) ProcessTurn(ctx context.Context, input string) (err error) {
	if !a.processing.CompareAndSwap(false, true) {
		return ErrBusy
	}

	defer a.processing.Store(false)
	defer a.publish(event.TypeAgentState, event.SourceAgent, map[string]any{"state": "ready"})
	defer a.publish(event.TypeStreamEnd, event.SourceAgent, nil)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[agent] turn panicked", "error", r)
			a.publishFailure(fmt.Sprintf("%v", r))
			err = fmt.Errorf("turn failed: %v", r)
		}
	}()

	slog.Info("[agent] turn started", "input_chars", len(input))
	a.publish(event.TypeAgentState, event.SourceAgent, map[string]any{"state": "thinking"})
	a.d.Conv.AppendUser(input)

	toolParams := a.buildToolParams()

	for iter := 0; iter < a.cfg.MaxIterations; iter++ {
		if ctx.Err() != nil {
			a.handleInterrupt("")
			return nil
		}

		req := schema.NewRequest(a.cfg.Model, a.d.Conv.Messages()).WithTools(toolParams)

		ch, err := a.d.LLM.ChatCompletionStream(ctx, req)
		if err != nil {
			a.publishFailure(err.Error())
			return err
		}

		var streamed strings.Builder
		msg, usage, err := schema.AccumulateStream(ctx, ch, func(delta schema.StreamChoiceDelta) {
			if delta.Content == "" {
				return
			}
			streamed.WriteString(delta.Content)
			a.publish(event.TypeMessage, event.SourceAgent, map[string]any{
				"role":  "assistant",
				"delta": delta.Content,
				"done":  false,
			})
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				a.handleInterrupt(streamed.String())
				return nil
			}
			a.publishFailure(err.Error())
			return err
		}

		a.d.Conv.AppendAssistant(msg)
		a.publish(event.TypeContext, event.SourceAgent, map[string]any{
			"ctx_pct": a.d.Conv.ContextPercent(req, usage),
		})

		if !msg.HasToolCalls() {
			return nil
		}

		a.publishPlan(msg)

		for i := range msg.ToolCalls {
			tc := &msg.ToolCalls[i]
			if ctx.Err() != nil {
				// Keep the history valid: every requested call needs
				// a result even when the user bailed out.
				a.d.Conv.AppendToolResult(tc.Id, "Canceled by user")
				continue
			}

			result, executed := a.executeToolCall(ctx, tc)
			a.d.Conv.AppendToolResult(tc.Id, result.Content)
			a.publish(event.TypeToolResult, event.SourceAgent, map[string]any{
				"tool_name": tc.Function.Name,
				"arguments": tc.Function.Arguments,
				"content":   result.Content,
				"is_error":  result.IsError,
			})
			if executed {
				a.maybePublishVerify(tc, result)
			}
		}

		if ctx.Err() != nil {
			a.handleInterrupt("")
			return nil
		}
	}

	slog.Warn("[agent] max iterations reached", "max", a.cfg.MaxIterations)
	a.publish(event.TypeMessage, event.SourceAgent, map[string]any{
		"role":  "assistant",
		"delta": fmt.Sprintf("\n\n(stopped after %d tool iterations)", a.cfg.MaxIterations),
		"done":  true,
	})
	return nil
}

func (a *Agent) buildToolParams() []schema.ToolParam {
	defs := a.d.Registry.Definitions()
	params := make([]schema.ToolParam, 0, len(defs))
	for _, def := range defs {
		params = append(params, schema.NewToolParam(def.Name, def.Description, def.Schema))
	}
	return params
}

// handleInterrupt repairs the history of a canceled turn. Partial
// streamed text goes in with the marker appended so the transcript
// matches what the user saw; the marker itself is drawn by the UI,
// which cancelled us, so no message event is published here.
func (a *Agent) handleInterrupt(partial string) {
	slog.Info("[agent] turn interrupted")
	if partial != "" {
		a.d.Conv.AppendAssistant(&schema.CompletionMessage{
			Role:    schema.RoleAssistant,
			Content: partial + interruptMarker,
		})
	}
}

// executeToolCall routes one call through the gate and, when approved,
// the registry. Denials come back as error results the model can read;
// executed reports whether the tool actually ran.
func (a *Agent) executeToolCall(ctx context.Context, tc *schema.CompletionToolCall) (tool.Result, bool) {
	call := tool.NewCall(tc.Id, tc.Function.Name, tc.Function.Arguments)
	a.publish(event.TypeAgentState, event.SourceAgent, map[string]any{"state": "calling " + call.Name})

	ok, outcome := a.d.Gate.Confirm(ctx, call.Name, call.RawArgs, call.Args)
	if !ok {
		slog.Info("[agent] tool call denied", "tool", call.Name, "outcome", string(outcome))
		return tool.ErrorResult(call.ID, deniedContent(call.Name, outcome)), false
	}

	return a.d.Registry.Execute(ctx, call), true
}

func deniedContent(name string, outcome safety.Outcome) string {
	switch outcome {
	case safety.OutcomeDeniedSafe:
		return fmt.Sprintf("Tool call %s denied: armed mode required. The session is in SAFE mode; ask the user to press F2 to arm before retrying", name)
	case safety.OutcomeDeniedNoPrompt:
		return fmt.Sprintf("Tool call %s denied: no interactive approval is available in this session", name)
	default:
		return fmt.Sprintf("Tool call %s denied by the user. Do not retry with the same arguments; ask what to do instead", name)
	}
}

// publishPlan announces the calls the model queued this iteration.
func (a *Agent) publishPlan(msg *schema.CompletionMessage) {
	names := make([]string, 0, len(msg.ToolCalls))
	for i := range msg.ToolCalls {
		names = append(names, msg.ToolCalls[i].Function.Name)
	}
	a.publish(event.TypePlan, event.SourceAgent, map[string]any{
		"steps": strings.Join(names, ", "),
	})
}

func (a *Agent) maybePublishVerify(tc *schema.CompletionToolCall, result tool.Result) {
	if tc.Function.Name != "run_command" {
		return
	}
	var input struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
		return
	}
	if !IsVerifyCommand(input.Command) {
		return
	}

	a.publish(event.TypeVerifyResult, event.SourceAgent, map[string]any{
		"command": input.Command,
		"summary": SummarizeVerify(result.Content, result.IsError),
		"ok":      !result.IsError,
	})
}
