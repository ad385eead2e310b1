package tool

import (
	"context"
	"encoding/json"

	"codeward/pkg/schema"
)

// Definition describes a tool to the model and to the UI. Dangerous is
// display metadata only; whether a call actually needs confirmation is
// decided by the safety catalog, not by this flag.
type Definition struct {
	Name        string
	Description string
	Schema      *schema.Schema
	Dangerous   bool
}

// Tool is the interface all tools implement.
type Tool interface {
	// Definition returns the tool metadata handed to the model.
	Definition() Definition

	// Invoke executes the tool. arguments is the JSON-encoded object
	// produced by the model. The returned error carries remediation
	// text and becomes an error result, never a crash.
	Invoke(ctx context.Context, arguments string) (string, error)
}

// Call is one tool invocation requested by the model. Args is the
// parsed form of RawArgs, nil when the arguments were not valid JSON.
type Call struct {
	ID      string
	Name    string
	RawArgs string
	Args    map[string]any
}

func NewCall(id, name, rawArgs string) Call {
	c := Call{ID: id, Name: name, RawArgs: rawArgs}
	if rawArgs != "" {
		var args map[string]any
		if err := json.Unmarshal([]byte(rawArgs), &args); err == nil {
			c.Args = args
		}
	}
	return c
}

// Result is the outcome of a tool call, executed or not. Denied and
// failed calls produce error results whose content explains what
// happened and what to do about it.
type Result struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
	IsError bool   `json:"is_error"`
}

func ErrorResult(callID, content string) Result {
	return Result{CallID: callID, Content: content, IsError: true}
}
