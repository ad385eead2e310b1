package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type staticTool struct {
	name string
	out  string
	err  error
}

func (s *staticTool) Definition() Definition {
	return Definition{Name: s.name, Description: "test tool"}
}

func (s *staticTool) Invoke(ctx context.Context, arguments string) (string, error) {
	return s.out, s.err
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()

	res := r.Execute(t.Context(), NewCall("c1", "nope", "{}"))
	if !res.IsError {
		t.Fatalf("unknown tool should produce an error result")
	}
	if res.Content != "Unknown tool: nope" {
		t.Fatalf("content = %q", res.Content)
	}
	if res.CallID != "c1" {
		t.Fatalf("call id = %q, want c1", res.CallID)
	}
}

func TestRegistryExecuteSuccess(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticTool{name: "echo", out: "hello"})

	res := r.Execute(t.Context(), NewCall("c2", "echo", `{"x":1}`))
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Content)
	}
	if res.Content != "hello" || res.CallID != "c2" {
		t.Fatalf("result = %+v", res)
	}
}

func TestRegistryExecuteToolError(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticTool{name: "boom", err: errors.New("file not found. Check the path and retry")})

	res := r.Execute(t.Context(), NewCall("c3", "boom", "{}"))
	if !res.IsError {
		t.Fatalf("tool failure should produce an error result")
	}
	if !strings.Contains(res.Content, "file not found") {
		t.Fatalf("error result should carry the remediation text, got %q", res.Content)
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticTool{name: "dup", out: "first"})
	r.Register(&staticTool{name: "dup", out: "second"})

	res := r.Execute(t.Context(), NewCall("c4", "dup", "{}"))
	if res.Content != "second" {
		t.Fatalf("later registration should win, got %q", res.Content)
	}
	if len(r.Names()) != 1 {
		t.Fatalf("duplicate registration should not grow the registry: %v", r.Names())
	}
}

func TestRegistryDefinitionsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&staticTool{name: "zeta"})
	r.Register(&staticTool{name: "alpha"})
	r.Register(&staticTool{name: "mid"})

	defs := r.Definitions()
	want := []string{"alpha", "mid", "zeta"}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i, d := range defs {
		if d.Name != want[i] {
			t.Fatalf("definitions[%d] = %q, want %q", i, d.Name, want[i])
		}
	}
}

func TestNewCallParsesArgs(t *testing.T) {
	c := NewCall("c5", "echo", `{"path":"a.go","n":2}`)
	if c.Args == nil {
		t.Fatalf("valid JSON args should be parsed")
	}
	if c.Args["path"] != "a.go" {
		t.Fatalf("args = %v", c.Args)
	}

	bad := NewCall("c6", "echo", `{not json`)
	if bad.Args != nil {
		t.Fatalf("invalid JSON should leave Args nil, got %v", bad.Args)
	}
	if bad.RawArgs != `{not json` {
		t.Fatalf("raw args must be preserved verbatim")
	}
}

type greetInput struct {
	Name string `json:"name" jsonschema:"description=Who to greet"`
}

func TestFuncToolDecodesInput(t *testing.T) {
	greet := Func(Definition{Name: "greet", Description: "says hi"},
		func(ctx context.Context, in greetInput) (string, error) {
			return "hi " + in.Name, nil
		})

	out, err := greet.Invoke(t.Context(), `{"name":"sam"}`)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if out != "hi sam" {
		t.Fatalf("out = %q", out)
	}

	if greet.Definition().Schema == nil {
		t.Fatalf("schema should be reflected from the input type")
	}
}

func TestFuncToolRejectsBadJSON(t *testing.T) {
	greet := Func(Definition{Name: "greet"},
		func(ctx context.Context, in greetInput) (string, error) {
			return "unreachable", nil
		})

	_, err := greet.Invoke(t.Context(), `{"name":`)
	if err == nil {
		t.Fatalf("malformed arguments should error")
	}
	if !strings.Contains(err.Error(), "invalid arguments for greet") {
		t.Fatalf("error should name the tool: %v", err)
	}
}

func TestFuncToolEmptyArguments(t *testing.T) {
	count := Func(Definition{Name: "count"},
		func(ctx context.Context, in greetInput) (string, error) {
			return "ok", nil
		})

	out, err := count.Invoke(t.Context(), "")
	if err != nil {
		t.Fatalf("empty arguments should decode to the zero value: %v", err)
	}
	if out != "ok" {
		t.Fatalf("out = %q", out)
	}
}
