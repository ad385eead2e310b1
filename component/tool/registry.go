package tool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"codeward/pkg/xmap"
)

// Registry holds every tool the agent may call, builtin and MCP alike.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	name := t.Definition().Name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; ok {
		slog.Warn("[tool] registered twice, replacing", "name", name)
	}
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := xmap.Keys(r.tools)
	sort.Strings(names)
	return names
}

// Definitions lists tool metadata sorted by name so provider payloads
// stay stable between requests.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	tools := xmap.Values(r.tools)
	r.mu.RUnlock()

	defs := make([]Definition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute runs one call and folds every failure mode into a Result.
// Unknown tool names are an error result, not a crash.
func (r *Registry) Execute(ctx context.Context, call Call) Result {
	t, ok := r.Get(call.Name)
	if !ok {
		return ErrorResult(call.ID, fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	start := time.Now()
	out, err := t.Invoke(ctx, call.RawArgs)
	elapsed := time.Since(start)

	if err != nil {
		slog.Warn("[tool] invoke failed", "name", call.Name, "elapsed", elapsed, "error", err)
		return ErrorResult(call.ID, err.Error())
	}

	slog.Info("[tool] invoked", "name", call.Name, "elapsed", elapsed)
	return Result{CallID: call.ID, Content: out}
}
