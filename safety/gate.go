package safety

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Decision is the user's answer to the three-way dialog.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionApproveOnce
	DecisionApproveCategory
)

// Outcome labels how a gate decision was reached, for decision cards
// and the session audit log.
type Outcome string

const (
	OutcomeAllowed          Outcome = "allowed (ungated)"
	OutcomeApprovedOnce     Outcome = "approved once"
	OutcomeApprovedCategory Outcome = "approved for category"
	OutcomeAutoApproved     Outcome = "auto-approved (category)"
	OutcomeDenied           Outcome = "denied"
	OutcomeDeniedSafe       Outcome = "denied (safe mode)"
	OutcomeDeniedNoPrompt   Outcome = "denied (no confirmer)"
)

func (o Outcome) Approved() bool {
	switch o {
	case OutcomeAllowed, OutcomeApprovedOnce, OutcomeApprovedCategory, OutcomeAutoApproved:
		return true
	}
	return false
}

// Request carries everything the decision dialog shows for one call.
type Request struct {
	Tool     string
	RawArgs  string
	Args     map[string]any
	Category Category
	Reason   string
	Severity Severity
	Path     string // file the preview refers to, "" when none
	Diff     string // advisory unified diff, "" when unavailable
}

// Record is the audit entry for one decision. Auto-approvals are
// recorded too, marked non-interactive, so the transcript always shows
// why execution proceeded.
type Record struct {
	Tool        string
	Category    Category
	Outcome     Outcome
	Interactive bool
	When        time.Time
}

// Prompter is the UI side of the gate. Both calls block until the user
// responds or ctx is cancelled; the gate treats every failure as deny.
type Prompter interface {
	// Prompt shows the three-way decision dialog.
	Prompt(ctx context.Context, req *Request) (Decision, error)
	// RequireArmed shows the "arm first" notice for gated calls in SAFE mode.
	RequireArmed(ctx context.Context, req *Request)
}

// Gate is the single chokepoint between the agent and every gated tool
// call. State is mutex-guarded because the agent goroutine consults the
// mode while the UI goroutine toggles it.
type Gate struct {
	mu       sync.Mutex
	mode     Mode
	prompter Prompter
	sink     func(Record)

	tracker   *Tracker
	catalog   *Catalog
	previewer *Previewer
}

// NewGate starts in SAFE mode with nothing approved.
func NewGate(catalog *Catalog, tracker *Tracker) *Gate {
	return &Gate{
		mode:    ModeSafe,
		catalog: catalog,
		tracker: tracker,
	}
}

// SetPrompter wires the UI bridge. Without one the gate fails closed.
func (g *Gate) SetPrompter(p Prompter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompter = p
}

// SetPreviewer enables advisory diff previews in decision dialogs.
func (g *Gate) SetPreviewer(p *Previewer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.previewer = p
}

// SetDecisionSink receives a Record for every decision, interactive or
// not. Called from the agent goroutine.
func (g *Gate) SetDecisionSink(fn func(Record)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sink = fn
}

func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

func (g *Gate) Tracker() *Tracker {
	return g.tracker
}

func (g *Gate) Catalog() *Catalog {
	return g.catalog
}

// Arm moves SAFE to ARMED. No-op in any other mode.
func (g *Gate) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeSafe {
		g.mode = ModeArmed
		slog.Info("[gate] armed")
	}
}

// Disarm moves ARMED back to SAFE and forgets every category approval.
// No-op while a decision is pending; the dialog owns the mode then.
func (g *Gate) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode == ModeArmed {
		g.mode = ModeSafe
		g.tracker.Reset()
		slog.Info("[gate] disarmed, approvals reset")
	}
}

func (g *Gate) setMode(m Mode) {
	g.mu.Lock()
	g.mode = m
	g.mu.Unlock()
}

// Confirm decides one gated tool call. It returns whether the call may
// run plus the outcome that explains why. Never panics; anything
// unexpected denies.
func (g *Gate) Confirm(ctx context.Context, name, rawArgs string, args map[string]any) (bool, Outcome) {
	profile := g.catalog.Lookup(name)

	// Ungated tools run without asking in every mode. No audit entry;
	// the registry already logs the invocation itself.
	if !profile.Gated {
		return true, OutcomeAllowed
	}

	g.mu.Lock()
	mode := g.mode
	prompter := g.prompter
	previewer := g.previewer
	g.mu.Unlock()

	req := &Request{
		Tool:     name,
		RawArgs:  rawArgs,
		Args:     args,
		Category: profile.Category,
		Reason:   profile.Reason,
		Severity: profile.Severity,
	}

	// Headless means nobody can approve. Fail closed.
	if prompter == nil {
		g.record(name, profile.Category, OutcomeDeniedNoPrompt, false)
		return false, OutcomeDeniedNoPrompt
	}

	if mode == ModeSafe {
		prompter.RequireArmed(ctx, req)
		g.record(name, profile.Category, OutcomeDeniedSafe, false)
		return false, OutcomeDeniedSafe
	}

	if g.tracker.IsApproved(profile.Category) {
		g.record(name, profile.Category, OutcomeAutoApproved, false)
		return true, OutcomeAutoApproved
	}

	// A decision dialog is going up. Whatever happens from here, the
	// mode must land back on ARMED.
	g.setMode(ModeArmedPending)
	defer g.setMode(ModeArmed)

	if previewer != nil {
		req.Path, req.Diff = previewer.Build(profile, args)
	}

	decision, err := prompter.Prompt(ctx, req)
	if err != nil || ctx.Err() != nil {
		g.record(name, profile.Category, OutcomeDenied, true)
		return false, OutcomeDenied
	}

	switch decision {
	case DecisionApproveOnce:
		g.record(name, profile.Category, OutcomeApprovedOnce, true)
		return true, OutcomeApprovedOnce
	case DecisionApproveCategory:
		g.tracker.Approve(profile.Category)
		g.record(name, profile.Category, OutcomeApprovedCategory, true)
		return true, OutcomeApprovedCategory
	default:
		g.record(name, profile.Category, OutcomeDenied, true)
		return false, OutcomeDenied
	}
}

func (g *Gate) record(tool string, cat Category, outcome Outcome, interactive bool) {
	rec := Record{
		Tool:        tool,
		Category:    cat,
		Outcome:     outcome,
		Interactive: interactive,
		When:        time.Now(),
	}

	slog.Info("[gate] decision",
		"tool", tool, "category", cat, "outcome", outcome, "interactive", interactive)

	g.mu.Lock()
	sink := g.sink
	g.mu.Unlock()
	if sink != nil {
		sink(rec)
	}
}
