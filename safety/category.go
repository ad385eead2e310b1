package safety

import (
	"sort"
	"sync"
)

// Category buckets tools by the kind of side effect they have. Blanket
// approvals are keyed by category, never by individual arguments.
type Category string

const (
	CategoryFileWrite Category = "file_write"
	CategoryShellExec Category = "shell_exec"
	CategoryGitOp     Category = "git_op"
	CategoryOther     Category = "other"
)

// Tracker remembers which categories the user has blanket-approved in
// this session. In-memory only; Reset is called when the user disarms
// or clears the transcript, and nothing survives a restart.
type Tracker struct {
	mu       sync.Mutex
	approved map[Category]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{approved: make(map[Category]struct{})}
}

func (t *Tracker) IsApproved(c Category) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.approved[c]
	return ok
}

// Approve marks c approved for the rest of the session. Idempotent.
func (t *Tracker) Approve(c Category) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.approved[c] = struct{}{}
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.approved = make(map[Category]struct{})
}

// Approved lists the approved categories, sorted for stable display.
func (t *Tracker) Approved() []Category {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Category, 0, len(t.approved))
	for c := range t.approved {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
