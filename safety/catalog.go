package safety

import "sync"

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// PreviewKind says which advisory diff the gate can build for a tool.
type PreviewKind int

const (
	PreviewNone PreviewKind = iota
	PreviewWrite
	PreviewReplace
)

// Profile is the static risk classification of one tool: its approval
// category, the one-line reason shown in the decision dialog, the
// severity badge, whether calls must pass the gate at all, and which
// diff preview applies. Registered alongside the tool itself so all
// risk knowledge lives in this one table.
type Profile struct {
	Category Category
	Reason   string
	Severity Severity
	Gated    bool
	Preview  PreviewKind
}

// defaultProfile is handed out for names the catalog has never seen.
// Unknown tools stay gated so anything new asks every time instead of
// slipping past the gate, and classification never fails.
var defaultProfile = Profile{
	Category: CategoryOther,
	Reason:   "Tool execution",
	Severity: SeverityLow,
	Gated:    true,
}

type Catalog struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewCatalog() *Catalog {
	return &Catalog{profiles: make(map[string]Profile)}
}

func (c *Catalog) Register(name string, p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[name] = p
}

// Lookup is total: unregistered names get the default gated profile.
func (c *Catalog) Lookup(name string) Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if p, ok := c.profiles[name]; ok {
		return p
	}
	return defaultProfile
}

// Classify returns the approval category for a tool name.
func (c *Catalog) Classify(name string) Category {
	return c.Lookup(name).Category
}
