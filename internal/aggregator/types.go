package aggregator

import (
	"sort"
	"time"

	"toolmux/internal/health"
	"toolmux/internal/translate"

	"github.com/mark3labs/mcp-go/mcp"
)

// Conflict-log reasons.
const (
	// ReasonPriority means the winner had a strictly lower priority
	// number than every loser.
	ReasonPriority = "priority"
	// ReasonConfigOrder means at least one loser tied the winner's
	// priority and configuration order broke the tie.
	ReasonConfigOrder = "config-order-tiebreak"
)

// ConflictEntry records one resolved tool-name collision.
type ConflictEntry struct {
	Name   string   `json:"name"`
	Winner string   `json:"winner"`
	Losers []string `json:"losers"`
	Reason string   `json:"reason"`
}

// ToolSet is one immutable aggregation snapshot: the winning descriptor per
// canonical name plus the conflict log of the cycle that built it. Readers
// holding an older snapshot are unaffected by later swaps.
type ToolSet struct {
	CycleID   string
	BuiltAt   time.Time
	Conflicts []ConflictEntry

	byName map[string]translate.ToolDescriptor
	sorted []translate.ToolDescriptor
}

// newToolSet builds a snapshot from the resolved descriptors. Names are
// unique by construction (the resolver picks one winner per name).
func newToolSet(cycleID string, descriptors []translate.ToolDescriptor, conflicts []ConflictEntry) *ToolSet {
	byName := make(map[string]translate.ToolDescriptor, len(descriptors))
	sorted := make([]translate.ToolDescriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, d := range sorted {
		byName[d.Name] = d
	}
	return &ToolSet{
		CycleID:   cycleID,
		BuiltAt:   time.Now(),
		Conflicts: conflicts,
		byName:    byName,
		sorted:    sorted,
	}
}

// Lookup returns the winning descriptor for a canonical name.
func (ts *ToolSet) Lookup(name string) (translate.ToolDescriptor, bool) {
	d, ok := ts.byName[name]
	return d, ok
}

// Tools returns the descriptors in ascending name order. The returned slice
// is a copy; the snapshot itself stays immutable.
func (ts *ToolSet) Tools() []translate.ToolDescriptor {
	out := make([]translate.ToolDescriptor, len(ts.sorted))
	copy(out, ts.sorted)
	return out
}

// Len returns the number of aggregated tools.
func (ts *ToolSet) Len() int {
	return len(ts.sorted)
}

// Outcome is the per-server result of one discovery cycle.
type Outcome struct {
	Server string
	// Tools holds the native descriptors when discovery succeeded.
	Tools []mcp.Tool
	// Err is the failure reason when it did not.
	Err error
	// Elapsed is how long the server's listing took (or ran before
	// timing out).
	Elapsed time.Duration
	// Dropped counts tools rejected by schema translation this cycle.
	Dropped int
}

// Succeeded reports whether the server's listing completed.
func (o Outcome) Succeeded() bool { return o.Err == nil }

// CycleResult summarizes one discovery cycle.
type CycleResult struct {
	ID       string
	Started  time.Time
	Elapsed  time.Duration
	Outcomes map[string]Outcome
	// ToolCount and Conflicts describe the snapshot the cycle produced.
	ToolCount int
	Conflicts []ConflictEntry
}

// Failures counts servers whose discovery failed this cycle.
func (r CycleResult) Failures() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			n++
		}
	}
	return n
}

// ServerStatus is the per-server view exposed by Engine.Status.
type ServerStatus struct {
	Server              string       `json:"server"`
	Enabled             bool         `json:"enabled"`
	State               health.State `json:"state"`
	ConsecutiveFailures int          `json:"failureCount"`
	LastSuccess         time.Time    `json:"lastSuccess,omitzero"`
	ToolCount           int          `json:"toolCount"`
}
