package health

import (
	"sync"
	"time"

	"toolmux/pkg/logging"
)

// State is a server's availability as seen across discovery attempts.
type State string

const (
	// StateUnknown means no discovery attempt has completed yet.
	StateUnknown State = "unknown"
	// StateAvailable means the last discovery attempt succeeded.
	StateAvailable State = "available"
	// StateDegraded means recent failures below the threshold: the server
	// still aggregates but is flagged in status reporting.
	StateDegraded State = "degraded"
	// StateUnavailable means consecutive failures reached the threshold.
	StateUnavailable State = "unavailable"
)

// ServerHealth is the tracked record for one server. Records are created on
// the first discovery attempt and live for the process lifetime.
type ServerHealth struct {
	Server              string    `json:"server"`
	State               State     `json:"state"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastSuccess         time.Time `json:"lastSuccess,omitzero"`
	LastFailure         time.Time `json:"lastFailure,omitzero"`
	LastError           string    `json:"lastError,omitempty"`
}

// Tracker records per-server discovery outcomes and derives availability.
// All methods are safe for concurrent use; updates for distinct servers
// during a cycle serialize on one mutex, which is fine at one update per
// server per cycle.
type Tracker struct {
	mu        sync.Mutex
	threshold int
	records   map[string]*ServerHealth
	order     []string
}

// NewTracker creates a tracker that marks a server unavailable once its
// consecutive failure count reaches threshold.
func NewTracker(threshold int) *Tracker {
	if threshold < 1 {
		threshold = 1
	}
	return &Tracker{
		threshold: threshold,
		records:   make(map[string]*ServerHealth),
	}
}

// RecordSuccess resets the server's failure streak and marks it available.
func (t *Tracker) RecordSuccess(server string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.record(server)
	rec.ConsecutiveFailures = 0
	rec.State = StateAvailable
	rec.LastSuccess = time.Now()
	rec.LastError = ""
}

// RecordFailure increments the server's failure streak and downgrades its
// state: degraded below the threshold, unavailable at or above it.
func (t *Tracker) RecordFailure(server string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.record(server)
	rec.ConsecutiveFailures++
	rec.LastFailure = time.Now()
	if err != nil {
		rec.LastError = err.Error()
	}

	if rec.ConsecutiveFailures >= t.threshold {
		if rec.State != StateUnavailable {
			logging.Warn("Health", "Server %s marked unavailable after %d consecutive failures",
				server, rec.ConsecutiveFailures)
		}
		rec.State = StateUnavailable
	} else {
		rec.State = StateDegraded
	}
}

// IsAvailable reports whether the server may contribute tools. Unknown and
// degraded servers are eligible; only unavailable ones are excluded.
func (t *Tracker) IsAvailable(server string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[server]
	if !ok {
		return true
	}
	return rec.State != StateUnavailable
}

// Get returns a copy of the server's record.
func (t *Tracker) Get(server string) (ServerHealth, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[server]
	if !ok {
		return ServerHealth{}, false
	}
	return *rec, true
}

// Snapshot returns copies of every record in first-seen order.
func (t *Tracker) Snapshot() []ServerHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ServerHealth, 0, len(t.order))
	for _, server := range t.order {
		out = append(out, *t.records[server])
	}
	return out
}

// record returns the server's record, creating it on first sight. Records
// are never deleted.
func (t *Tracker) record(server string) *ServerHealth {
	rec, ok := t.records[server]
	if !ok {
		rec = &ServerHealth{Server: server, State: StateUnknown}
		t.records[server] = rec
		t.order = append(t.order, server)
	}
	return rec
}
