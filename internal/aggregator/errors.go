package aggregator

import (
	"errors"
	"fmt"
)

// ErrNoEnabledServers is returned at construction time when the
// configuration contains no enabled source servers. This is the only fatal
// condition of the engine; everything at cycle time degrades gracefully.
var ErrNoEnabledServers = errors.New("no enabled source servers configured")

// ToolNotFoundError indicates a dispatch against a name absent from the
// current snapshot.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Tool)
}

// UnavailableServerError indicates a dispatch whose winning server is
// currently marked unavailable. Health is checked at call time, so a stale
// descriptor fails fast instead of invoking a known-unhealthy provider.
type UnavailableServerError struct {
	Server string
	Tool   string
}

func (e *UnavailableServerError) Error() string {
	return fmt.Sprintf("tool %q belongs to server %q which is currently unavailable", e.Tool, e.Server)
}
