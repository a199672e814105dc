package translate

import "fmt"

// UnsupportedSchemaError indicates a tool whose native schema matches none
// of the known dialects. The policy is per-tool: the tool is dropped and
// logged, the rest of the server's tools proceed.
type UnsupportedSchemaError struct {
	Server string
	Tool   string
	Reason string
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("tool %q from server %q has an unsupported schema: %s", e.Tool, e.Server, e.Reason)
}
