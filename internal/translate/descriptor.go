package translate

import "github.com/mark3labs/mcp-go/mcp"

// Param is one canonical tool parameter.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// ToolDescriptor is the canonical, dialect-independent description of one
// tool. Descriptors are rebuilt every discovery cycle and never persisted.
type ToolDescriptor struct {
	// Name is the canonical tool name consumers dispatch on.
	Name string `json:"name"`

	// Description is the provider-supplied human-readable description.
	Description string `json:"description,omitempty"`

	// Params is the ordered (name-ascending) canonical parameter list.
	Params []Param `json:"params,omitempty"`

	// Server names the owning source server.
	Server string `json:"server"`

	// Priority is the owning server's priority, recorded for conflict
	// resolution and status reporting.
	Priority int `json:"priority"`

	// Native retains the provider's original tool descriptor so dispatch
	// can pass the untranslated schema through to the consumer.
	Native mcp.Tool `json:"-"`
}
