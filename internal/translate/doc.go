// Package translate normalizes native tool schemas into the canonical
// descriptor every other component works with.
//
// The dialect set is closed: the parameter-object shape (plain MCP
// inputSchema) and the function-declaration shape (GenAI-style, object
// schema nested under "parameters" with enum-cased types). A tool in any
// other shape yields UnsupportedSchemaError and is dropped individually;
// translation failure never fails a discovery cycle.
package translate
