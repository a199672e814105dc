package translate

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// The two native schema dialects toolmux understands. Anything else is an
// UnsupportedSchemaError for that single tool.
//
//   - parameter-object: a JSON-Schema object, the plain MCP inputSchema
//     shape: {"type":"object","properties":{...},"required":[...]}
//   - function-declaration: a GenAI-style declaration wrapping the object
//     schema under a "parameters" key, with enum-cased types:
//     {"name":...,"parameters":{"type":"OBJECT","properties":{...}}}

// canonicalTypes is the closed set of canonical parameter types. Anything
// a dialect reports outside this set falls back to "string", keeping
// translation total per dialect.
var canonicalTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"object":  true,
	"array":   true,
	"null":    true,
}

// Tool translates one native tool descriptor into the canonical form.
//
// Translation is total and deterministic for both known dialects; the
// parameter list comes out sorted by name. An empty or absent schema is a
// valid zero-argument tool, not an error.
func Tool(server string, priority int, tool mcp.Tool) (ToolDescriptor, error) {
	doc, err := schemaDocument(server, tool)
	if err != nil {
		return ToolDescriptor{}, err
	}

	params, err := translateSchema(server, tool.Name, doc)
	if err != nil {
		return ToolDescriptor{}, err
	}

	return ToolDescriptor{
		Name:        tool.Name,
		Description: tool.Description,
		Params:      params,
		Server:      server,
		Priority:    priority,
		Native:      tool,
	}, nil
}

// schemaDocument extracts the native schema as a generic document. Servers
// speaking plain MCP populate the structured InputSchema; providers with
// foreign dialects arrive through the raw schema bytes.
func schemaDocument(server string, tool mcp.Tool) (map[string]interface{}, error) {
	if len(tool.RawInputSchema) > 0 {
		var doc map[string]interface{}
		if err := json.Unmarshal(tool.RawInputSchema, &doc); err != nil {
			return nil, &UnsupportedSchemaError{
				Server: server,
				Tool:   tool.Name,
				Reason: "schema is not a JSON object: " + err.Error(),
			}
		}
		return doc, nil
	}

	doc := make(map[string]interface{})
	if tool.InputSchema.Type != "" {
		doc["type"] = tool.InputSchema.Type
	}
	if len(tool.InputSchema.Properties) > 0 {
		doc["properties"] = tool.InputSchema.Properties
	}
	if len(tool.InputSchema.Required) > 0 {
		required := make([]interface{}, len(tool.InputSchema.Required))
		for i, r := range tool.InputSchema.Required {
			required[i] = r
		}
		doc["required"] = required
	}
	return doc, nil
}

// translateSchema detects the dialect and produces the canonical parameter
// list.
func translateSchema(server, tool string, doc map[string]interface{}) ([]Param, error) {
	if len(doc) == 0 {
		// Zero-argument tool.
		return nil, nil
	}

	// function-declaration dialect: the object schema sits under
	// "parameters".
	if rawParams, ok := doc["parameters"]; ok {
		paramsDoc, ok := rawParams.(map[string]interface{})
		if !ok {
			return nil, &UnsupportedSchemaError{
				Server: server,
				Tool:   tool,
				Reason: "function declaration \"parameters\" is not an object",
			}
		}
		return translateObjectSchema(server, tool, paramsDoc)
	}

	// parameter-object dialect: a JSON-Schema object at the top level.
	typ, _ := doc["type"].(string)
	switch strings.ToLower(typ) {
	case "object":
		return translateObjectSchema(server, tool, doc)
	case "":
		if _, hasProps := doc["properties"]; hasProps {
			return translateObjectSchema(server, tool, doc)
		}
	}

	return nil, &UnsupportedSchemaError{
		Server: server,
		Tool:   tool,
		Reason: "unrecognized schema dialect (type " + quoteType(typ) + ")",
	}
}

func quoteType(typ string) string {
	if typ == "" {
		return "<absent>"
	}
	return "\"" + typ + "\""
}

// translateObjectSchema converts an object schema (either dialect, type
// casing notwithstanding) into the sorted canonical parameter list.
func translateObjectSchema(server, tool string, doc map[string]interface{}) ([]Param, error) {
	if typ, ok := doc["type"].(string); ok && strings.ToLower(typ) != "object" {
		return nil, &UnsupportedSchemaError{
			Server: server,
			Tool:   tool,
			Reason: "parameter schema has non-object type \"" + typ + "\"",
		}
	}

	rawProps, ok := doc["properties"]
	if !ok {
		return nil, nil
	}
	props, ok := rawProps.(map[string]interface{})
	if !ok {
		return nil, &UnsupportedSchemaError{
			Server: server,
			Tool:   tool,
			Reason: "\"properties\" is not an object",
		}
	}

	required := requiredSet(doc["required"])

	params := make([]Param, 0, len(props))
	for name, rawProp := range props {
		param := Param{
			Name:     name,
			Type:     "string",
			Required: required[name],
		}
		if prop, ok := rawProp.(map[string]interface{}); ok {
			if typ, ok := prop["type"].(string); ok {
				param.Type = normalizeType(typ)
			}
			if desc, ok := prop["description"].(string); ok {
				param.Description = desc
			}
		}
		params = append(params, param)
	}

	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params, nil
}

func requiredSet(raw interface{}) map[string]bool {
	set := make(map[string]bool)
	switch required := raw.(type) {
	case []interface{}:
		for _, r := range required {
			if name, ok := r.(string); ok {
				set[name] = true
			}
		}
	case []string:
		for _, name := range required {
			set[name] = true
		}
	}
	return set
}

// normalizeType lower-cases dialect type names into the canonical set.
// Unknown types fall back to "string", matching the permissive handling of
// provider-side schema quirks.
func normalizeType(typ string) string {
	lowered := strings.ToLower(typ)
	if canonicalTypes[lowered] {
		return lowered
	}
	return "string"
}
