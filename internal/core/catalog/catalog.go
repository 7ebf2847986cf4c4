// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/specter-re/specter/internal/core/schema"
)

// ToolCategory groups related analysis operations.
type ToolCategory string

const (
	CategoryBasic           ToolCategory = "basic"
	CategoryMemoryRead      ToolCategory = "memory_read"
	CategoryMemoryWrite     ToolCategory = "memory_write"
	CategoryPatternScan     ToolCategory = "pattern_scan"
	CategoryDisassemble     ToolCategory = "disassemble"
	CategoryBreakpointDebug ToolCategory = "breakpoint_debug"
	CategoryProcessModule   ToolCategory = "process_module"
)

// Parameter describes one declared tool parameter.
type Parameter struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	Description string      `json:"description" yaml:"description"`
	Required    bool        `json:"required" yaml:"required"`
	Default     interface{} `json:"default,omitempty" yaml:"default,omitempty"`
}

// ToolMetadata describes a registered tool.
type ToolMetadata struct {
	Name             string       `json:"name" yaml:"name"`
	Description      string       `json:"description" yaml:"description"`
	Category         ToolCategory `json:"category" yaml:"category"`
	Parameters       []Parameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Destructive      bool         `json:"destructive" yaml:"destructive"`
	RequiresApproval bool         `json:"requires_approval" yaml:"requires_approval"`
}

// ToolFunc is the invocable behind a tool name.
type ToolFunc func(args map[string]interface{}) (interface{}, error)

// Tool pairs metadata with its function.
type Tool struct {
	Metadata ToolMetadata
	Func     ToolFunc
}

// Registry maps tool names to tools. Safe for concurrent lookups.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry
func (r *Registry) Register(metadata ToolMetadata, fn ToolFunc) error {
	if metadata.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("tool '%s' has no function", metadata.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[metadata.Name]; exists {
		return fmt.Errorf("tool '%s' is already registered", metadata.Name)
	}

	r.tools[metadata.Name] = Tool{Metadata: metadata, Func: fn}
	return nil
}

// GetTool looks up a tool by name
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// GetMetadata looks up a tool's metadata by name
func (r *Registry) GetMetadata(name string) (ToolMetadata, bool) {
	tool, ok := r.GetTool(name)
	return tool.Metadata, ok
}

// ListTools returns metadata for all registered tools, sorted by name
func (r *Registry) ListTools() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]ToolMetadata, 0, len(r.tools))
	for _, tool := range r.tools {
		list = append(list, tool.Metadata)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// ListByCategory returns metadata for all tools in a category, sorted by name
func (r *Registry) ListByCategory(category ToolCategory) []ToolMetadata {
	var list []ToolMetadata
	for _, metadata := range r.ListTools() {
		if metadata.Category == category {
			list = append(list, metadata)
		}
	}
	return list
}

// Search returns tools whose name or description contains the query
// (case-insensitive)
func (r *Registry) Search(query string) []ToolMetadata {
	query = strings.ToLower(query)

	var list []ToolMetadata
	for _, metadata := range r.ListTools() {
		if strings.Contains(strings.ToLower(metadata.Name), query) ||
			strings.Contains(strings.ToLower(metadata.Description), query) {
			list = append(list, metadata)
		}
	}
	return list
}

// RequiredParameters returns the names of a tool's required parameters
func (r *Registry) RequiredParameters(name string) []string {
	metadata, ok := r.GetMetadata(name)
	if !ok {
		return nil
	}

	var required []string
	for _, param := range metadata.Parameters {
		if param.Required {
			required = append(required, param.Name)
		}
	}
	return required
}

// ValidateParameters checks arguments against a tool's declared parameter
// set. Unknown parameters and missing required parameters both fail.
func (r *Registry) ValidateParameters(name string, args map[string]interface{}) error {
	metadata, ok := r.GetMetadata(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	return schema.ValidateParams(buildSchema(metadata.Parameters), args)
}

// buildSchema converts a parameter list into a JSON schema. Extra
// properties are rejected so stray arguments fail validation.
func buildSchema(params []Parameter) map[string]interface{} {
	properties := make(map[string]interface{})
	var required []string

	for _, param := range params {
		prop := map[string]interface{}{
			"type": jsonType(param.Type),
		}
		if param.Description != "" {
			prop["description"] = param.Description
		}
		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	s := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// jsonType maps a declared parameter type to its JSON schema type
func jsonType(t string) string {
	switch t {
	case "int", "integer":
		return "integer"
	case "float", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "object", "map":
		return "object"
	case "array", "list":
		return "array"
	default:
		return "string"
	}
}
