// SPDX-License-Identifier: Apache-2.0

// Package tools registers the built-in analysis operations. Every tool is
// a thin wrapper over one backend command; the orchestration core treats
// them as opaque named operations.
package tools

import (
	"fmt"

	"github.com/specter-re/specter/internal/backend"
	"github.com/specter-re/specter/internal/core/catalog"
)

// Register installs the built-in tool set into a registry, bound to the
// given backend client.
func Register(registry *catalog.Registry, client *backend.Client) error {
	// passthrough forwards the validated arguments as the backend command
	// parameters
	passthrough := func(command string) catalog.ToolFunc {
		return func(args map[string]interface{}) (interface{}, error) {
			return client.Call(command, args)
		}
	}

	addressParam := catalog.Parameter{
		Name: "address", Type: "string", Description: "Target address or symbol", Required: true,
	}

	tools := []struct {
		metadata catalog.ToolMetadata
		fn       catalog.ToolFunc
	}{
		{
			metadata: catalog.ToolMetadata{
				Name:        "ping",
				Description: "Check backend connectivity",
				Category:    catalog.CategoryBasic,
			},
			fn: func(map[string]interface{}) (interface{}, error) {
				if err := client.Ping(); err != nil {
					return nil, err
				}
				return "pong", nil
			},
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "get_process_info",
				Description: "Get information about the attached target process",
				Category:    catalog.CategoryBasic,
			},
			fn: passthrough("get_process_info"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "evaluate_lua",
				Description: "Evaluate a script on the backend and return its output",
				Category:    catalog.CategoryBasic,
				Parameters: []catalog.Parameter{
					{Name: "script", Type: "string", Description: "Script source to evaluate", Required: true},
				},
			},
			fn: func(args map[string]interface{}) (interface{}, error) {
				script, _ := args["script"].(string)
				return client.ExecuteScript(script)
			},
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "get_symbol_address",
				Description: "Resolve a symbol name to an address",
				Category:    catalog.CategoryProcessModule,
				Parameters: []catalog.Parameter{
					{Name: "symbol", Type: "string", Description: "Symbol name to resolve", Required: true},
				},
			},
			fn: passthrough("get_symbol_address"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "enum_modules",
				Description: "List modules loaded in the target process",
				Category:    catalog.CategoryProcessModule,
			},
			fn: passthrough("enum_modules"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "get_memory_regions",
				Description: "Map the target's memory regions and protections",
				Category:    catalog.CategoryMemoryRead,
			},
			fn: passthrough("get_memory_regions"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "read_memory",
				Description: "Read raw bytes from the target process",
				Category:    catalog.CategoryMemoryRead,
				Parameters: []catalog.Parameter{
					addressParam,
					{Name: "size", Type: "integer", Description: "Number of bytes to read", Required: true},
				},
			},
			fn: passthrough("read_memory"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "read_string",
				Description: "Read a string from the target process",
				Category:    catalog.CategoryMemoryRead,
				Parameters: []catalog.Parameter{
					addressParam,
					{Name: "max_length", Type: "integer", Description: "Maximum string length", Default: 256},
				},
			},
			fn: passthrough("read_string"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "read_pointer",
				Description: "Read a pointer-sized value from the target process",
				Category:    catalog.CategoryMemoryRead,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("read_pointer"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "write_memory",
				Description: "Write raw bytes into the target process",
				Category:    catalog.CategoryMemoryWrite,
				Parameters: []catalog.Parameter{
					addressParam,
					{Name: "data", Type: "string", Description: "Hex-encoded bytes to write", Required: true},
				},
				Destructive: true,
			},
			fn: func(args map[string]interface{}) (interface{}, error) {
				address, _ := args["address"].(string)
				data, _ := args["data"].(string)
				return client.WriteMemory(address, data)
			},
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "auto_assemble",
				Description: "Assemble and inject a code patch into the target",
				Category:    catalog.CategoryMemoryWrite,
				Parameters: []catalog.Parameter{
					{Name: "script", Type: "string", Description: "Assembly script to apply", Required: true},
				},
				Destructive:      true,
				RequiresApproval: true,
			},
			fn: passthrough("auto_assemble"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "scan_all",
				Description: "Scan all scannable regions for a value",
				Category:    catalog.CategoryPatternScan,
				Parameters: []catalog.Parameter{
					{Name: "value", Type: "string", Description: "Value to scan for", Required: true},
					{Name: "scan_type", Type: "string", Description: "Value interpretation (int, float, string)"},
				},
			},
			fn: func(args map[string]interface{}) (interface{}, error) {
				value, _ := args["value"].(string)
				scanType, _ := args["scan_type"].(string)
				return client.ScanMemory(value, scanType)
			},
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "aob_scan",
				Description: "Scan for an array-of-bytes pattern",
				Category:    catalog.CategoryPatternScan,
				Parameters: []catalog.Parameter{
					{Name: "pattern", Type: "string", Description: "Byte pattern with wildcards", Required: true},
				},
			},
			fn: passthrough("aob_scan"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "search_string",
				Description: "Search memory for a string",
				Category:    catalog.CategoryPatternScan,
				Parameters: []catalog.Parameter{
					{Name: "text", Type: "string", Description: "String to search for", Required: true},
				},
			},
			fn: passthrough("search_string"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "generate_signature",
				Description: "Generate a unique byte signature for an address",
				Category:    catalog.CategoryPatternScan,
				Parameters: []catalog.Parameter{
					addressParam,
					{Name: "size", Type: "integer", Description: "Signature length in bytes", Default: 32},
				},
			},
			fn: passthrough("generate_signature"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "disassemble",
				Description: "Disassemble instructions at an address",
				Category:    catalog.CategoryDisassemble,
				Parameters: []catalog.Parameter{
					addressParam,
					{Name: "count", Type: "integer", Description: "Number of instructions", Default: 16},
				},
			},
			fn: passthrough("disassemble"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "get_instruction_info",
				Description: "Decode a single instruction",
				Category:    catalog.CategoryDisassemble,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("get_instruction_info"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "find_function_boundaries",
				Description: "Find the start and end of the function containing an address",
				Category:    catalog.CategoryDisassemble,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("find_function_boundaries"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "analyze_function",
				Description: "Analyze a function's behavior and calling convention",
				Category:    catalog.CategoryDisassemble,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("analyze_function"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "find_references",
				Description: "Find data references to an address",
				Category:    catalog.CategoryDisassemble,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("find_references"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "find_call_references",
				Description: "Find call sites targeting an address",
				Category:    catalog.CategoryDisassemble,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("find_call_references"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "set_breakpoint",
				Description: "Set a breakpoint at an address",
				Category:    catalog.CategoryBreakpointDebug,
				Parameters: []catalog.Parameter{
					addressParam,
					{Name: "condition", Type: "string", Description: "Optional break condition"},
				},
			},
			fn: passthrough("set_breakpoint"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "get_breakpoint_hits",
				Description: "Collect recorded breakpoint hits",
				Category:    catalog.CategoryBreakpointDebug,
			},
			fn: passthrough("get_breakpoint_hits"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "remove_breakpoint",
				Description: "Remove a breakpoint",
				Category:    catalog.CategoryBreakpointDebug,
				Parameters:  []catalog.Parameter{addressParam},
			},
			fn: passthrough("remove_breakpoint"),
		},
		{
			metadata: catalog.ToolMetadata{
				Name:        "list_breakpoints",
				Description: "List installed breakpoints",
				Category:    catalog.CategoryBreakpointDebug,
			},
			fn: passthrough("list_breakpoints"),
		},
	}

	for _, t := range tools {
		if err := registry.Register(t.metadata, t.fn); err != nil {
			return fmt.Errorf("error registering built-in tools: %w", err)
		}
	}
	return nil
}
