// SPDX-License-Identifier: Apache-2.0

package planner

import "github.com/specter-re/specter/internal/core/models"

// cannedSubtasks returns the fixed subtask template for a task type.
// Ids start at 1 and dependencies only reference earlier ids.
func cannedSubtasks(taskType models.TaskType) []models.SubTask {
	switch taskType {
	case models.TaskTypeDataStructureAnalysis:
		return []models.SubTask{
			{
				ID:             1,
				Description:    "Gather target process information",
				Tools:          []string{"get_process_info"},
				ExpectedOutput: "Process id, name and architecture of the attached target",
			},
			{
				ID:             2,
				Description:    "Map the target's memory regions",
				Tools:          []string{"get_memory_regions"},
				ExpectedOutput: "Readable regions with base addresses and protections",
				Dependencies:   []int{1},
			},
			{
				ID:             3,
				Description:    "Locate candidate structure instances",
				Tools:          []string{"scan_all", "generate_signature"},
				ExpectedOutput: "Addresses of candidate structures and a reusable signature",
				Dependencies:   []int{2},
			},
			{
				ID:             4,
				Description:    "Analyze code that accesses the structure",
				Tools:          []string{"disassemble", "analyze_function"},
				ExpectedOutput: "Field offsets and access patterns inferred from code",
				Dependencies:   []int{3},
			},
		}

	case models.TaskTypeFunctionAnalysis:
		return []models.SubTask{
			{
				ID:             1,
				Description:    "Locate the target function",
				Tools:          []string{"enum_modules", "get_symbol_address"},
				ExpectedOutput: "Module base and resolved function address",
			},
			{
				ID:             2,
				Description:    "Disassemble the function entry",
				Tools:          []string{"disassemble", "get_instruction_info"},
				ExpectedOutput: "Instruction listing from the function entry point",
				Dependencies:   []int{1},
			},
			{
				ID:             3,
				Description:    "Determine function extent and references",
				Tools:          []string{"find_function_boundaries", "find_references"},
				ExpectedOutput: "Function start/end and inbound data references",
				Dependencies:   []int{2},
			},
			{
				ID:             4,
				Description:    "Characterize behavior and callers",
				Tools:          []string{"analyze_function", "find_call_references"},
				ExpectedOutput: "Call graph edges and a behavioral summary",
				Dependencies:   []int{3},
			},
		}

	case models.TaskTypePatternSearch:
		return []models.SubTask{
			{
				ID:             1,
				Description:    "Gather target process information",
				Tools:          []string{"get_process_info"},
				ExpectedOutput: "Process id, name and architecture of the attached target",
			},
			{
				ID:             2,
				Description:    "Map scannable memory regions",
				Tools:          []string{"get_memory_regions"},
				ExpectedOutput: "Regions eligible for scanning",
				Dependencies:   []int{1},
			},
			{
				ID:             3,
				Description:    "Run a first-pass value scan",
				Tools:          []string{"scan_all"},
				ExpectedOutput: "Initial scan hit list",
				Dependencies:   []int{2},
			},
			{
				ID:             4,
				Description:    "Search for byte and string patterns",
				Tools:          []string{"aob_scan", "search_string"},
				ExpectedOutput: "Pattern and string match addresses",
				Dependencies:   []int{3},
			},
			{
				ID:             5,
				Description:    "Generate a stable signature for the best match",
				Tools:          []string{"generate_signature"},
				ExpectedOutput: "Unique byte signature usable across runs",
				Dependencies:   []int{4},
			},
		}

	case models.TaskTypeBreakpointDebugging:
		return []models.SubTask{
			{
				ID:             1,
				Description:    "Gather target process information",
				Tools:          []string{"get_process_info"},
				ExpectedOutput: "Process id, name and architecture of the attached target",
			},
			{
				ID:             2,
				Description:    "Resolve and inspect the breakpoint site",
				Tools:          []string{"get_symbol_address", "disassemble"},
				ExpectedOutput: "Target address and surrounding instructions",
				Dependencies:   []int{1},
			},
			{
				ID:             3,
				Description:    "Install the breakpoint",
				Tools:          []string{"set_breakpoint"},
				ExpectedOutput: "Armed breakpoint at the target address",
				Dependencies:   []int{2},
			},
			{
				ID:             4,
				Description:    "Collect hits and capture state",
				Tools:          []string{"get_breakpoint_hits", "read_memory"},
				ExpectedOutput: "Hit records with register and memory snapshots",
				Dependencies:   []int{3},
			},
			{
				ID:             5,
				Description:    "Analyze the code path that triggered the hits",
				Tools:          []string{"analyze_function", "disassemble"},
				ExpectedOutput: "Explanation of the triggering code path",
				Dependencies:   []int{4},
			},
		}

	default: // comprehensive analysis is also the fallback for unknown types
		return []models.SubTask{
			{
				ID:             1,
				Description:    "Discover the target process and its modules",
				Tools:          []string{"get_process_info", "enum_modules"},
				ExpectedOutput: "Process details and loaded module list",
			},
			{
				ID:             2,
				Description:    "Map the target's memory layout",
				Tools:          []string{"get_memory_regions"},
				ExpectedOutput: "Memory region map with protections",
				Dependencies:   []int{1},
			},
			{
				ID:             3,
				Description:    "Scan for values and byte patterns of interest",
				Tools:          []string{"scan_all", "aob_scan"},
				ExpectedOutput: "Addresses matching the requested values and patterns",
				Dependencies:   []int{2},
			},
			{
				ID:             4,
				Description:    "Analyze code and data around the matches",
				Tools:          []string{"disassemble", "analyze_function", "read_memory"},
				ExpectedOutput: "Disassembly, function summaries and raw data",
				Dependencies:   []int{3},
			},
			{
				ID:             5,
				Description:    "Synthesize signatures and cross-references",
				Tools:          []string{"generate_signature", "find_references"},
				ExpectedOutput: "Signatures and reference map for the findings",
				Dependencies:   []int{4},
			},
		}
	}
}

// taskDescription returns a one-line description per task type
func taskDescription(taskType models.TaskType) string {
	switch taskType {
	case models.TaskTypeDataStructureAnalysis:
		return "Locate and analyze a data structure in the target process"
	case models.TaskTypeFunctionAnalysis:
		return "Locate and analyze a function in the target process"
	case models.TaskTypePatternSearch:
		return "Search the target process for values and patterns"
	case models.TaskTypeBreakpointDebugging:
		return "Debug the target process with breakpoints"
	default:
		return "Comprehensive analysis of the target process"
	}
}
