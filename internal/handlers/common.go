// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/homeseer-mcp/hs-mcp/internal/mcp"
)

// intArg extracts an integer argument. JSON-RPC numbers arrive as float64;
// integral floats, ints and json.Number are accepted, everything else is
// rejected. Device refs are canonically integers.
func intArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// stringArg extracts a string argument. Returns false when absent or not a string.
func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// boolArg extracts a boolean argument, defaulting to false when absent.
func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// errorResult builds a tool-level error result. Tool failures are reported
// through IsError, not as JSON-RPC protocol errors, so the calling agent
// can read the message.
func errorResult(format string, a ...any) *mcp.ToolsCallResult {
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{
			mcp.NewTextContent(fmt.Sprintf(format, a...)),
		},
		IsError: true,
	}
}

// jsonResult marshals v as indented JSON into a text content block.
func jsonResult(v any) (*mcp.ToolsCallResult, error) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error formatting response: %v", err), nil
	}
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{
			mcp.NewTextContent(string(output)),
		},
	}, nil
}

// textResult builds a plain text success result.
func textResult(format string, a ...any) *mcp.ToolsCallResult {
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{
			mcp.NewTextContent(fmt.Sprintf(format, a...)),
		},
	}
}
