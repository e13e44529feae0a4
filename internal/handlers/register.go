// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import "github.com/homeseer-mcp/hs-mcp/internal/mcp"

// RegisterDeviceTools registers all device-related tools with the registry.
func RegisterDeviceTools(registry *mcp.Registry) {
	h := NewDeviceHandlers()
	h.RegisterTools(registry)
}

// RegisterControlTools registers all control-related tools with the registry.
func RegisterControlTools(registry *mcp.Registry) {
	h := NewControlHandlers()
	h.RegisterTools(registry)
}

// RegisterEventTools registers all event-related tools with the registry.
func RegisterEventTools(registry *mcp.Registry) {
	h := NewEventHandlers()
	h.RegisterTools(registry)
}

// RegisterAllTools registers all available tool handlers with the registry.
func RegisterAllTools(registry *mcp.Registry) {
	RegisterDeviceTools(registry)
	RegisterControlTools(registry)
	RegisterEventTools(registry)
}
