// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import (
	"context"

	"github.com/homeseer-mcp/hs-mcp/internal/homeseer"
	"github.com/homeseer-mcp/hs-mcp/internal/mcp"
)

// ControlHandlers provides MCP tool handlers for device control operations.
type ControlHandlers struct{}

// NewControlHandlers creates a new ControlHandlers instance.
func NewControlHandlers() *ControlHandlers {
	return &ControlHandlers{}
}

// RegisterTools registers all control-related tools with the registry.
func (h *ControlHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.controlDeviceTool(), h.handleControlDevice)
	registry.RegisterTool(h.controlDeviceByLabelTool(), h.handleControlDeviceByLabel)
	registry.RegisterTool(h.getControlTool(), h.handleGetControl)
}

// controlOption is the projection of a ControlPair returned to tool callers.
type controlOption struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

func (h *ControlHandlers) controlDeviceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "control_homeseer_device",
		Description: "Control a device using its numeric device ID and a control value ID. Use get_control to find the valid control IDs for a device.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Device and control value to set",
			Properties: map[string]mcp.JSONSchema{
				"device_id": {
					Type:        "integer",
					Description: "The device reference ID",
				},
				"control_id": {
					Type:        "integer",
					Description: "The control/value ID to set",
				},
			},
			Required: []string{"device_id", "control_id"},
		},
	}
}

// handleControlDevice handles control_homeseer_device calls. The value is
// not validated against the device's control pairs; the hub decides.
func (h *ControlHandlers) handleControlDevice(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	deviceID, ok := intArg(args, "device_id")
	if !ok {
		return errorResult("device_id is required and must be an integer"), nil
	}
	controlID, ok := intArg(args, "control_id")
	if !ok {
		return errorResult("control_id is required and must be an integer"), nil
	}

	if err := client.SetDeviceStatus(ctx, deviceID, controlID); err != nil {
		return errorResult("Error controlling device %d: %v", deviceID, err), nil
	}
	return textResult("Device %d set to value %d", deviceID, controlID), nil
}

func (h *ControlHandlers) controlDeviceByLabelTool() mcp.Tool {
	return mcp.Tool{
		Name:        "control_homeseer_device_by_label",
		Description: "Control a device using a human-readable control label like \"On\", \"Off\" or \"Close\". Use get_control to see the labels a device accepts.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Device and control label to apply",
			Properties: map[string]mcp.JSONSchema{
				"device_ref": {
					Type:        "integer",
					Description: "The device reference ID",
				},
				"label": {
					Type:        "string",
					Description: "The control label (e.g. \"On\", \"Off\", \"Dim 50%\")",
				},
			},
			Required: []string{"device_ref", "label"},
		},
	}
}

// handleControlDeviceByLabel handles control_homeseer_device_by_label calls.
// The label is passed through verbatim; case and validity are the hub's call.
func (h *ControlHandlers) handleControlDeviceByLabel(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	ref, ok := intArg(args, "device_ref")
	if !ok {
		return errorResult("device_ref is required and must be an integer"), nil
	}
	label, ok := stringArg(args, "label")
	if !ok || label == "" {
		return errorResult("label is required and must be a non-empty string"), nil
	}

	if err := client.ControlByLabel(ctx, ref, label); err != nil {
		return errorResult("Error controlling device %d with label %q: %v", ref, label, err), nil
	}
	return textResult("Device %d controlled with label %q", ref, label), nil
}

func (h *ControlHandlers) getControlTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_control",
		Description: "Get the available control options for a device (e.g. On/Off, dimmer levels) as label/value pairs.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Parameters for the control lookup",
			Properties: map[string]mcp.JSONSchema{
				"device_ref": {
					Type:        "integer",
					Description: "The device reference ID",
				},
			},
			Required: []string{"device_ref"},
		},
	}
}

// handleGetControl handles get_control calls.
func (h *ControlHandlers) handleGetControl(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	ref, ok := intArg(args, "device_ref")
	if !ok {
		return errorResult("device_ref is required and must be an integer"), nil
	}

	pairs, err := client.GetControls(ctx, ref)
	if err != nil {
		return errorResult("Error getting controls for device %d: %v", ref, err), nil
	}

	options := make([]controlOption, 0, len(pairs))
	for _, p := range pairs {
		options = append(options, controlOption{Label: p.Label, Value: p.ControlValue})
	}
	return jsonResult(options)
}
