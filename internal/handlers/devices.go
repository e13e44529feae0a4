// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/homeseer-mcp/hs-mcp/internal/homeseer"
	"github.com/homeseer-mcp/hs-mcp/internal/mcp"
)

// DeviceHandlers provides MCP tool handlers for device listing and lookup.
type DeviceHandlers struct{}

// NewDeviceHandlers creates a new DeviceHandlers instance.
func NewDeviceHandlers() *DeviceHandlers {
	return &DeviceHandlers{}
}

// RegisterTools registers all device-related tools with the registry.
func (h *DeviceHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.listAllDevicesTool(), h.handleListAllDevices)
	registry.RegisterTool(h.getDeviceInfoTool(), h.handleGetDeviceInfo)
}

// deviceSummary is the compact projection returned by list_all_devices.
type deviceSummary struct {
	Ref  int    `json:"ref"`
	Name string `json:"name"`
}

// deviceRoomSummary is the projection with room information included.
type deviceRoomSummary struct {
	Ref       int    `json:"ref"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Location2 string `json:"location2"`
}

// deviceDetail is the projection returned by get_device_info.
// Fields the hub did not supply surface as zero values.
type deviceDetail struct {
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	Location2         string  `json:"location2"`
	Value             float64 `json:"value"`
	Status            string  `json:"status"`
	AssociatedDevices []int   `json:"associated_devices"`
}

func (h *DeviceHandlers) listAllDevicesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_all_devices",
		Description: "List HomeSeer devices with optional name filtering and room information. Returns ref and name per device; use the ref with the control and info tools.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Filter and output options for the device list",
			Properties: map[string]mcp.JSONSchema{
				"free_text_search": {
					Type:        "string",
					Description: "Filter by device name (case-insensitive substring match)",
				},
				"need_room_information": {
					Type:        "boolean",
					Description: "If true, include location and location2 (room/floor) fields. Default: false",
				},
			},
		},
	}
}

// handleListAllDevices handles list_all_devices calls. Filtering happens
// client-side after the fetch; the hub has no server-side filter parameter.
func (h *DeviceHandlers) handleListAllDevices(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	devices, err := client.ListDevices(ctx)
	if err != nil {
		return errorResult("Error listing devices: %v", err), nil
	}

	if search, ok := stringArg(args, "free_text_search"); ok && search != "" {
		needle := strings.ToLower(search)
		filtered := make([]homeseer.Device, 0, len(devices))
		for _, d := range devices {
			if strings.Contains(strings.ToLower(d.Name), needle) {
				filtered = append(filtered, d)
			}
		}
		devices = filtered
	}

	if boolArg(args, "need_room_information") {
		result := make([]deviceRoomSummary, 0, len(devices))
		for _, d := range devices {
			result = append(result, deviceRoomSummary{
				Ref:       d.Ref,
				Name:      d.Name,
				Location:  d.Location,
				Location2: d.Location2,
			})
		}
		return jsonResult(result)
	}

	result := make([]deviceSummary, 0, len(devices))
	for _, d := range devices {
		result = append(result, deviceSummary{Ref: d.Ref, Name: d.Name})
	}
	return jsonResult(result)
}

func (h *DeviceHandlers) getDeviceInfoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_device_info",
		Description: "Get detailed information about a specific device: name, location, current value, status label, and associated device refs.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Parameters for the device lookup",
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

// handleGetDeviceInfo handles get_device_info calls.
func (h *DeviceHandlers) handleGetDeviceInfo(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	ref, ok := intArg(args, "device_ref")
	if !ok {
		return errorResult("device_ref is required and must be an integer"), nil
	}

	device, err := client.GetDevice(ctx, ref)
	if err != nil {
		if errors.Is(err, homeseer.ErrDeviceNotFound) {
			return errorResult("Device with ref %d not found", ref), nil
		}
		return errorResult("Error getting device %d: %v", ref, err), nil
	}

	return jsonResult(deviceDetail{
		Name:              device.Name,
		Location:          device.Location,
		Location2:         device.Location2,
		Value:             device.Value,
		Status:            device.Status,
		AssociatedDevices: device.AssociatedDevices,
	})
}
