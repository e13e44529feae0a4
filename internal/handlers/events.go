// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/homeseer-mcp/hs-mcp/internal/homeseer"
	"github.com/homeseer-mcp/hs-mcp/internal/mcp"
)

// EventHandlers provides MCP tool handlers for automation event operations.
type EventHandlers struct{}

// NewEventHandlers creates a new EventHandlers instance.
func NewEventHandlers() *EventHandlers {
	return &EventHandlers{}
}

// RegisterTools registers all event-related tools with the registry.
func (h *EventHandlers) RegisterTools(registry *mcp.Registry) {
	registry.RegisterTool(h.getEventsTool(), h.handleGetEvents)
	registry.RegisterTool(h.runEventTool(), h.handleRunEvent)
}

func (h *EventHandlers) getEventsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_events",
		Description: "List HomeSeer automation events with optional filtering. Events are stored actions like controlling lights or thermostats; each has a Group and Name usable with run_event.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Filter options for the event list",
			Properties: map[string]mcp.JSONSchema{
				"free_text_search": {
					Type:        "string",
					Description: "Filter by event name or group (case-insensitive substring, matching either field)",
				},
			},
		},
	}
}

// handleGetEvents handles get_events calls. The filter matches Name or
// Group; a hit on either field keeps the event.
func (h *EventHandlers) handleGetEvents(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	res, err := client.GetEvents(ctx)
	if err != nil {
		return errorResult("Error listing events: %v", err), nil
	}

	events := res.Events
	if search, ok := stringArg(args, "free_text_search"); ok && search != "" {
		needle := strings.ToLower(search)
		filtered := make([]homeseer.Event, 0, len(events))
		for _, e := range events {
			if strings.Contains(strings.ToLower(e.Name), needle) ||
				strings.Contains(strings.ToLower(e.Group), needle) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	return jsonResult(events)
}

func (h *EventHandlers) runEventTool() mcp.Tool {
	return mcp.Tool{
		Name:        "run_event",
		Description: "Execute a HomeSeer automation event by event_id OR by both group and name. Use get_events to discover events. Group and name are not case-sensitive on the hub.",
		InputSchema: mcp.JSONSchema{
			Type:        "object",
			Description: "Event identification: event_id alone, or group together with name",
			Properties: map[string]mcp.JSONSchema{
				"event_id": {
					Type:        "integer",
					Description: "The event ID (alternative to group+name)",
				},
				"group": {
					Type:        "string",
					Description: "The event group name (required together with name)",
				},
				"name": {
					Type:        "string",
					Description: "The event name (required together with group)",
				},
			},
		},
	}
}

// handleRunEvent handles run_event calls. Argument validation lives in the
// client so it happens before any network call; the invalid-arguments
// error is translated here into a tool-level failure.
func (h *EventHandlers) handleRunEvent(
	ctx context.Context,
	client homeseer.Client,
	args map[string]any,
) (*mcp.ToolsCallResult, error) {
	var eventID *int
	if id, ok := intArg(args, "event_id"); ok {
		eventID = &id
	}
	group, _ := stringArg(args, "group")
	name, _ := stringArg(args, "name")

	if err := client.RunEvent(ctx, group, name, eventID); err != nil {
		if errors.Is(err, homeseer.ErrInvalidEventArgs) {
			return errorResult("Invalid arguments: provide event_id, or both group and name"), nil
		}
		return errorResult("Error running event: %v", err), nil
	}

	if eventID != nil {
		return textResult("Executed event %d", *eventID), nil
	}
	return textResult("Executed event %q in group %q", name, group), nil
}
