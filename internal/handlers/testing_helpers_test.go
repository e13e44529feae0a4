// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/homeseer-mcp/hs-mcp/internal/homeseer"
	"github.com/homeseer-mcp/hs-mcp/internal/mcp"
)

// mockClient is a configurable mock for handler tests. It implements the
// homeseer.Client interface with function hooks; a nil hook returns a
// sensible default (empty slice or zero value).
type mockClient struct {
	ListDevicesFn     func(ctx context.Context) ([]homeseer.Device, error)
	GetDeviceFn       func(ctx context.Context, ref int) (*homeseer.Device, error)
	SetDeviceStatusFn func(ctx context.Context, ref, value int) error
	ControlByLabelFn  func(ctx context.Context, ref int, label string) error
	GetControlsFn     func(ctx context.Context, ref int) ([]homeseer.ControlPair, error)
	GetEventsFn       func(ctx context.Context) (*homeseer.EventsResponse, error)
	RunEventFn        func(ctx context.Context, group, name string, eventID *int) error
}

func (m *mockClient) ListDevices(ctx context.Context) ([]homeseer.Device, error) {
	if m.ListDevicesFn != nil {
		return m.ListDevicesFn(ctx)
	}
	return []homeseer.Device{}, nil
}

func (m *mockClient) GetDevice(ctx context.Context, ref int) (*homeseer.Device, error) {
	if m.GetDeviceFn != nil {
		return m.GetDeviceFn(ctx, ref)
	}
	return &homeseer.Device{Ref: ref}, nil
}

func (m *mockClient) SetDeviceStatus(ctx context.Context, ref, value int) error {
	if m.SetDeviceStatusFn != nil {
		return m.SetDeviceStatusFn(ctx, ref, value)
	}
	return nil
}

func (m *mockClient) ControlByLabel(ctx context.Context, ref int, label string) error {
	if m.ControlByLabelFn != nil {
		return m.ControlByLabelFn(ctx, ref, label)
	}
	return nil
}

func (m *mockClient) GetControls(ctx context.Context, ref int) ([]homeseer.ControlPair, error) {
	if m.GetControlsFn != nil {
		return m.GetControlsFn(ctx, ref)
	}
	return []homeseer.ControlPair{}, nil
}

func (m *mockClient) GetEvents(ctx context.Context) (*homeseer.EventsResponse, error) {
	if m.GetEventsFn != nil {
		return m.GetEventsFn(ctx)
	}
	return &homeseer.EventsResponse{Events: []homeseer.Event{}}, nil
}

func (m *mockClient) RunEvent(ctx context.Context, group, name string, eventID *int) error {
	if m.RunEventFn != nil {
		return m.RunEventFn(ctx, group, name, eventID)
	}
	if eventID == nil && (group == "" || name == "") {
		return homeseer.ErrInvalidEventArgs
	}
	return nil
}

// resultText concatenates the text content blocks of a tool result.
func resultText(t *testing.T, result *mcp.ToolsCallResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("tool result is nil")
	}
	var sb strings.Builder
	for _, block := range result.Content {
		sb.WriteString(block.Text)
	}
	return sb.String()
}

// checkContains asserts that text contains all wanted substrings and none
// of the unwanted ones.
func checkContains(t *testing.T, text string, want, notWant []string) {
	t.Helper()
	for _, s := range want {
		if !strings.Contains(text, s) {
			t.Errorf("result does not contain %q:\n%s", s, text)
		}
	}
	for _, s := range notWant {
		if strings.Contains(text, s) {
			t.Errorf("result unexpectedly contains %q:\n%s", s, text)
		}
	}
}
