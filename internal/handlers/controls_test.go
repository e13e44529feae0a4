// Package handlers provides MCP tool handlers for HomeSeer operations.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/homeseer-mcp/hs-mcp/internal/homeseer"
)

func TestHandleControlDevice(t *testing.T) {
	var gotRef, gotValue int
	client := &mockClient{
		SetDeviceStatusFn: func(_ context.Context, ref, value int) error {
			gotRef, gotValue = ref, value
			return nil
		},
	}

	h := NewControlHandlers()
	result, err := h.handleControlDevice(context.Background(), client, map[string]any{
		"device_id":  float64(123),
		"control_id": float64(255),
	})
	if err != nil {
		t.Fatalf("handleControlDevice() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleControlDevice() returned error result: %s", resultText(t, result))
	}
	if gotRef != 123 || gotValue != 255 {
		t.Errorf("SetDeviceStatus called with (%d, %d), want (123, 255)", gotRef, gotValue)
	}
}

func TestHandleControlDeviceBadArgs(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing both", map[string]any{}},
		{"missing control_id", map[string]any{"device_id": float64(1)}},
		{"missing device_id", map[string]any{"control_id": float64(1)}},
		{"string device_id", map[string]any{"device_id": "1", "control_id": float64(1)}},
	}

	h := NewControlHandlers()
	client := &mockClient{
		SetDeviceStatusFn: func(_ context.Context, _, _ int) error {
			t.Fatal("SetDeviceStatus called despite invalid arguments")
			return nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.handleControlDevice(context.Background(), client, tt.args)
			if err != nil {
				t.Fatalf("handleControlDevice() error = %v", err)
			}
			if !result.IsError {
				t.Error("handleControlDevice() IsError = false, want true for bad args")
			}
		})
	}
}

func TestHandleControlDeviceByLabel(t *testing.T) {
	labels := []string{"On", "Off", "Close", "Open", "Dim 50%"}

	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			var gotRef int
			var gotLabel string
			client := &mockClient{
				ControlByLabelFn: func(_ context.Context, ref int, l string) error {
					gotRef, gotLabel = ref, l
					return nil
				},
			}

			h := NewControlHandlers()
			result, err := h.handleControlDeviceByLabel(context.Background(), client, map[string]any{
				"device_ref": float64(100),
				"label":      label,
			})
			if err != nil {
				t.Fatalf("handleControlDeviceByLabel() error = %v", err)
			}
			if result.IsError {
				t.Fatalf("handleControlDeviceByLabel() returned error result: %s", resultText(t, result))
			}
			if gotRef != 100 {
				t.Errorf("ref = %d, want 100", gotRef)
			}
			// The label must reach the client verbatim.
			if gotLabel != label {
				t.Errorf("label = %q, want %q", gotLabel, label)
			}
		})
	}
}

func TestHandleControlDeviceByLabelClientError(t *testing.T) {
	client := &mockClient{
		ControlByLabelFn: func(_ context.Context, _ int, _ string) error {
			return fmt.Errorf("hub rejected label")
		},
	}

	h := NewControlHandlers()
	result, err := h.handleControlDeviceByLabel(context.Background(), client, map[string]any{
		"device_ref": float64(100),
		"label":      "Sideways",
	})
	if err != nil {
		t.Fatalf("handleControlDeviceByLabel() error = %v", err)
	}
	if !result.IsError {
		t.Error("handleControlDeviceByLabel() IsError = false, want true on client failure")
	}
	checkContains(t, resultText(t, result), []string{"hub rejected label"}, nil)
}

func TestHandleGetControl(t *testing.T) {
	client := &mockClient{
		GetControlsFn: func(_ context.Context, ref int) ([]homeseer.ControlPair, error) {
			return []homeseer.ControlPair{
				{Label: "On", ControlValue: 255},
				{Label: "Off", ControlValue: 0},
				{Label: "Dim 50%", ControlValue: 50},
			}, nil
		},
	}

	h := NewControlHandlers()
	result, err := h.handleGetControl(context.Background(), client, map[string]any{"device_ref": float64(100)})
	if err != nil {
		t.Fatalf("handleGetControl() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleGetControl() returned error result: %s", resultText(t, result))
	}

	var got []controlOption
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	want := []controlOption{
		{Label: "On", Value: 255},
		{Label: "Off", Value: 0},
		{Label: "Dim 50%", Value: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("control options mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleGetControlEmpty(t *testing.T) {
	h := NewControlHandlers()
	result, err := h.handleGetControl(context.Background(), &mockClient{}, map[string]any{"device_ref": float64(100)})
	if err != nil {
		t.Fatalf("handleGetControl() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleGetControl() returned error result: %s", resultText(t, result))
	}

	var got []controlOption
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d control options, want 0", len(got))
	}
}
