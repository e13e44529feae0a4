// Package homeseer provides a client for the HomeSeer JSON HTTP API.
package homeseer

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for failures callers need to distinguish from transport
// and HTTP errors. Use errors.Is.
var (
	// ErrDeviceNotFound is returned when the hub reports no device for a ref.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrInvalidEventArgs is returned by RunEvent before any network call
	// when neither an event id nor a complete group+name pair is supplied.
	ErrInvalidEventArgs = errors.New("either an event id or both group and name are required")
)

// Client defines the interface for HomeSeer hub operations.
// Every operation performs exactly one HTTP GET; there is no retry,
// no caching, and no shared state beyond the configuration record.
type Client interface {
	// ListDevices returns all devices known to the hub.
	ListDevices(ctx context.Context) ([]Device, error)

	// GetDevice returns the device with the given ref, or an error
	// wrapping ErrDeviceNotFound if the hub returns none.
	GetDevice(ctx context.Context, ref int) (*Device, error)

	// SetDeviceStatus sets a device's numeric value. The value is not
	// validated against the device's control pairs.
	SetDeviceStatus(ctx context.Context, ref, value int) error

	// ControlByLabel controls a device by a control label, passed through
	// verbatim; label validity is delegated to the hub.
	ControlByLabel(ctx context.Context, ref int, label string) error

	// GetControls returns the control pairs for a device.
	GetControls(ctx context.Context, ref int) ([]ControlPair, error)

	// GetEvents returns the full event envelope from the hub.
	GetEvents(ctx context.Context) (*EventsResponse, error)

	// RunEvent executes an event by id (when eventID is non-nil) or by the
	// group+name pair. Group-only or name-only is rejected with
	// ErrInvalidEventArgs before any request is issued.
	RunEvent(ctx context.Context, group, name string, eventID *int) error
}

// APIError represents a non-2xx response from the HomeSeer API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HomeSeer API error (status %d): %s", e.StatusCode, e.Message)
}
