// Package homeseer provides a client for the HomeSeer JSON HTTP API.
package homeseer

import "encoding/json"

// Device represents one controllable device on the hub.
// Fields absent from the hub response decode to zero values.
type Device struct {
	Ref               int     `json:"ref"`
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	Location2         string  `json:"location2"`
	Value             float64 `json:"value"`
	Status            string  `json:"status"`
	AssociatedDevices []int   `json:"associated_devices"`
}

// ControlPair is one selectable state for a device's status-set operation:
// a human-readable label mapped to the numeric code the hub accepts.
type ControlPair struct {
	Label        string `json:"Label"`
	ControlValue int    `json:"ControlValue"`
}

// Event is a hub-side stored automation action, addressable either by
// numeric id or by the (Group, Name) pair. The hub attaches further
// metadata per event (voice command flags, trigger timestamps); those
// fields are retained in Raw and re-emitted unmodified.
type Event struct {
	Group string
	Name  string
	ID    int

	// Raw is the event object exactly as received from the hub.
	Raw json.RawMessage
}

// eventFields is the addressed subset of an event object.
type eventFields struct {
	Group string `json:"Group"`
	Name  string `json:"Name"`
	ID    int    `json:"id"`
}

// UnmarshalJSON decodes the addressed fields and keeps the original object.
func (e *Event) UnmarshalJSON(data []byte) error {
	var f eventFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	e.Group = f.Group
	e.Name = f.Name
	e.ID = f.ID
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the hub's original object so metadata fields pass
// through. Events constructed in code without Raw fall back to the
// addressed fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Raw != nil {
		return e.Raw, nil
	}
	return json.Marshal(eventFields{Group: e.Group, Name: e.Name, ID: e.ID})
}

// EventsResponse is the envelope returned by the getevents operation.
type EventsResponse struct {
	Name    string  `json:"Name"`
	Version string  `json:"Version"`
	Events  []Event `json:"Events"`
}

// statusResponse is the envelope returned by the getstatus operation.
type statusResponse struct {
	Name    string   `json:"Name"`
	Version string   `json:"Version"`
	Devices []Device `json:"Devices"`
}

// controlResponse is the envelope returned by the getcontrol operation.
type controlResponse struct {
	ControlPairs []ControlPair `json:"ControlPairs"`
}
