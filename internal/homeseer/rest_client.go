// Package homeseer provides a client for the HomeSeer JSON HTTP API.
//
// The hub exposes a single endpoint; every operation is a GET with a
// "request" query parameter selecting the hub-side behavior. Parameter
// names (ref, value, label, id, group, name, source, user, pass, token)
// are dictated by the hub and must not be renamed.
package homeseer

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/homeseer-mcp/hs-mcp/internal/config"
	"github.com/homeseer-mcp/hs-mcp/internal/logging"
)

// maxLoggedBody limits response bodies in TRACE output.
const maxLoggedBody = 200

// RESTClient implements Client against the HomeSeer JSON endpoint.
type RESTClient struct {
	cfg        config.Config
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewRESTClient creates a client from a resolved configuration record.
func NewRESTClient(cfg config.Config, logger *logging.Logger) *RESTClient {
	if logger == nil {
		logger = logging.New(logging.LevelInfo)
	}

	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // verify_ssl=false is an explicit operator choice
		}
	}

	logger.Info("HomeSeer API client initialized", "url", cfg.URL)

	return &RESTClient{
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout:   cfg.TimeoutDuration(),
			Transport: transport,
		},
		logger: logger,
	}
}

// getJSON issues one GET with the shared request shaping (source tag, auth
// parameters, operation parameters) and decodes the JSON response into out.
// Non-2xx statuses return *APIError; transport failures are wrapped.
func (c *RESTClient) getJSON(ctx context.Context, params url.Values, out any) error {
	query := c.cfg.RequestParams(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.URL.RawQuery = query.Encode()

	c.logger.Debug("HomeSeer request", "request", params.Get("request"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := string(body)
		if msg == "" {
			msg = "no response body"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if c.logger.IsTraceEnabled() {
		logged := string(body)
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody] + "..."
		}
		c.logger.Trace("HomeSeer response", "status", resp.StatusCode, "body", logged)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ListDevices returns all devices known to the hub.
func (c *RESTClient) ListDevices(ctx context.Context) ([]Device, error) {
	params := url.Values{}
	params.Set("request", "getstatus")

	var res statusResponse
	if err := c.getJSON(ctx, params, &res); err != nil {
		return nil, err
	}
	if res.Devices == nil {
		return []Device{}, nil
	}
	return res.Devices, nil
}

// GetDevice returns the first device the hub reports for the given ref.
func (c *RESTClient) GetDevice(ctx context.Context, ref int) (*Device, error) {
	params := url.Values{}
	params.Set("request", "getstatus")
	params.Set("ref", strconv.Itoa(ref))

	var res statusResponse
	if err := c.getJSON(ctx, params, &res); err != nil {
		return nil, err
	}
	if len(res.Devices) == 0 {
		return nil, fmt.Errorf("device ref %d: %w", ref, ErrDeviceNotFound)
	}
	return &res.Devices[0], nil
}

// SetDeviceStatus sets a device's numeric value.
func (c *RESTClient) SetDeviceStatus(ctx context.Context, ref, value int) error {
	params := url.Values{}
	params.Set("request", "setdevicestatus")
	params.Set("ref", strconv.Itoa(ref))
	params.Set("value", strconv.Itoa(value))

	if err := c.getJSON(ctx, params, nil); err != nil {
		return err
	}
	c.logger.Info("Set device status", "ref", ref, "value", value)
	return nil
}

// ControlByLabel controls a device by a control label.
func (c *RESTClient) ControlByLabel(ctx context.Context, ref int, label string) error {
	params := url.Values{}
	params.Set("request", "controldevicebylabel")
	params.Set("ref", strconv.Itoa(ref))
	params.Set("label", label)

	if err := c.getJSON(ctx, params, nil); err != nil {
		return err
	}
	c.logger.Info("Controlled device by label", "ref", ref, "label", label)
	return nil
}

// GetControls returns the control pairs for a device.
func (c *RESTClient) GetControls(ctx context.Context, ref int) ([]ControlPair, error) {
	params := url.Values{}
	params.Set("request", "getcontrol")
	params.Set("ref", strconv.Itoa(ref))

	var res controlResponse
	if err := c.getJSON(ctx, params, &res); err != nil {
		return nil, err
	}
	if res.ControlPairs == nil {
		return []ControlPair{}, nil
	}
	return res.ControlPairs, nil
}

// GetEvents returns the full event envelope from the hub.
func (c *RESTClient) GetEvents(ctx context.Context) (*EventsResponse, error) {
	params := url.Values{}
	params.Set("request", "getevents")

	var res EventsResponse
	if err := c.getJSON(ctx, params, &res); err != nil {
		return nil, err
	}
	if res.Events == nil {
		res.Events = []Event{}
	}
	c.logger.Debug("Retrieved events", "count", len(res.Events))
	return &res, nil
}

// RunEvent executes an event by id or by group+name. The id mode wins when
// both are supplied; an incomplete group+name pair without an id is
// rejected before any request is issued.
func (c *RESTClient) RunEvent(ctx context.Context, group, name string, eventID *int) error {
	params := url.Values{}
	params.Set("request", "runevent")

	switch {
	case eventID != nil:
		params.Set("id", strconv.Itoa(*eventID))
	case group != "" && name != "":
		params.Set("group", group)
		params.Set("name", name)
	default:
		return ErrInvalidEventArgs
	}

	if err := c.getJSON(ctx, params, nil); err != nil {
		return err
	}
	if eventID != nil {
		c.logger.Info("Executed event", "id", *eventID)
	} else {
		c.logger.Info("Executed event", "group", group, "name", name)
	}
	return nil
}
