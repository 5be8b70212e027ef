package kicad

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is where the KiCad-side SDK plugin listens.
	DefaultBaseURL = "http://localhost:9234"
	// DefaultTimeout bounds each backend request.
	DefaultTimeout = 30 * time.Second
)

// Action names understood by the backend. These are the "action" values of
// the AGENT_ACTION envelope.
const (
	ActionPlaceNetLabels        = "place_netlabels"
	ActionDrawWires             = "draw_wires"
	ActionPlaceSymbol           = "place_symbol"
	ActionMoveSymbol            = "move_symbol"
	ActionRotateSymbol          = "rotate_symbol"
	ActionModifySymbolValue     = "modify_symbol_value"
	ActionModifySymbolReference = "modify_symbol_reference"
	ActionPlaceLabel            = "place_label"
	ActionPlaceTrack            = "place_track"
	ActionPlaceVia              = "place_via"
	ActionListFootprints        = "list_footprints"
	ActionMoveFootprint         = "move_footprint"
	ActionRotateFootprint       = "rotate_footprint"
	ActionSwitchFrame           = "switch_frame"
)

// endpointOverrides maps actions whose route predates the naming
// convention. The plugin serves place_netlabels at placeNetLabels.
var endpointOverrides = map[string]string{
	ActionPlaceNetLabels: "placeNetLabels",
}

// EndpointFor derives the URL path the backend serves an action at: the
// lower camelCase form of the snake_case action name, unless the plugin
// routes it elsewhere.
func EndpointFor(action string) string {
	if ep, ok := endpointOverrides[action]; ok {
		return ep
	}
	parts := strings.Split(action, "_")
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i > 0 {
			part = strings.ToUpper(part[:1]) + part[1:]
		}
		out = append(out, part)
	}
	return strings.Join(out, "")
}

// Client talks to the KiCad agent backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. Empty baseURL and non-positive
// timeout fall back to the defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend base URL the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the AGENT_ACTION request body.
type envelope struct {
	Action  string `json:"action"`
	Context any    `json:"context"`
}

// GetNetlist fetches the current schematic as a KiCad XML netlist export.
// The backend replies with {"net_list": "<base64>"}; the decoded UTF-8 XML
// is returned.
func (c *Client) GetNetlist(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/netlist", nil)
	if err != nil {
		return "", fmt.Errorf("building netlist request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("netlist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("netlist: backend returned status %d", resp.StatusCode)
	}

	var reply struct {
		NetList string `json:"net_list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decoding netlist reply: %w", err)
	}
	if reply.NetList == "" {
		return "", fmt.Errorf("netlist reply is missing the net_list field")
	}

	raw, err := base64.StdEncoding.DecodeString(reply.NetList)
	if err != nil {
		return "", fmt.Errorf("net_list is not valid base64: %w", err)
	}

	return string(raw), nil
}

// post sends the AGENT_ACTION envelope for action and returns the raw 2xx
// reply body.
func (c *Client) post(ctx context.Context, action string, params any) ([]byte, error) {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(envelope{Action: action, Context: params})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", action, err)
	}

	url := c.baseURL + "/" + EndpointFor(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s reply: %w", action, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: backend returned status %d", action, resp.StatusCode)
	}

	return data, nil
}

// Do posts an action with its parameters and decodes the backend's reply.
// Plugin handlers reply with arbitrary bodies on success, so a 2xx reply
// that is not a JSON Result counts as {"status": "ok"}.
func (c *Client) Do(ctx context.Context, action string, params any) (*Result, error) {
	data, err := c.post(ctx, action, params)
	if err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return &Result{Status: "ok"}, nil
	}
	if res.Status == "" {
		res.Status = "ok"
	}
	return &res, nil
}

// PlaceNetLabels places net labels on the listed pins.
func (c *Client) PlaceNetLabels(ctx context.Context, p NetLabelParams) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ActionPlaceNetLabels, err)
	}
	return c.Do(ctx, ActionPlaceNetLabels, p)
}

// DrawWires draws a batch of schematic wires.
func (c *Client) DrawWires(ctx context.Context, p WireSet) (*Result, error) {
	if len(p.Lines) == 0 {
		return nil, fmt.Errorf("%s: lines is empty", ActionDrawWires)
	}
	return c.Do(ctx, ActionDrawWires, p)
}

// PlaceSymbol places a new schematic symbol.
func (c *Client) PlaceSymbol(ctx context.Context, p PlaceSymbolParams) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ActionPlaceSymbol, err)
	}
	return c.Do(ctx, ActionPlaceSymbol, p)
}

// MoveSymbol moves a placed symbol by a relative offset.
func (c *Client) MoveSymbol(ctx context.Context, p MoveSymbolParams) (*Result, error) {
	return c.Do(ctx, ActionMoveSymbol, p)
}

// RotateSymbol rotates a placed symbol by 90 degrees.
func (c *Client) RotateSymbol(ctx context.Context, p RotateSymbolParams) (*Result, error) {
	return c.Do(ctx, ActionRotateSymbol, p)
}

// SetSymbolValue assigns a new value to a placed symbol.
func (c *Client) SetSymbolValue(ctx context.Context, p ModifySymbolValueParams) (*Result, error) {
	return c.Do(ctx, ActionModifySymbolValue, p)
}

// RenameSymbol changes a placed symbol's reference designator.
func (c *Client) RenameSymbol(ctx context.Context, p ModifySymbolReferenceParams) (*Result, error) {
	return c.Do(ctx, ActionModifySymbolReference, p)
}

// PlaceLabel places a text label on the schematic.
func (c *Client) PlaceLabel(ctx context.Context, p LabelParams) (*Result, error) {
	return c.Do(ctx, ActionPlaceLabel, p)
}

// PlaceTrack routes a copper trace on the board.
func (c *Client) PlaceTrack(ctx context.Context, p TrackParams) (*Result, error) {
	return c.Do(ctx, ActionPlaceTrack, p)
}

// PlaceVia creates a via on the board.
func (c *Client) PlaceVia(ctx context.Context, p ViaParams) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ActionPlaceVia, err)
	}
	return c.Do(ctx, ActionPlaceVia, p)
}

// MoveFootprint moves a board footprint by a relative offset.
func (c *Client) MoveFootprint(ctx context.Context, p MoveFootprintParams) (*Result, error) {
	return c.Do(ctx, ActionMoveFootprint, p)
}

// RotateFootprint rotates a board footprint.
func (c *Client) RotateFootprint(ctx context.Context, p RotateFootprintParams) (*Result, error) {
	return c.Do(ctx, ActionRotateFootprint, p)
}

// ListFootprints queries the board's footprint inventory.
func (c *Client) ListFootprints(ctx context.Context) ([]FootprintInfo, error) {
	data, err := c.post(ctx, ActionListFootprints, nil)
	if err != nil {
		return nil, err
	}

	var reply FootprintList
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("decoding %s reply: %w", ActionListFootprints, err)
	}
	return reply.Footprints, nil
}

// SwitchFrame activates a different KiCad editor frame.
func (c *Client) SwitchFrame(ctx context.Context, p FrameParams) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ActionSwitchFrame, err)
	}
	return c.Do(ctx, ActionSwitchFrame, p)
}
