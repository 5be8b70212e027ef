package kicad

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointFor(t *testing.T) {
	cases := map[string]string{
		ActionPlaceNetLabels:        "placeNetLabels",
		ActionDrawWires:             "drawWires",
		ActionPlaceSymbol:           "placeSymbol",
		ActionMoveSymbol:            "moveSymbol",
		ActionRotateSymbol:          "rotateSymbol",
		ActionModifySymbolValue:     "modifySymbolValue",
		ActionModifySymbolReference: "modifySymbolReference",
		ActionPlaceLabel:            "placeLabel",
		ActionPlaceTrack:            "placeTrack",
		ActionPlaceVia:              "placeVia",
		ActionListFootprints:        "listFootprints",
		ActionMoveFootprint:         "moveFootprint",
		ActionRotateFootprint:       "rotateFootprint",
		ActionSwitchFrame:           "switchFrame",
		"netlist":                   "netlist",
	}
	for action, want := range cases {
		assert.Equal(t, want, EndpointFor(action), "action %s", action)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:9999/", 5*time.Second)
	assert.Equal(t, "http://localhost:9999", c.BaseURL())
}

func TestGetNetlist(t *testing.T) {
	const xml = `<?xml version="1.0"?><export version="E"><nets/></export>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/netlist", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"net_list": base64.StdEncoding.EncodeToString([]byte(xml)),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	got, err := c.GetNetlist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, xml, got)
}

func TestGetNetlistMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"other": "value"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetNetlist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing the net_list field")
}

func TestGetNetlistInvalidBase64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"net_list": "not!!base64"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetNetlist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid base64")
}

func TestGetNetlistBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no project open", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetNetlist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGetNetlistUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetNetlist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netlist request failed")
}

func TestDoSendsEnvelope(t *testing.T) {
	var got map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/placeLabel", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Result{Status: "ok", Msg: "label placed"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Do(context.Background(), ActionPlaceLabel, LabelParams{
		Position: Point{X: 10, Y: 20},
		Text:     "MCU_RESET",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "label placed", res.Msg)

	var action string
	require.NoError(t, json.Unmarshal(got["action"], &action))
	assert.Equal(t, ActionPlaceLabel, action)

	var params LabelParams
	require.NoError(t, json.Unmarshal(got["context"], &params))
	assert.Equal(t, "MCU_RESET", params.Text)
	assert.Equal(t, 10.0, params.Position.X)
}

func TestDoNilParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.JSONEq(t, "{}", string(got["context"]))
		json.NewEncoder(w).Encode(Result{Status: "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Do(context.Background(), ActionListFootprints, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}

func TestDoNonJSONReplyCountsAsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("wires drawn"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Do(context.Background(), ActionDrawWires, WireSet{
		Lines: []Line{{Start: Point{X: 0, Y: 0}, End: Point{X: 5, Y: 0}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}

func TestDoEmptyStatusDefaultsToOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"msg": "done"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Do(context.Background(), ActionMoveSymbol, MoveSymbolParams{Reference: "R1"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "done", res.Msg)
}

func TestDoBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown reference", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Do(context.Background(), ActionMoveSymbol, MoveSymbolParams{Reference: "R99"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestPlaceNetLabelsValidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid params must not reach the backend")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.PlaceNetLabels(context.Background(), NetLabelParams{NetName: "VCC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pins is empty")
}

func TestPlaceNetLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/placeNetLabels", r.URL.Path)
		json.NewEncoder(w).Encode(Result{Status: "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.PlaceNetLabels(context.Background(), NetLabelParams{
		NetName: "VCC",
		Pins: []NetLabelPin{
			{Designator: "U1", PinNum: 1},
			{Designator: "J1", PinNum: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}

func TestPlaceSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/placeSymbol", r.URL.Path)

		var got envelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, ActionPlaceSymbol, got.Action)

		json.NewEncoder(w).Encode(Result{Status: "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.PlaceSymbol(context.Background(), PlaceSymbolParams{
		Category:  Resistor,
		Value:     "10k",
		Position:  Point{X: 50, Y: 50},
		Reference: "R1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}

func TestPlaceSymbolRejectsUnknownCategory(t *testing.T) {
	c := NewClient("http://localhost:1", time.Second)
	_, err := c.PlaceSymbol(context.Background(), PlaceSymbolParams{
		Category:  SymbolCategory("FLUX_CAPACITOR"),
		Reference: "FC1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown symbol category")
}

func TestDrawWiresRejectsEmptySet(t *testing.T) {
	c := NewClient("http://localhost:1", time.Second)
	_, err := c.DrawWires(context.Background(), WireSet{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lines is empty")
}

func TestPlaceViaRejectsUnknownType(t *testing.T) {
	c := NewClient("http://localhost:1", time.Second)
	_, err := c.PlaceVia(context.Background(), ViaParams{
		Position:   Point{X: 10, Y: 10},
		ViaType:    ViaType("WORMHOLE"),
		StartLayer: LayerFrontCu,
		EndLayer:   LayerBackCu,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown via type")
}

func TestSwitchFrameRejectsUnknownFrame(t *testing.T) {
	c := NewClient("http://localhost:1", time.Second)
	_, err := c.SwitchFrame(context.Background(), FrameParams{FrameType: FrameType("FRAME_3D_VIEWER")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown frame type")
}

func TestSwitchFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/switchFrame", r.URL.Path)
		json.NewEncoder(w).Encode(Result{Status: "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.SwitchFrame(context.Background(), FrameParams{FrameType: FramePCBEditor})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}

func TestListFootprints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/listFootprints", r.URL.Path)
		json.NewEncoder(w).Encode(FootprintList{
			Footprints: []FootprintInfo{
				{Reference: "R1", FPID: "Resistor_SMD:R_0603_1608Metric", Position: Point{X: 100, Y: 80}},
				{Reference: "C3", FPID: "Capacitor_SMD:C_0402_1005Metric", Position: Point{X: 104, Y: 80}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	fps, err := c.ListFootprints(context.Background())
	require.NoError(t, err)
	require.Len(t, fps, 2)
	assert.Equal(t, "R1", fps[0].Reference)
	assert.Equal(t, "Capacitor_SMD:C_0402_1005Metric", fps[1].FPID)
}

func TestListFootprintsBadReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.ListFootprints(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding list_footprints reply")
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, time.Second)
	_, err := c.GetNetlist(ctx)
	require.Error(t, err)
}
