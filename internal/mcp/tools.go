package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"kicadmcp/internal/history"
	"kicadmcp/internal/kicad"
	"kicadmcp/internal/netlist"
	"kicadmcp/internal/translate"

	"github.com/mark3labs/mcp-go/mcp"
)

// setupTools registers every KiCad operation as an MCP tool. Coordinates and
// offsets are millimeters in KiCad's coordinate system throughout.
func (s *Server) setupTools() {
	getNetlistTool := mcp.NewTool("get_netlist",
		mcp.WithDescription("Fetch the netlist of the currently open schematic as KiCad XML"),
	)
	s.mcpServer.AddTool(getNetlistTool, s.handleGetNetlist)

	listNetsTool := mcp.NewTool("list_nets",
		mcp.WithDescription("List the nets of the current schematic with their pin counts"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of nets to list (default: all)"),
		),
	)
	s.mcpServer.AddTool(listNetsTool, s.handleListNets)

	buildConnectionsTool := mcp.NewTool("build_connections",
		mcp.WithDescription("Extract the structured pin connections of one net from a textual netlist"),
		mcp.WithString("net_list",
			mcp.Required(),
			mcp.Description("Complete textual netlist from the KiCad design"),
		),
		mcp.WithString("net_name",
			mcp.Description("Net to extract; when omitted the model picks the net the netlist centers on"),
		),
	)
	s.mcpServer.AddTool(buildConnectionsTool, s.handleBuildConnections)

	placeNetLabelsTool := mcp.NewTool("place_net_labels",
		mcp.WithDescription("Place net labels on every listed pin of a net in the schematic"),
		mcp.WithString("net_name",
			mcp.Required(),
			mcp.Description("Name of the net the labels carry"),
		),
		mcp.WithArray("pins",
			mcp.Required(),
			mcp.Description("Pins to label, each an object {designator, pin_num}, e.g. {\"designator\": \"U1\", \"pin_num\": 3}"),
		),
	)
	s.mcpServer.AddTool(placeNetLabelsTool, s.handlePlaceNetLabels)

	drawWiresTool := mcp.NewTool("draw_wires",
		mcp.WithDescription("Draw wire segments on the schematic"),
		mcp.WithArray("lines",
			mcp.Required(),
			mcp.Description("Wire segments, each an object {start: {x, y}, end: {x, y}} in millimeters"),
		),
	)
	s.mcpServer.AddTool(drawWiresTool, s.handleDrawWires)

	placeSymbolTool := mcp.NewTool("place_symbol",
		mcp.WithDescription("Place a new symbol on the schematic"),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Symbol category, one of: "+symbolCategoryList()),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Component value, e.g. 10k or 100nF"),
		),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference designator for the new symbol, e.g. R1 or U5"),
		),
		mcp.WithNumber("x",
			mcp.Required(),
			mcp.Description("X coordinate in millimeters"),
		),
		mcp.WithNumber("y",
			mcp.Required(),
			mcp.Description("Y coordinate in millimeters"),
		),
	)
	s.mcpServer.AddTool(placeSymbolTool, s.handlePlaceSymbol)

	moveSymbolTool := mcp.NewTool("move_symbol",
		mcp.WithDescription("Move a placed symbol by a relative offset"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference designator of the symbol to move, e.g. R1"),
		),
		mcp.WithString("unit",
			mcp.Description("Unit of a multi-unit symbol, e.g. 2 for the second op-amp; empty for single-unit symbols"),
		),
		mcp.WithNumber("dx",
			mcp.Required(),
			mcp.Description("X offset in millimeters, positive moves right"),
		),
		mcp.WithNumber("dy",
			mcp.Required(),
			mcp.Description("Y offset in millimeters"),
		),
	)
	s.mcpServer.AddTool(moveSymbolTool, s.handleMoveSymbol)

	rotateSymbolTool := mcp.NewTool("rotate_symbol",
		mcp.WithDescription("Rotate a placed symbol by 90 degrees around its anchor"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference designator of the symbol to rotate"),
		),
		mcp.WithString("unit",
			mcp.Description("Unit of a multi-unit symbol; empty for single-unit symbols"),
		),
		mcp.WithBoolean("ccw",
			mcp.Description("Rotate counter-clockwise (default true; false rotates clockwise)"),
		),
	)
	s.mcpServer.AddTool(rotateSymbolTool, s.handleRotateSymbol)

	setSymbolValueTool := mcp.NewTool("set_symbol_value",
		mcp.WithDescription("Change the value of a placed symbol"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference designator of the symbol to modify"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("New component value, e.g. 4.7k"),
		),
	)
	s.mcpServer.AddTool(setSymbolValueTool, s.handleSetSymbolValue)

	renameSymbolTool := mcp.NewTool("rename_symbol",
		mcp.WithDescription("Change the reference designator of a placed symbol"),
		mcp.WithString("old_reference",
			mcp.Required(),
			mcp.Description("Current reference designator, e.g. R1"),
		),
		mcp.WithString("new_reference",
			mcp.Required(),
			mcp.Description("New reference designator, e.g. R10"),
		),
	)
	s.mcpServer.AddTool(renameSymbolTool, s.handleRenameSymbol)

	placeLabelTool := mcp.NewTool("place_label",
		mcp.WithDescription("Place a free-text label on the schematic"),
		mcp.WithNumber("x",
			mcp.Required(),
			mcp.Description("X coordinate in millimeters"),
		),
		mcp.WithNumber("y",
			mcp.Required(),
			mcp.Description("Y coordinate in millimeters"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Label text"),
		),
	)
	s.mcpServer.AddTool(placeLabelTool, s.handlePlaceLabel)

	placeTrackTool := mcp.NewTool("place_track",
		mcp.WithDescription("Place a copper track segment on the board"),
		mcp.WithNumber("start_x",
			mcp.Required(),
			mcp.Description("Start X coordinate in millimeters"),
		),
		mcp.WithNumber("start_y",
			mcp.Required(),
			mcp.Description("Start Y coordinate in millimeters"),
		),
		mcp.WithNumber("end_x",
			mcp.Required(),
			mcp.Description("End X coordinate in millimeters"),
		),
		mcp.WithNumber("end_y",
			mcp.Required(),
			mcp.Description("End Y coordinate in millimeters"),
		),
		mcp.WithString("layer",
			mcp.Description("Copper layer name as shown in pcbnew, e.g. F.Cu or B.Cu (default F.Cu)"),
		),
	)
	s.mcpServer.AddTool(placeTrackTool, s.handlePlaceTrack)

	placeViaTool := mcp.NewTool("place_via",
		mcp.WithDescription("Place a via on the board"),
		mcp.WithNumber("x",
			mcp.Required(),
			mcp.Description("X coordinate of the via center in millimeters"),
		),
		mcp.WithNumber("y",
			mcp.Required(),
			mcp.Description("Y coordinate of the via center in millimeters"),
		),
		mcp.WithString("via_type",
			mcp.Description("Via type: THROUGH, BLIND_BURIED, or MICROVIA (default THROUGH)"),
		),
		mcp.WithString("start_layer",
			mcp.Description("Layer the via starts on: F_Cu or B_Cu (default F_Cu)"),
		),
		mcp.WithString("end_layer",
			mcp.Description("Layer the via ends on: F_Cu or B_Cu (default B_Cu)"),
		),
	)
	s.mcpServer.AddTool(placeViaTool, s.handlePlaceVia)

	listFootprintsTool := mcp.NewTool("list_footprints",
		mcp.WithDescription("List every footprint on the board with its position"),
	)
	s.mcpServer.AddTool(listFootprintsTool, s.handleListFootprints)

	moveFootprintTool := mcp.NewTool("move_footprint",
		mcp.WithDescription("Move a board footprint by a relative offset"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference designator of the footprint to move, e.g. R1"),
		),
		mcp.WithNumber("dx",
			mcp.Required(),
			mcp.Description("X offset in millimeters"),
		),
		mcp.WithNumber("dy",
			mcp.Required(),
			mcp.Description("Y offset in millimeters"),
		),
	)
	s.mcpServer.AddTool(moveFootprintTool, s.handleMoveFootprint)

	rotateFootprintTool := mcp.NewTool("rotate_footprint",
		mcp.WithDescription("Rotate a board footprint around its origin"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference designator of the footprint to rotate"),
		),
		mcp.WithNumber("degree",
			mcp.Required(),
			mcp.Description("Rotation angle in degrees, positive is counter-clockwise"),
		),
	)
	s.mcpServer.AddTool(rotateFootprintTool, s.handleRotateFootprint)

	switchFrameTool := mcp.NewTool("switch_frame",
		mcp.WithDescription("Bring a KiCad editor window to the foreground"),
		mcp.WithString("frame_type",
			mcp.Required(),
			mcp.Description("Editor window: FRAME_SCH, FRAME_SCH_SYMBOL_EDITOR, FRAME_PCB_EDITOR, FRAME_FOOTPRINT_EDITOR, or FRAME_GERBER"),
		),
	)
	s.mcpServer.AddTool(switchFrameTool, s.handleSwitchFrame)
}

func (s *Server) handleGetNetlist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	xmlText, err := s.kicad.GetNetlist(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(xmlText), nil
}

func (s *Server) handleListNets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)

	xmlText, err := s.kicad.GetNetlist(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := netlist.ParseString(xmlText)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	names := doc.NetNames()
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%d nets, %d components\n", len(doc.Nets), len(doc.Components))
	for i, name := range names {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "... and %d more\n", len(names)-limit)
			break
		}
		net, _ := doc.Net(name)
		fmt.Fprintf(&b, "%s (%d pins)\n", name, len(net.Nodes))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleBuildConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	netlistText, err := request.RequireString("net_list")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	netName := request.GetString("net_name", "")

	params, err := translate.BuildConnections(ctx, s.llm, s.config.LLMModel, netlistText, netName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handlePlaceNetLabels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p kicad.NetLabelParams
	if err := request.BindArguments(&p); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if err := p.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.snapshotBeforeChange(ctx, "place_net_labels")
	return s.dispatch(ctx, "place_net_labels", kicad.ActionPlaceNetLabels, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.PlaceNetLabels(ctx, p)
	})
}

func (s *Server) handleDrawWires(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p kicad.WireSet
	if err := request.BindArguments(&p); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if len(p.Lines) == 0 {
		return mcp.NewToolResultError("lines is empty"), nil
	}

	s.snapshotBeforeChange(ctx, "draw_wires")
	return s.dispatch(ctx, "draw_wires", kicad.ActionDrawWires, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.DrawWires(ctx, p)
	})
}

func (s *Server) handlePlaceSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.PlaceSymbolParams{
		Category:  kicad.SymbolCategory(category),
		Value:     value,
		Reference: reference,
		Position:  kicad.Point{X: x, Y: y},
	}
	if err := p.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.snapshotBeforeChange(ctx, "place_symbol")
	return s.dispatch(ctx, "place_symbol", kicad.ActionPlaceSymbol, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.PlaceSymbol(ctx, p)
	})
}

func (s *Server) handleMoveSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dx, err := request.RequireFloat("dx")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dy, err := request.RequireFloat("dy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.MoveSymbolParams{
		Reference: reference,
		Unit:      request.GetString("unit", ""),
		Offset:    kicad.Point{X: dx, Y: dy},
	}

	s.snapshotBeforeChange(ctx, "move_symbol")
	return s.dispatch(ctx, "move_symbol", kicad.ActionMoveSymbol, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.MoveSymbol(ctx, p)
	})
}

func (s *Server) handleRotateSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.RotateSymbolParams{
		Reference: reference,
		Unit:      request.GetString("unit", ""),
		CCW:       request.GetBool("ccw", true),
	}

	s.snapshotBeforeChange(ctx, "rotate_symbol")
	return s.dispatch(ctx, "rotate_symbol", kicad.ActionRotateSymbol, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.RotateSymbol(ctx, p)
	})
}

func (s *Server) handleSetSymbolValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.ModifySymbolValueParams{Reference: reference, Value: value}

	s.snapshotBeforeChange(ctx, "set_symbol_value")
	return s.dispatch(ctx, "set_symbol_value", kicad.ActionModifySymbolValue, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.SetSymbolValue(ctx, p)
	})
}

func (s *Server) handleRenameSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldReference, err := request.RequireString("old_reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newReference, err := request.RequireString("new_reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.ModifySymbolReferenceParams{OldReference: oldReference, NewReference: newReference}

	s.snapshotBeforeChange(ctx, "rename_symbol")
	return s.dispatch(ctx, "rename_symbol", kicad.ActionModifySymbolReference, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.RenameSymbol(ctx, p)
	})
}

func (s *Server) handlePlaceLabel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.LabelParams{Position: kicad.Point{X: x, Y: y}, Text: text}

	s.snapshotBeforeChange(ctx, "place_label")
	return s.dispatch(ctx, "place_label", kicad.ActionPlaceLabel, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.PlaceLabel(ctx, p)
	})
}

func (s *Server) handlePlaceTrack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startX, err := request.RequireFloat("start_x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startY, err := request.RequireFloat("start_y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endX, err := request.RequireFloat("end_x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endY, err := request.RequireFloat("end_y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.TrackParams{
		Start:     kicad.Point{X: startX, Y: startY},
		End:       kicad.Point{X: endX, Y: endY},
		LayerName: kicad.LayerName{PCBLayerName: request.GetString("layer", "F.Cu")},
	}

	return s.dispatch(ctx, "place_track", kicad.ActionPlaceTrack, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.PlaceTrack(ctx, p)
	})
}

func (s *Server) handlePlaceVia(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := request.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.ViaParams{
		Position:   kicad.Point{X: x, Y: y},
		ViaType:    kicad.ViaType(request.GetString("via_type", string(kicad.ViaThrough))),
		StartLayer: kicad.LayerID(request.GetString("start_layer", string(kicad.LayerFrontCu))),
		EndLayer:   kicad.LayerID(request.GetString("end_layer", string(kicad.LayerBackCu))),
	}
	if err := p.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.dispatch(ctx, "place_via", kicad.ActionPlaceVia, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.PlaceVia(ctx, p)
	})
}

func (s *Server) handleListFootprints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	footprints, err := s.kicad.ListFootprints(ctx)
	s.record(ctx, "list_footprints", kicad.ActionListFootprints, struct{}{}, nil, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(footprints) == 0 {
		return mcp.NewToolResultText("No footprints on the board"), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d footprints:\n", len(footprints))
	for _, fp := range footprints {
		fmt.Fprintf(&b, "%s  %s  (%.3f, %.3f)\n", fp.Reference, fp.FPID, fp.Position.X, fp.Position.Y)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleMoveFootprint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dx, err := request.RequireFloat("dx")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dy, err := request.RequireFloat("dy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.MoveFootprintParams{Reference: reference, Offset: kicad.Point{X: dx, Y: dy}}

	return s.dispatch(ctx, "move_footprint", kicad.ActionMoveFootprint, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.MoveFootprint(ctx, p)
	})
}

func (s *Server) handleRotateFootprint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference, err := request.RequireString("reference")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	degree, err := request.RequireFloat("degree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.RotateFootprintParams{Reference: reference, Degree: degree}

	return s.dispatch(ctx, "rotate_footprint", kicad.ActionRotateFootprint, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.RotateFootprint(ctx, p)
	})
}

func (s *Server) handleSwitchFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	frameType, err := request.RequireString("frame_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := kicad.FrameParams{FrameType: kicad.FrameType(frameType)}
	if err := p.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.dispatch(ctx, "switch_frame", kicad.ActionSwitchFrame, p, func(ctx context.Context) (*kicad.Result, error) {
		return s.kicad.SwitchFrame(ctx, p)
	})
}

// dispatch forwards one backend action and records it in the history store.
// Failures come back as MCP tool errors so the assistant sees the message
// instead of a protocol fault.
func (s *Server) dispatch(ctx context.Context, tool, action string, params any, call func(context.Context) (*kicad.Result, error)) (*mcp.CallToolResult, error) {
	defer s.logger.LogPerformance(action, time.Now())

	res, err := call(ctx)
	s.record(ctx, tool, action, params, res, err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultText(res)), nil
}

// record appends one dispatched action to the history store. Recording is
// best effort: a failure logs a warning and the action result stands.
func (s *Server) record(ctx context.Context, tool, action string, params any, res *kicad.Result, callErr error) {
	status := "ok"
	message := ""
	switch {
	case callErr != nil:
		status = "error"
		message = callErr.Error()
	case res != nil:
		status = res.Status
		message = res.Msg
	}
	s.logger.LogAction(action, status)

	if s.history == nil {
		return
	}

	reqJSON, err := json.Marshal(params)
	if err != nil {
		reqJSON = []byte("{}")
	}
	entry := history.Entry{
		Tool:     tool,
		Endpoint: kicad.EndpointFor(action),
		Request:  string(reqJSON),
		Status:   status,
		Message:  message,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record action history", "tool", tool, "error", err)
	}
}

// snapshotBeforeChange commits the current netlist to the snapshot store
// before a schematic mutation. Board edits are not guarded: the netlist does
// not describe board state. Failures degrade to a warning so a broken
// snapshot store never blocks an edit.
func (s *Server) snapshotBeforeChange(ctx context.Context, tool string) {
	if s.snapshots == nil || !s.config.AutoSnapshot {
		return
	}

	xmlText, err := s.kicad.GetNetlist(ctx)
	if err != nil {
		s.logger.Warn("Skipping netlist snapshot", "tool", tool, "error", err)
		return
	}
	if _, err := s.snapshots.Save(tool, xmlText); err != nil {
		s.logger.Warn("Failed to snapshot netlist", "tool", tool, "error", err)
	}
}

// resultText renders a backend reply for the assistant.
func resultText(res *kicad.Result) string {
	if res.Msg != "" {
		return fmt.Sprintf("%s: %s", res.Status, res.Msg)
	}
	return res.Status
}

// symbolCategoryList joins the accepted symbol categories for the tool schema.
func symbolCategoryList() string {
	names := make([]string, len(kicad.SymbolCategories))
	for i, c := range kicad.SymbolCategories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
