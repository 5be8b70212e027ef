// Package kicad implements the HTTP client for the KiCad agent backend and
// the typed action vocabulary it accepts.
//
// The backend is an HTTP service exposed by a KiCad-side SDK plugin,
// listening on localhost. Every mutating operation is posted as an
// AGENT_ACTION envelope:
//
//	{"action": "<action_name>", "context": <params>}
//
// The JSON field names in this package are the wire contract with the
// plugin and must not change. All coordinates are millimeters in the KiCad
// coordinate system.
package kicad

import (
	"fmt"
	"strings"
)

// Result is the backend's reply to an action.
type Result struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// Point is a coordinate in millimeters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is a single schematic wire from start to end.
type Line struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// WireSet batches multiple wires for one draw action.
type WireSet struct {
	Lines []Line `json:"lines"`
}

// NetLabelPin identifies one component pin by reference designator and
// physical pin number.
type NetLabelPin struct {
	Designator string `json:"designator"`
	PinNum     int    `json:"pin_num"`
}

// NetLabelParams describes net label placement: the net name and every
// (designator, pin) pair the label attaches to.
type NetLabelParams struct {
	NetName string        `json:"net_name"`
	Pins    []NetLabelPin `json:"pins"`
}

// Validate checks the structural invariants the backend expects.
func (p NetLabelParams) Validate() error {
	if strings.TrimSpace(p.NetName) == "" {
		return fmt.Errorf("net_name is empty")
	}
	if len(p.Pins) == 0 {
		return fmt.Errorf("pins is empty")
	}
	for i, pin := range p.Pins {
		if strings.TrimSpace(pin.Designator) == "" {
			return fmt.Errorf("pins[%d]: designator is empty", i)
		}
		if pin.PinNum < 0 {
			return fmt.Errorf("pins[%d]: pin_num %d is negative", i, pin.PinNum)
		}
	}
	return nil
}

// SymbolCategory is the standardized component category used when placing
// schematic symbols.
type SymbolCategory string

// Symbol categories accepted by the backend.
const (
	Resistor             SymbolCategory = "RESISTOR"
	Capacitor            SymbolCategory = "CAPACITOR"
	Inductor             SymbolCategory = "INDUCTOR"
	Potentiometer        SymbolCategory = "POTENTIOMETER"
	CrystalOscillator    SymbolCategory = "CRYSTAL_OSCILLATOR"
	Transformer          SymbolCategory = "TRANSFORMER"
	Fuse                 SymbolCategory = "FUSE"
	FerriteBead          SymbolCategory = "FERRITE_BEAD"
	PowerDC              SymbolCategory = "POWER_DC"
	Ground               SymbolCategory = "GROUND"
	PowerAC              SymbolCategory = "POWER_AC"
	Diode                SymbolCategory = "DIODE"
	ZenerDiode           SymbolCategory = "ZENER_DIODE"
	SchottkyDiode        SymbolCategory = "SCHOTTKY_DIODE"
	VaractorDiode        SymbolCategory = "VARACTOR_DIODE"
	LED                  SymbolCategory = "LED"
	Photodiode           SymbolCategory = "PHOTODIODE"
	TransistorNPN        SymbolCategory = "TRANSISTOR_NPN"
	TransistorPNP        SymbolCategory = "TRANSISTOR_PNP"
	MOSFETNChannel       SymbolCategory = "MOSFET_N_CHANNEL"
	MOSFETPChannel       SymbolCategory = "MOSFET_P_CHANNEL"
	JFETNChannel         SymbolCategory = "JFET_N_CHANNEL"
	JFETPChannel         SymbolCategory = "JFET_P_CHANNEL"
	IGBT                 SymbolCategory = "IGBT"
	Thyristor            SymbolCategory = "THYRISTOR"
	Triac                SymbolCategory = "TRIAC"
	OperationalAmplifier SymbolCategory = "OPERATIONAL_AMPLIFIER"
	Button               SymbolCategory = "BUTTON"
	Buzzer               SymbolCategory = "BUZZER"
	Speaker              SymbolCategory = "SPEAKER"
	Motor                SymbolCategory = "MOTOR"
)

// SymbolCategories lists every accepted category, in backend declaration
// order. Useful for tool descriptions and validation messages.
var SymbolCategories = []SymbolCategory{
	Resistor, Capacitor, Inductor, Potentiometer, CrystalOscillator,
	Transformer, Fuse, FerriteBead, PowerDC, Ground, PowerAC, Diode,
	ZenerDiode, SchottkyDiode, VaractorDiode, LED, Photodiode,
	TransistorNPN, TransistorPNP, MOSFETNChannel, MOSFETPChannel,
	JFETNChannel, JFETPChannel, IGBT, Thyristor, Triac,
	OperationalAmplifier, Button, Buzzer, Speaker, Motor,
}

// ValidSymbolCategory reports whether s is an accepted symbol category.
func ValidSymbolCategory(s string) bool {
	for _, c := range SymbolCategories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// PlaceSymbolParams places a new symbol on the schematic.
type PlaceSymbolParams struct {
	Category  SymbolCategory `json:"category"`
	Value     string         `json:"value"`
	Position  Point          `json:"position"`
	Reference string         `json:"reference"`
}

// Validate checks the enum and identifier constraints before dispatch.
func (p PlaceSymbolParams) Validate() error {
	if !ValidSymbolCategory(string(p.Category)) {
		return fmt.Errorf("unknown symbol category %q", p.Category)
	}
	if strings.TrimSpace(p.Reference) == "" {
		return fmt.Errorf("reference is empty")
	}
	return nil
}

// MoveSymbolParams moves a placed symbol by a relative offset. Unit selects
// a sub-unit of multi-unit symbols; empty targets the default unit.
type MoveSymbolParams struct {
	Reference string `json:"reference"`
	Unit      string `json:"unit"`
	Offset    Point  `json:"offset"`
}

// RotateSymbolParams rotates a placed symbol by 90 degrees. CCW true is
// counterclockwise, false clockwise.
type RotateSymbolParams struct {
	Reference string `json:"reference"`
	Unit      string `json:"unit"`
	CCW       bool   `json:"ccw"`
}

// ModifySymbolValueParams assigns a new value (e.g. "100K", "0.1uF") to a
// placed symbol.
type ModifySymbolValueParams struct {
	Reference string `json:"reference"`
	Value     string `json:"value"`
}

// ModifySymbolReferenceParams renames a placed symbol's reference
// designator.
type ModifySymbolReferenceParams struct {
	OldReference string `json:"old_reference"`
	NewReference string `json:"new_reference"`
}

// LabelParams places a text label anchored at a position.
type LabelParams struct {
	Position Point  `json:"position"`
	Text     string `json:"text"`
}

// LayerName wraps a PCB layer name in KiCad's native naming ("F.Cu",
// "B.SilkS", "Edge.Cuts").
type LayerName struct {
	PCBLayerName string `json:"pcb_layer_name"`
}

// TrackParams routes a copper trace between two points, optionally on a
// named layer.
type TrackParams struct {
	Start     Point     `json:"start"`
	End       Point     `json:"end"`
	LayerName LayerName `json:"layer_name"`
}

// ViaType is the via manufacturing type.
type ViaType string

const (
	ViaThrough     ViaType = "THROUGH"
	ViaBlindBuried ViaType = "BLIND_BURIED"
	ViaMicro       ViaType = "MICROVIA"
	ViaNotDefined  ViaType = "NOT_DEFINED"
)

// ViaTypes lists the accepted via types.
var ViaTypes = []ViaType{ViaThrough, ViaBlindBuried, ViaMicro, ViaNotDefined}

// ValidViaType reports whether s is an accepted via type.
func ValidViaType(s string) bool {
	for _, v := range ViaTypes {
		if string(v) == s {
			return true
		}
	}
	return false
}

// LayerID is a copper layer identifier, mirroring KiCad's PCB_LAYER_ID.
type LayerID string

const (
	LayerUndefined  LayerID = "UNDEFINED_LAYER"
	LayerUnselected LayerID = "UNSELECTED_LAYER"
	LayerFrontCu    LayerID = "F_Cu"
	LayerBackCu     LayerID = "B_Cu"
)

// LayerIDs lists the accepted copper layer identifiers.
var LayerIDs = []LayerID{LayerUndefined, LayerUnselected, LayerFrontCu, LayerBackCu}

// ValidLayerID reports whether s is an accepted layer identifier.
func ValidLayerID(s string) bool {
	for _, l := range LayerIDs {
		if string(l) == s {
			return true
		}
	}
	return false
}

// ViaParams creates a via at a position, connecting start_layer to
// end_layer.
type ViaParams struct {
	Position   Point   `json:"position"`
	ViaType    ViaType `json:"via_type"`
	StartLayer LayerID `json:"start_layer"`
	EndLayer   LayerID `json:"end_layer"`
}

// Validate checks the via and layer enums before dispatch.
func (p ViaParams) Validate() error {
	if !ValidViaType(string(p.ViaType)) {
		return fmt.Errorf("unknown via type %q", p.ViaType)
	}
	if !ValidLayerID(string(p.StartLayer)) {
		return fmt.Errorf("unknown start layer %q", p.StartLayer)
	}
	if !ValidLayerID(string(p.EndLayer)) {
		return fmt.Errorf("unknown end layer %q", p.EndLayer)
	}
	return nil
}

// MoveFootprintParams moves a board footprint by a relative offset.
type MoveFootprintParams struct {
	Reference string `json:"reference"`
	Offset    Point  `json:"offset"`
}

// RotateFootprintParams rotates a board footprint around its origin.
// Positive degrees rotate counterclockwise, per KiCad convention.
type RotateFootprintParams struct {
	Reference string  `json:"reference"`
	Degree    float64 `json:"degree"`
}

// FootprintInfo is one board footprint in a query reply: the reference
// designator, the library footprint id ("Resistor_SMD:R_0805") and the
// absolute origin position.
type FootprintInfo struct {
	Reference string `json:"reference"`
	FPID      string `json:"fpid"`
	Position  Point  `json:"position"`
}

// FootprintList is the reply shape of the footprint inventory query.
type FootprintList struct {
	Footprints []FootprintInfo `json:"footprint_list"`
}

// FrameType identifies a KiCad editor frame.
type FrameType string

const (
	FrameSchematic       FrameType = "FRAME_SCH"
	FrameSymbolEditor    FrameType = "FRAME_SCH_SYMBOL_EDITOR"
	FramePCBEditor       FrameType = "FRAME_PCB_EDITOR"
	FrameFootprintEditor FrameType = "FRAME_FOOTPRINT_EDITOR"
	FrameGerber          FrameType = "FRAME_GERBER"
)

// FrameTypes lists the accepted frame types.
var FrameTypes = []FrameType{
	FrameSchematic, FrameSymbolEditor, FramePCBEditor,
	FrameFootprintEditor, FrameGerber,
}

// ValidFrameType reports whether s is an accepted frame type.
func ValidFrameType(s string) bool {
	for _, f := range FrameTypes {
		if string(f) == s {
			return true
		}
	}
	return false
}

// FrameParams switches the active KiCad editor frame.
type FrameParams struct {
	FrameType FrameType `json:"frame_type"`
}

// Validate checks the frame enum before dispatch.
func (p FrameParams) Validate() error {
	if !ValidFrameType(string(p.FrameType)) {
		return fmt.Errorf("unknown frame type %q", p.FrameType)
	}
	return nil
}
