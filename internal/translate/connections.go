package translate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"kicadmcp/internal/kicad"
	"kicadmcp/internal/netlist"
)

// connectionsInstruction primes the model for netlist analysis. The
// schema block and example mirror the wire structure of
// kicad.NetLabelParams exactly; the netlist body follows between the
// BEGIN/END markers.
const connectionsInstruction = `You are an assistant that analyzes KiCad project netlists.

The user will provide the *complete textual netlist* from a KiCad design.
Your task is to extract the structured connection data for one selected net
and represent it as JSON matching the following schema:

API_PLACE_NETLABEL_PARAMS:
  net_name: string
  pins: list of objects each with:
    - designator: string (component reference like "U1", "R3", "J1")
    - pin_num: integer (pin number connected to the net)

Guidelines:
- Carefully parse the given netlist text to determine actual net names and pin associations.
- Ignore schematic formatting, comments, and library metadata.
- Only include valid nets and connected pins.
- Ensure pin numbers are integers and designators are exact component names.

Example output:
{
  "net_name": "VCC",
  "pins": [
    { "designator": "U1", "pin_num": 1 },
    { "designator": "U2", "pin_num": 3 },
    { "designator": "J1", "pin_num": 2 }
  ]
}
`

// connectionsPrompt assembles the full request for one translation.
func connectionsPrompt(netlistText, netHint string) string {
	var b strings.Builder
	b.WriteString(connectionsInstruction)
	if netHint != "" {
		fmt.Fprintf(&b, "\nThe selected net is %q.\n", netHint)
	}
	b.WriteString("\n--- BEGIN NETLIST TEXT ---\n")
	b.WriteString(netlistText)
	b.WriteString("\n--- END NETLIST TEXT ---\n")
	return b.String()
}

// BuildConnections asks the model to extract net label placement
// parameters for one net of netlistText. A non-empty netHint pins the
// extraction to that net; otherwise the model chooses. When the text
// parses as an XML netlist export, every reply is cross-checked against
// it: the net must exist and each (designator, pin) pair must actually be
// connected to it. Violations feed the repair turn.
func BuildConnections(ctx context.Context, client *openai.Client, model, netlistText, netHint string) (kicad.NetLabelParams, error) {
	tr := New[kicad.NetLabelParams](client, model)
	if doc, err := netlist.ParseString(netlistText); err == nil {
		tr = tr.WithValidation(connectionsCheck(doc, netHint))
	}
	return tr.Translate(ctx, connectionsPrompt(netlistText, netHint))
}

// connectionsCheck validates a reply against the parsed netlist.
func connectionsCheck(doc *netlist.Document, netHint string) func(kicad.NetLabelParams) error {
	return func(p kicad.NetLabelParams) error {
		if netHint != "" && p.NetName != netHint {
			return fmt.Errorf("expected net %q, extracted %q", netHint, p.NetName)
		}
		net, ok := doc.Net(p.NetName)
		if !ok {
			return fmt.Errorf("net %q does not exist in the netlist", p.NetName)
		}
		for _, pin := range p.Pins {
			if !net.HasNode(pin.Designator, strconv.Itoa(pin.PinNum)) {
				return fmt.Errorf("%s pin %d is not connected to net %q", pin.Designator, pin.PinNum, p.NetName)
			}
		}
		return nil
	}
}
