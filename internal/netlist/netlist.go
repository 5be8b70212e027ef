// Package netlist parses KiCad XML netlist exports.
//
// The export format is the one Eeschema produces: an <export> root with a
// <design> header, a <components> section listing every placed part, and a
// <nets> section listing connectivity as (ref, pin) nodes per net. Parsing
// is deterministic; nothing here calls the backend or an LLM.
package netlist

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// summaryTopNets caps how many nets Summary ranks by size.
const summaryTopNets = 5

// Document is a parsed netlist export.
type Document struct {
	Version string
	Source  string
	Date    string
	Tool    string

	Components []Component
	Nets       []Net
}

// Component is one <comp> entry.
type Component struct {
	Ref       string
	Value     string
	Footprint string
	Lib       string
	Part      string
}

// Net is one <net> entry with its connected pins.
type Net struct {
	Code  string
	Name  string
	Nodes []Node
}

// Node is one (component reference, pin) connection point. Pin stays a
// string: KiCad emits non-numeric pin identifiers like "A1" or "VDD" for
// BGA and multi-unit parts.
type Node struct {
	Ref string
	Pin string
}

// export mirrors the XML document for decoding.
type export struct {
	XMLName xml.Name `xml:"export"`
	Version string   `xml:"version,attr"`
	Design  struct {
		Source string `xml:"source"`
		Date   string `xml:"date"`
		Tool   string `xml:"tool"`
	} `xml:"design"`
	Components struct {
		Comps []struct {
			Ref       string `xml:"ref,attr"`
			Value     string `xml:"value"`
			Footprint string `xml:"footprint"`
			LibSource struct {
				Lib  string `xml:"lib,attr"`
				Part string `xml:"part,attr"`
			} `xml:"libsource"`
		} `xml:"comp"`
	} `xml:"components"`
	Nets struct {
		Nets []struct {
			Code  string `xml:"code,attr"`
			Name  string `xml:"name,attr"`
			Nodes []struct {
				Ref string `xml:"ref,attr"`
				Pin string `xml:"pin,attr"`
			} `xml:"node"`
		} `xml:"net"`
	} `xml:"nets"`
}

// Parse reads a KiCad XML netlist export.
func Parse(r io.Reader) (*Document, error) {
	var raw export
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing netlist XML: %w", err)
	}

	doc := &Document{
		Version: raw.Version,
		Source:  raw.Design.Source,
		Date:    raw.Design.Date,
		Tool:    raw.Design.Tool,
	}

	for _, c := range raw.Components.Comps {
		doc.Components = append(doc.Components, Component{
			Ref:       c.Ref,
			Value:     c.Value,
			Footprint: c.Footprint,
			Lib:       c.LibSource.Lib,
			Part:      c.LibSource.Part,
		})
	}

	for _, n := range raw.Nets.Nets {
		net := Net{Code: n.Code, Name: n.Name}
		for _, node := range n.Nodes {
			net.Nodes = append(net.Nodes, Node{Ref: node.Ref, Pin: node.Pin})
		}
		doc.Nets = append(doc.Nets, net)
	}

	return doc, nil
}

// ParseString parses a netlist export held in memory.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Net looks up a net by its exact name.
func (d *Document) Net(name string) (*Net, bool) {
	for i := range d.Nets {
		if d.Nets[i].Name == name {
			return &d.Nets[i], true
		}
	}
	return nil, false
}

// HasNode reports whether this net connects the given (ref, pin) pair.
func (n *Net) HasNode(ref, pin string) bool {
	for _, node := range n.Nodes {
		if node.Ref == ref && node.Pin == pin {
			return true
		}
	}
	return false
}

// HasPin reports whether any net connects the given (ref, pin) pair.
func (d *Document) HasPin(ref, pin string) bool {
	for i := range d.Nets {
		for _, node := range d.Nets[i].Nodes {
			if node.Ref == ref && node.Pin == pin {
				return true
			}
		}
	}
	return false
}

// NetNames returns every net name in document order.
func (d *Document) NetNames() []string {
	names := make([]string, 0, len(d.Nets))
	for i := range d.Nets {
		names = append(names, d.Nets[i].Name)
	}
	return names
}

// Summary condenses a document for inventory views.
type Summary struct {
	Source     string
	Tool       string
	Components int
	Nets       int
	Largest    []NetSize
}

// NetSize pairs a net name with its pin count.
type NetSize struct {
	Name string
	Pins int
}

// Summary counts components and nets and ranks the largest nets by pin
// count. Ties break by name so the ranking is stable.
func (d *Document) Summary() Summary {
	s := Summary{
		Source:     d.Source,
		Tool:       d.Tool,
		Components: len(d.Components),
		Nets:       len(d.Nets),
	}

	sizes := make([]NetSize, 0, len(d.Nets))
	for i := range d.Nets {
		sizes = append(sizes, NetSize{Name: d.Nets[i].Name, Pins: len(d.Nets[i].Nodes)})
	}
	sort.Slice(sizes, func(i, j int) bool {
		if sizes[i].Pins != sizes[j].Pins {
			return sizes[i].Pins > sizes[j].Pins
		}
		return sizes[i].Name < sizes[j].Name
	})

	if len(sizes) > summaryTopNets {
		sizes = sizes[:summaryTopNets]
	}
	s.Largest = sizes
	return s
}
