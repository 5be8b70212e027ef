// Package mcp provides the Model Context Protocol (MCP) server implementation
// for kicadmcp using mcp-go.
//
// This package implements an MCP server that lets AI assistants drive a
// running KiCad instance through a standardized protocol. Schematic and PCB
// editing operations are exposed as tools, the current netlist as a resource,
// and a guided net-labeling workflow as a prompt.
//
// # Implementation
//
// The package uses the mcp-go library (github.com/mark3labs/mcp-go). Protocol
// semantics such as the handshake, capability negotiation, and message framing
// are owned entirely by the library; this package registers tools, resources,
// and prompts and maps them onto the KiCad agent backend.
//
// # Backend Integration
//
// Every tool call is forwarded to the KiCad agent plugin over HTTP via the
// kicad package. Enum and structural parameters validate before anything is
// sent, so a bad symbol category or an empty pin list never reaches the
// backend. Coordinates are millimeters in KiCad's own coordinate system.
//
// # Safety Nets
//
// Dispatched actions are recorded in a local history database, and schematic
// mutations optionally commit the current netlist to a git-backed snapshot
// store first. Both are best effort: a failing audit trail degrades to a
// logged warning and never blocks an edit.
//
// # Usage
//
// The MCP server is typically started as a subprocess by AI assistants that
// support MCP integration. It can also be started manually for testing:
//
//	kicadmcp serve
//
// Stdout carries the protocol stream, so all logging stays on stderr.
package mcp
