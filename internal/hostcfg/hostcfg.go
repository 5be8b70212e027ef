// Package hostcfg edits the desktop host application's MCP server
// registry (claude_desktop_config.json). The host owns that file, so only
// the mcpServers section is ever touched: every other top-level key and
// every foreign server entry survives a round trip byte-for-byte.
package hostcfg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/adrg/xdg"

	"kicadmcp/pkg/fileops"
)

const (
	// DefaultServerName is the registry key the install command uses
	// unless told otherwise.
	DefaultServerName = "kicad"

	hostConfigFile = "claude_desktop_config.json"
	serversKey     = "mcpServers"
)

// ServerEntry is one MCP server registration. The JSON keys are the host
// application's wire format.
type ServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// NewServeEntry builds the standard registration: run the given binary
// with the serve subcommand over stdio.
func NewServeEntry(command string, env map[string]string) ServerEntry {
	return ServerEntry{
		Command: command,
		Args:    []string{"serve"},
		Env:     env,
	}
}

// DefaultPath returns the host application's config file location for
// this OS.
func DefaultPath() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", hostConfigFile), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA is not set")
		}
		return filepath.Join(appData, "Claude", hostConfigFile), nil
	default:
		return filepath.Join(xdg.ConfigHome, "Claude", hostConfigFile), nil
	}
}

// Document is a loaded host config. Server entries stay raw JSON so
// foreign registrations keep fields this tool knows nothing about.
type Document struct {
	servers map[string]json.RawMessage
	extra   map[string]json.RawMessage
}

// Load reads the host config at path. A missing or empty file yields an
// empty document.
func Load(path string) (*Document, error) {
	doc := &Document{
		servers: map[string]json.RawMessage{},
		extra:   map[string]json.RawMessage{},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading host config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc.extra); err != nil {
		return nil, fmt.Errorf("parsing host config %s: %w", path, err)
	}
	if rawServers, ok := doc.extra[serversKey]; ok {
		if err := json.Unmarshal(rawServers, &doc.servers); err != nil {
			return nil, fmt.Errorf("parsing %s in %s: %w", serversKey, path, err)
		}
		delete(doc.extra, serversKey)
	}

	return doc, nil
}

// Set registers or replaces a server entry.
func (d *Document) Set(name string, entry ServerEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding server entry: %w", err)
	}
	d.servers[name] = raw
	return nil
}

// Remove deletes a registration, reporting whether it existed. An empty
// mcpServers object remains in the file after the last removal.
func (d *Document) Remove(name string) bool {
	if _, ok := d.servers[name]; !ok {
		return false
	}
	delete(d.servers, name)
	return true
}

// Has reports whether a server is registered.
func (d *Document) Has(name string) bool {
	_, ok := d.servers[name]
	return ok
}

// Names lists registered servers in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.servers))
	for name := range d.servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry decodes one registration. Foreign entries may carry extra fields;
// those decode into the known subset.
func (d *Document) Entry(name string) (ServerEntry, bool) {
	raw, ok := d.servers[name]
	if !ok {
		return ServerEntry{}, false
	}
	var entry ServerEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return ServerEntry{}, false
	}
	return entry, true
}

// encode merges the document back into one top-level object.
func (d *Document) encode() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.extra)+1)
	for k, v := range d.extra {
		out[k] = v
	}
	rawServers, err := json.Marshal(d.servers)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", serversKey, err)
	}
	out[serversKey] = rawServers

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding host config: %w", err)
	}
	return append(data, '\n'), nil
}

// write backs up any existing file and replaces it atomically. The file
// is user-only: env values may hold secrets.
func write(path string, doc *Document) error {
	data, err := doc.encode()
	if err != nil {
		return err
	}

	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return fmt.Errorf("creating host config directory: %w", err)
	}
	if _, err := fileops.BackupFile(path); err != nil {
		return fmt.Errorf("backing up host config: %w", err)
	}
	if err := fileops.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing host config: %w", err)
	}
	return nil
}

// Install merges one registration into the host config at path, creating
// the file if needed.
func Install(path, name string, entry ServerEntry) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	if err := doc.Set(name, entry); err != nil {
		return err
	}
	return write(path, doc)
}

// Uninstall removes a registration from the host config at path.
func Uninstall(path, name string) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	if !doc.Remove(name) {
		return fmt.Errorf("server %q is not registered in %s", name, path)
	}
	return write(path, doc)
}

// Snippet renders a single registration the way setup guides show it, so
// the install command can echo what it just wrote.
func Snippet(name string, entry ServerEntry) (string, error) {
	doc := map[string]map[string]ServerEntry{
		serversKey: {name: entry},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snippet: %w", err)
	}
	return string(data), nil
}
