package mcp

import (
	"context"
	"fmt"
	"time"

	"kicadmcp/internal/config"
	"kicadmcp/internal/credentials"
	"kicadmcp/internal/history"
	"kicadmcp/internal/kicad"
	"kicadmcp/internal/logging"
	"kicadmcp/internal/snapshot"
	"kicadmcp/internal/translate"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	openai "github.com/sashabaranov/go-openai"
)

// serverVersion is reported to MCP clients during the handshake.
const serverVersion = "1.0.0"

// netlistResourceURI identifies the schematic netlist resource.
const netlistResourceURI = "kicad://netlist"

// Server bridges MCP clients to a running KiCad instance.
type Server struct {
	config     *config.Config
	logger     *logging.AppLogger
	kicad      *kicad.Client
	llm        *openai.Client
	history    *history.Store
	snapshots  *snapshot.Store
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

// NewServer creates a new MCP server instance. The LLM client, the local
// stores, and the protocol server are initialized by Start or StartHTTP.
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		kicad:  kicad.NewClient(cfg.KiCadAPIURL, cfg.RequestTimeout()),
	}
}

// Start runs the MCP server on stdio until the client disconnects.
func (s *Server) Start() error {
	s.initialize()
	s.logger.Info("Starting MCP server on stdio", "backend", s.kicad.BaseURL())
	return server.ServeStdio(s.mcpServer)
}

// StartHTTP runs the MCP server with the streamable HTTP transport.
func (s *Server) StartHTTP(addr string) error {
	s.initialize()
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)
	s.logger.Info("Starting MCP server on HTTP", "addr", addr, "backend", s.kicad.BaseURL())
	return s.httpServer.Start(addr)
}

// Stop shuts down the HTTP transport, if any, and releases the local stores.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down HTTP transport: %w", err)
		}
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			return fmt.Errorf("closing history store: %w", err)
		}
	}
	return nil
}

// initialize wires the LLM client, the local stores, and the protocol server.
// Store failures degrade to warnings: the bridge is still useful without an
// audit trail, and the host assistant launches us headless with no way to
// surface a setup error.
func (s *Server) initialize() {
	key, err := credentials.NewManager().ResolveAPIKey()
	if err != nil {
		s.logger.Warn("Could not resolve LLM API key, continuing without one", "error", err)
		key = ""
	}
	s.llm = translate.NewOpenAIClient(s.config.LLMBaseURL, key, s.config.LLMTimeout())

	if s.history == nil {
		hist, err := history.Open(history.DefaultPath())
		if err != nil {
			s.logger.Warn("Action history disabled", "error", err)
		} else {
			s.history = hist
		}
	}
	if s.snapshots == nil {
		snaps, err := snapshot.Open(snapshot.DefaultPath())
		if err != nil {
			s.logger.Warn("Netlist snapshots disabled", "error", err)
		} else {
			s.snapshots = snaps
		}
	}

	s.mcpServer = server.NewMCPServer(
		config.APP_NAME,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)
	s.setupTools()
	s.setupResources()
	s.setupPrompts()
}

func (s *Server) setupResources() {
	netlistResource := mcp.NewResource(
		netlistResourceURI,
		"Schematic netlist",
		mcp.WithResourceDescription("Netlist of the currently open schematic in KiCad XML export format"),
		mcp.WithMIMEType("application/xml"),
	)
	s.mcpServer.AddResource(netlistResource, s.handleNetlistResource)
}

func (s *Server) handleNetlistResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	xmlText, err := s.kicad.GetNetlist(ctx)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      netlistResourceURI,
			MIMEType: "application/xml",
			Text:     xmlText,
		},
	}, nil
}

func (s *Server) setupPrompts() {
	wireNetPrompt := mcp.NewPrompt("wire_net",
		mcp.WithPromptDescription("Label every pin of one net in the open schematic"),
		mcp.WithArgument("net_name",
			mcp.ArgumentDescription("Name of the net to label, for example GND or +3V3"),
			mcp.RequiredArgument(),
		),
	)
	s.mcpServer.AddPrompt(wireNetPrompt, s.handleWireNet)
}

func (s *Server) handleWireNet(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	netName := request.Params.Arguments["net_name"]
	if netName == "" {
		return nil, fmt.Errorf("net_name argument is required")
	}

	steps := fmt.Sprintf(`Label every pin of net %q in the currently open KiCad schematic.

1. Call get_netlist to fetch the current netlist XML.
2. Call build_connections with that netlist as net_list and net_name set to
   %q to extract the structured pin list.
3. Review the extraction against the netlist. Every designator and pin
   number must belong to the net; drop anything you cannot verify.
4. Call place_net_labels with the reviewed result.

Report which pins were labeled once the labels are placed.`, netName, netName)

	return mcp.NewGetPromptResult(
		fmt.Sprintf("Label net %s", netName),
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(steps)),
		},
	), nil
}
