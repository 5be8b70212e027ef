// Package setupmenu provides the interactive setup wizard for kicadmcp.
//
// The wizard is a multi-step Bubble Tea state machine that collects the
// KiCad backend URL, the model used for netlist extraction, and an
// optional LLM API key, then offers to register the server with Claude
// Desktop.
//
// The flow:
//   - Welcome: overview of what will be configured
//   - Backend URL: address of the KiCad agent plugin
//   - Model: model identifier for the build_connections tool
//   - API Key: optional, password-masked, destined for the OS keyring
//   - Host Install: choose whether to register with Claude Desktop
//   - Confirmation: review everything
//   - Complete/Cancelled: final state
//
// Nothing is persisted before the confirmation step: the config file,
// the keyring entry, and the host registration are written together once
// the user confirms. Escape steps back, Ctrl+C cancels from anywhere.
package setupmenu

import (
	"fmt"
	"kicadmcp/internal/config"
	"kicadmcp/internal/credentials"
	"kicadmcp/internal/hostcfg"
	"kicadmcp/internal/logging"
	"kicadmcp/internal/tui/components"
	"kicadmcp/internal/tui/helpers"
	"kicadmcp/internal/tui/styles"
	"kicadmcp/internal/validation"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SetupState represents the current state of the setup process
type SetupState int

const (
	SetupStateWelcome      SetupState = iota // Initial welcome screen
	SetupStateBackendURL                     // KiCad agent plugin URL input
	SetupStateModel                          // Extraction model identifier input
	SetupStateAPIKey                         // LLM API key input (password-masked)
	SetupStateHostInstall                    // Claude Desktop registration choice
	SetupStateConfirmation                   // Review and confirm configuration
	SetupStateComplete                       // Setup successfully completed
	SetupStateCancelled                      // Setup was cancelled by user
)

// Custom messages for internal state transitions
type (
	setupErrorMsg    struct{ err error }
	setupCompleteMsg struct{}
)

// SetupModel manages the setup wizard state and user interactions. It
// implements the tea.Model interface for the Bubble Tea framework.
//
// The model uses pointer receivers throughout so state changes propagate
// across the event loop.
type SetupModel struct {
	// Current state in the wizard flow
	state SetupState

	// Collected answers, written only at final confirmation
	BackendURL  string // KiCad agent plugin URL
	Model       string // Model identifier for netlist extraction
	APIKey      string // LLM API key (in memory until confirmation)
	InstallHost bool   // Register with Claude Desktop

	// Selected index in the host install menu (0=register, 1=skip)
	hostInstallIndex int

	// Flow control
	Cancelled bool               // True if user cancelled setup
	logger    *logging.AppLogger // Structured logging

	// Pre-filled answers: the loaded config when one exists, defaults
	// otherwise
	defaults config.Config

	// Credential management
	credManager *credentials.Manager // Stores the API key in the OS keyring

	// UI components
	textInput textinput.Model        // Reused text input for all input screens
	layout    components.LayoutModel // Centralized layout and styling
}

// NewSetupModel creates a new setup wizard model with initial state and
// UI components. When the UI context carries a loaded config, its values
// pre-fill the inputs so re-running setup edits rather than resets.
func NewSetupModel(ctx helpers.UIContext) *SetupModel {
	defaults := config.DefaultConfig()
	if ctx.Config != nil {
		defaults = *ctx.Config
	}

	ti := textinput.New()
	ti.Placeholder = config.DefaultKiCadAPIURL
	ti.Focus()
	ti.CharLimit = 256

	layout := components.NewLayout(components.LayoutConfig{
		MarginX:  2,
		MarginY:  1,
		MaxWidth: 100,
	})

	if ctx.HasValidDimensions() {
		windowMsg := tea.WindowSizeMsg{Width: ctx.Width, Height: ctx.Height}
		layout, _ = layout.Update(windowMsg)
		ti.Width = layout.InputWidth()
	}

	return &SetupModel{
		state:       SetupStateWelcome,
		defaults:    defaults,
		textInput:   ti,
		layout:      layout,
		logger:      ctx.Logger,
		credManager: credentials.NewManager(),
	}
}

// Init initializes the setup model when it's first started.
func (m *SetupModel) Init() tea.Cmd {
	m.logger.Info("Setup wizard initialized")
	return textinput.Blink
}

// Update handles all incoming messages and delegates to the appropriate
// state-specific handlers.
func (m *SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.logger.LogMessage(msg)

	m.layout, _ = m.layout.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout, _ = m.layout.Update(msg)
		m.textInput.Width = m.layout.InputWidth()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case setupErrorMsg:
		m.layout = m.layout.SetError(msg.err)
		return m, nil

	case setupCompleteMsg:
		m.state = SetupStateComplete
		m.layout = m.layout.ClearError()
		return m, nil
	}

	return m, cmd
}

// updateTextInput updates the text input component and clears any
// displayed errors.
func (m *SetupModel) updateTextInput(msg tea.Msg) (*SetupModel, tea.Cmd) {
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.layout.GetError() != nil {
		m.layout = m.layout.ClearError()
	}
	return m, cmd
}

// handleKeyPress routes key press events to the appropriate
// state-specific handler. Only Ctrl+C quits globally: backend URLs and
// model names can contain the letter q, so it must stay typable in the
// input screens.
func (m *SetupModel) handleKeyPress(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	// Terminal states exit on any key, Ctrl+C included
	if m.state == SetupStateComplete || m.state == SetupStateCancelled {
		return m, tea.Quit
	}
	if msg.String() == "ctrl+c" {
		return m.handleQuit()
	}

	switch m.state {
	case SetupStateWelcome:
		return m.handleWelcomeKeys(msg)
	case SetupStateBackendURL:
		return m.handleBackendURLKeys(msg)
	case SetupStateModel:
		return m.handleModelKeys(msg)
	case SetupStateAPIKey:
		return m.handleAPIKeyKeys(msg)
	case SetupStateHostInstall:
		return m.handleHostInstallKeys(msg)
	case SetupStateConfirmation:
		return m.handleConfirmationKeys(msg)
	default:
		return m, tea.Quit
	}
}

// State-specific key handlers

// handleWelcomeKeys handles input on the welcome screen.
// Enter/Space: proceed to backend URL input
// Esc/q: quit setup
func (m *SetupModel) handleWelcomeKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter", " ":
		return m, m.enterBackendURLState()
	case "esc", "q":
		return m.handleQuit()
	}
	return m, nil
}

// handleBackendURLKeys handles input on the backend URL screen.
// Enter: validate URL and proceed to model input
// Esc: go back to welcome
// Other keys: update text input
func (m *SetupModel) handleBackendURLKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.textInput.Value())
		m.logger.Debug("Validating backend URL", "url", input)

		if err := validation.ValidateBackendURL(input); err != nil {
			m.logger.Warn("Backend URL validation failed", "error", err)
			return m, func() tea.Msg { return setupErrorMsg{err} }
		}

		m.BackendURL = input
		m.logger.LogStateTransition("SetupModel", "SetupStateBackendURL", "SetupStateModel")
		return m, m.enterModelState()

	case "esc":
		m.state = SetupStateWelcome
		m.layout = m.layout.ClearError()
		return m, nil
	default:
		return m.updateTextInput(msg)
	}
}

// handleModelKeys handles input on the model identifier screen.
// Enter: validate model name and proceed to API key input
// Esc: go back to backend URL input
// Other keys: update text input
func (m *SetupModel) handleModelKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.textInput.Value())
		m.logger.Debug("Validating model identifier", "model", input)

		if err := validation.ValidateModelName(input); err != nil {
			m.logger.Warn("Model identifier validation failed", "error", err)
			return m, func() tea.Msg { return setupErrorMsg{err} }
		}

		m.Model = input
		m.logger.LogStateTransition("SetupModel", "SetupStateModel", "SetupStateAPIKey")
		return m, m.enterAPIKeyState()

	case "esc":
		return m, m.enterBackendURLState()
	default:
		return m.updateTextInput(msg)
	}
}

// handleAPIKeyKeys handles input on the API key screen. The input is in
// EchoPassword mode, so the key displays as asterisks.
// Enter: validate the key (empty skips) and proceed to host install
// Esc: go back to model input
// Other keys: update text input
func (m *SetupModel) handleAPIKeyKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.textInput.Value())

		// Empty means no key: build_connections then needs
		// OPENAI_API_KEY at runtime
		if input != "" {
			if err := m.credManager.ValidateAPIKey(input); err != nil {
				m.logger.Warn("API key validation failed", "error", err)
				return m, func() tea.Msg { return setupErrorMsg{err} }
			}
		}

		m.APIKey = input
		m.state = SetupStateHostInstall
		m.hostInstallIndex = 0
		m.layout = m.layout.ClearError()
		m.logger.LogStateTransition("SetupModel", "SetupStateAPIKey", "SetupStateHostInstall")
		return m, nil

	case "esc":
		return m, m.enterModelState()
	default:
		return m.updateTextInput(msg)
	}
}

// handleHostInstallKeys handles input on the Claude Desktop registration
// screen.
// Up/Down/j/k: navigate between register and skip
// Enter/Space: select and proceed to confirmation
// Esc: go back to API key input
// q: cancel setup
func (m *SetupModel) handleHostInstallKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.hostInstallIndex > 0 {
			m.hostInstallIndex--
		}
	case "down", "j":
		if m.hostInstallIndex < 1 {
			m.hostInstallIndex++
		}
	case "enter", " ":
		m.InstallHost = m.hostInstallIndex == 0
		m.state = SetupStateConfirmation
		m.layout = m.layout.ClearError()
		m.logger.LogStateTransition("SetupModel", "SetupStateHostInstall", "SetupStateConfirmation")
	case "esc":
		return m, m.enterAPIKeyState()
	case "q":
		return m.handleQuit()
	}
	return m, nil
}

// handleConfirmationKeys handles input on the confirmation screen.
// y/Y/Enter: write config, keyring entry, and host registration
// n/N/Esc: go back to the host install choice
// q: cancel setup
func (m *SetupModel) handleConfirmationKeys(msg tea.KeyMsg) (*SetupModel, tea.Cmd) {
	switch msg.String() {
	case "n", "N", "esc":
		m.state = SetupStateHostInstall
		m.layout = m.layout.ClearError()
		return m, nil
	case "y", "Y", "enter":
		m.logger.Info("Configuration confirmed")
		return m, m.applySetup()
	case "q":
		return m.handleQuit()
	}
	return m, nil
}

// applySetup returns a Bubble Tea command that persists the collected
// configuration. It runs asynchronously to avoid blocking the UI.
func (m *SetupModel) applySetup() tea.Cmd {
	return func() tea.Msg {
		m.logger.Info("Writing configuration", "backend_url", m.BackendURL, "model", m.Model)
		if err := m.performSetup(); err != nil {
			m.logger.Error("Setup failed", "error", err)
			return setupErrorMsg{err}
		}
		m.logger.Info("Setup finished")
		return setupCompleteMsg{}
	}
}

// handleQuit marks the setup as cancelled.
func (m *SetupModel) handleQuit() (*SetupModel, tea.Cmd) {
	m.logger.Warn("Setup cancelled by user")
	m.Cancelled = true
	m.state = SetupStateCancelled
	return m, nil
}

// performSetup persists everything the wizard collected: the config
// file, the API key in the OS keyring, and the Claude Desktop
// registration when requested.
func (m *SetupModel) performSetup() error {
	cfg := m.defaults
	cfg.KiCadAPIURL = m.BackendURL
	cfg.LLMModel = m.Model

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}

	if m.APIKey != "" {
		m.logger.Debug("Storing API key in keyring")
		if err := m.credManager.StoreAPIKey(m.APIKey); err != nil {
			return fmt.Errorf("storing API key: %w", err)
		}
	}

	if m.InstallHost {
		if err := m.installHostEntry(); err != nil {
			return fmt.Errorf("registering with Claude Desktop: %w", err)
		}
	}

	return nil
}

// installHostEntry registers this binary's serve command with the host
// application.
func (m *SetupModel) installHostEntry() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	path, err := hostcfg.DefaultPath()
	if err != nil {
		return err
	}
	m.logger.Debug("Registering server with host", "path", path)
	return hostcfg.Install(path, hostcfg.DefaultServerName, hostcfg.NewServeEntry(exe, nil))
}

// View renders the appropriate screen based on the current setup state.
func (m *SetupModel) View() string {
	switch m.state {
	case SetupStateWelcome:
		return m.viewWelcome()
	case SetupStateBackendURL:
		return m.viewBackendURL()
	case SetupStateModel:
		return m.viewModel()
	case SetupStateAPIKey:
		return m.viewAPIKey()
	case SetupStateHostInstall:
		return m.viewHostInstall()
	case SetupStateConfirmation:
		return m.viewConfirmation()
	case SetupStateComplete:
		return m.viewComplete()
	case SetupStateCancelled:
		return m.viewCancelled()
	}
	return ""
}

// View rendering functions

// viewWelcome renders the welcome/introduction screen.
func (m *SetupModel) viewWelcome() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔧 Welcome to kicadmcp!",
		Subtitle: "Let's connect your AI assistant to KiCad.",
		HelpText: "Press Enter to continue, or Esc to cancel",
	})

	content := `kicadmcp is the MCP server that lets AI assistants read and edit KiCad schematics and boards.

We'll configure:
• The URL of the KiCad agent plugin (the HTTP backend)
• The model used by build_connections for netlist extraction
• An optional API key for that model, stored in your OS keyring
• Registration with Claude Desktop, so the assistant can launch the server

Nothing is written until you confirm at the end.`

	return m.layout.Render(content)
}

// viewBackendURL renders the backend URL input screen.
func (m *SetupModel) viewBackendURL() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "📡 KiCad Backend URL",
		Subtitle: "Where is the KiCad agent plugin listening?",
		HelpText: "Press Enter to continue • Esc to go back",
	})

	explanation := `kicadmcp talks to KiCad through the agent plugin's HTTP interface. The plugin listens on ` + config.DefaultKiCadAPIURL + ` unless you changed it.

The URL must be reachable from this machine whenever the assistant works on a schematic.`

	prompt := "Backend URL:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewModel renders the extraction model input screen.
func (m *SetupModel) viewModel() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🧠 Netlist Extraction Model",
		Subtitle: "Which model should build_connections use?",
		HelpText: "Press Enter to continue • Esc to go back",
	})

	explanation := `The build_connections tool asks a language model to pull one net's connections out of a textual netlist. Any model identifier your OpenAI-compatible provider accepts works here.

Examples:
• ` + config.DefaultLLMModel + `
• gpt-4o-mini
• qwen2.5-coder:14b (local gateways)`

	prompt := "Model identifier:"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewAPIKey renders the API key input screen. The text input is in
// EchoPassword mode, displaying asterisks instead of the actual key.
func (m *SetupModel) viewAPIKey() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🔑 LLM API Key",
		Subtitle: "Enter the API key for your model provider (optional)",
		HelpText: "Press Enter to continue • Esc to go back • Leave empty to skip",
	})

	explanation := `The key authenticates build_connections against the model provider. Everything else works without one.

🔒 Security Note:
• The key is stored in your OS keyring (Keychain/Credential Manager)
• Never stored in plain text files or configuration
• The OPENAI_API_KEY environment variable overrides it at runtime

Leave this empty to skip: you can set OPENAI_API_KEY or re-run setup later.`

	prompt := "API key (optional):"
	input := styles.InputStyle.Render(m.textInput.View())

	content := fmt.Sprintf("%s\n\n%s\n%s", explanation, prompt, input)

	return m.layout.Render(content)
}

// viewHostInstall renders the Claude Desktop registration choice with
// two options. Visual indicators show the selected option.
func (m *SetupModel) viewHostInstall() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🖥  Claude Desktop",
		Subtitle: "Should the server be registered with Claude Desktop?",
		HelpText: "Use ↑/↓ to select • Press Enter to continue • Esc to go back",
	})

	content := `Registration adds kicadmcp to Claude Desktop's configuration so the assistant can launch the server on demand.

`

	registerIndicator := "  "
	if m.hostInstallIndex == 0 {
		registerIndicator = "▶ "
	}
	content += fmt.Sprintf("%s✅ Register with Claude Desktop\n", registerIndicator)
	content += "     Adds a \"" + hostcfg.DefaultServerName + "\" entry to claude_desktop_config.json\n"
	content += "     Restart Claude Desktop afterwards to pick it up\n\n"

	skipIndicator := "  "
	if m.hostInstallIndex == 1 {
		skipIndicator = "▶ "
	}
	content += fmt.Sprintf("%s⏭  Skip for now\n", skipIndicator)
	content += "     You can register later with: kicadmcp install\n"
	content += "     Other MCP hosts can use the snippet that command prints"

	return m.layout.Render(content)
}

// viewConfirmation renders the configuration review screen.
func (m *SetupModel) viewConfirmation() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "✅ Confirm Configuration",
		Subtitle: "Please review your settings:",
		HelpText: "Press y to confirm • n to go back • q to cancel",
	})

	keyLine := "(none - set OPENAI_API_KEY to use build_connections)"
	if m.APIKey != "" {
		keyLine = "[Stored in OS keyring on confirm]"
	}
	hostLine := "Not registered (run kicadmcp install later)"
	if m.InstallHost {
		hostLine = fmt.Sprintf("Registered as %q", hostcfg.DefaultServerName)
	}

	settings := fmt.Sprintf(`Backend URL: %s
Extraction model: %s
API key: %s
Claude Desktop: %s`, m.BackendURL, m.Model, keyLine, hostLine)

	prompt := "Is this correct? (Y/n)"
	content := fmt.Sprintf("%s\n\n%s", settings, prompt)

	return m.layout.Render(content)
}

// viewComplete renders the success screen after everything is written.
func (m *SetupModel) viewComplete() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "🎉 Setup Complete!",
		Subtitle: "kicadmcp has been configured successfully.",
		HelpText: "Press any key to exit",
	})

	keyLine := "No API key stored: set OPENAI_API_KEY before using build_connections."
	if m.APIKey != "" {
		keyLine = "🔒 Your API key has been securely stored in the OS keyring."
	}
	hostLine := "Register with Claude Desktop at any time with: kicadmcp install"
	if m.InstallHost {
		hostLine = "Claude Desktop now launches the server on demand. Restart it to pick up the change."
	}

	content := fmt.Sprintf(`%s

Backend URL: %s
Extraction model: %s

%s
%s

Try it: open a schematic in KiCad and run  kicadmcp netlist --summary`,
		styles.SuccessStyle.Render("Configuration saved successfully!"),
		m.BackendURL, m.Model, keyLine, hostLine)

	return m.layout.Render(content)
}

// viewCancelled renders the cancellation screen when setup is aborted.
func (m *SetupModel) viewCancelled() string {
	m.layout = m.layout.SetConfig(components.LayoutConfig{
		Title:    "❌ Setup Cancelled",
		Subtitle: "kicadmcp will not be configured.",
		HelpText: "Press any key to exit",
	})

	content := `Setup was cancelled and nothing was written. Run kicadmcp setup again at any time.`

	return m.layout.Render(content)
}

// Helper functions

// resetTextInputForState resets the text input and transitions to a new
// state. This reduces duplication across state transition logic.
func (m *SetupModel) resetTextInputForState(state SetupState, value, placeholder string, echoMode textinput.EchoMode) tea.Cmd {
	m.state = state
	m.textInput.Reset()
	m.textInput.SetValue(value)
	m.textInput.Placeholder = placeholder
	m.textInput.EchoMode = echoMode
	m.textInput.Focus()
	m.layout = m.layout.ClearError()
	return textinput.Blink
}

// enterBackendURLState transitions to the backend URL input, pre-filled
// with the previous answer or the configured default.
func (m *SetupModel) enterBackendURLState() tea.Cmd {
	value := m.BackendURL
	if value == "" {
		value = m.defaults.KiCadAPIURL
	}
	return m.resetTextInputForState(SetupStateBackendURL, value, config.DefaultKiCadAPIURL, textinput.EchoNormal)
}

// enterModelState transitions to the model input, pre-filled with the
// previous answer or the configured default.
func (m *SetupModel) enterModelState() tea.Cmd {
	value := m.Model
	if value == "" {
		value = m.defaults.LLMModel
	}
	return m.resetTextInputForState(SetupStateModel, value, config.DefaultLLMModel, textinput.EchoNormal)
}

// enterAPIKeyState transitions to the masked API key input. The field
// always starts empty: a previously entered key is never echoed back.
func (m *SetupModel) enterAPIKeyState() tea.Cmd {
	return m.resetTextInputForState(SetupStateAPIKey, "", "sk-... (leave empty to skip)", textinput.EchoPassword)
}
