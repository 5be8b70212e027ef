package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kicadmcp/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "kicadmcp" // application name used for config and data directories

// EnvConfigPath overrides the config file location. Used by tests and by
// users who keep the config outside the standard directory.
const EnvConfigPath = "KICADMCP_CONFIG_PATH"

// Defaults mirror the backend contract: the KiCad agent plugin listens on
// localhost:9234 and requests are cut off after 30 seconds. The LLM side
// allows a much longer window since netlist extraction is slow.
const (
	DefaultKiCadAPIURL        = "http://localhost:9234"
	DefaultRequestTimeoutSecs = 30
	DefaultLLMModel           = "gemini-2.5-flash-nothink"
	DefaultLLMTimeoutSecs     = 180
)

// Config holds user configuration for kicadmcp.
type Config struct {
	// KiCadAPIURL is the base URL of the KiCad agent backend.
	KiCadAPIURL string `yaml:"kicad_api_url"`
	// RequestTimeoutSecs bounds every backend HTTP request.
	RequestTimeoutSecs int `yaml:"request_timeout_secs"`
	// LLMModel is the chat model used for netlist extraction.
	LLMModel string `yaml:"llm_model"`
	// LLMBaseURL points at an OpenAI-compatible endpoint. Empty means the
	// provider default.
	LLMBaseURL string `yaml:"llm_base_url,omitempty"`
	// LLMTimeoutSecs bounds a single translation round trip.
	LLMTimeoutSecs int `yaml:"llm_timeout_secs"`
	// AutoSnapshot commits the netlist to the snapshot store before every
	// destructive schematic action.
	AutoSnapshot bool   `yaml:"auto_snapshot"`
	Version      string `yaml:"version"`   // Track config version
	InitTime     int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the config file path for the current platform.
// The KICADMCP_CONFIG_PATH environment variable takes precedence.
func ConfigPath() (string, error) {
	if override := os.Getenv(EnvConfigPath); override != "" {
		logging.Debug("Config path overridden by environment", "path", override)
		return override, nil
	}

	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// DataDir returns the application data directory (history database and
// netlist snapshots live here), creating it if necessary.
func DataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, APP_NAME)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// Load loads the config from the standard location.
// If no config exists, it returns an error indicating first run is needed.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found, first-time setup required")
	}

	return LoadFrom(configPath)
}

// LoadOrDefault loads the config, falling back to defaults when none exists.
// The MCP server is usually launched headless by the host assistant, so it
// must come up without a setup step ever having run.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		logging.Debug("No config file, using defaults", "reason", err)
		def := DefaultConfig()
		def.applyEnvOverrides()
		return &def
	}
	return cfg
}

// LoadFrom loads config from a specific path.
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillZeroValues()
	cfg.applyEnvOverrides()
	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KiCadAPIURL:        DefaultKiCadAPIURL,
		RequestTimeoutSecs: DefaultRequestTimeoutSecs,
		LLMModel:           DefaultLLMModel,
		LLMTimeoutSecs:     DefaultLLMTimeoutSecs,
		AutoSnapshot:       true,
		Version:            "1.0",
		InitTime:           0, // Will be set during first save
	}
}

// fillZeroValues backfills fields absent from older config files so that
// loaded configs are always complete.
func (c *Config) fillZeroValues() {
	if c.KiCadAPIURL == "" {
		c.KiCadAPIURL = DefaultKiCadAPIURL
	}
	if c.RequestTimeoutSecs <= 0 {
		c.RequestTimeoutSecs = DefaultRequestTimeoutSecs
	}
	if c.LLMModel == "" {
		c.LLMModel = DefaultLLMModel
	}
	if c.LLMTimeoutSecs <= 0 {
		c.LLMTimeoutSecs = DefaultLLMTimeoutSecs
	}
}

// applyEnvOverrides lets the environment win over the file. The variable
// names are the ones OpenAI-compatible tooling already uses, so an
// existing environment keeps working.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KICAD_API_URL"); v != "" {
		c.KiCadAPIURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLMModel = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLMBaseURL = v
	}
}

// RequestTimeout returns the backend request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// LLMTimeout returns the translation timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSecs) * time.Second
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
