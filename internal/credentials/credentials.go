package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for the OS credential store
	credentialService = "kicadmcp"
	// Key under which the LLM API key is stored
	apiKeyName = "openai-api-key"
	// EnvAPIKey overrides the credential store when set
	EnvAPIKey = "OPENAI_API_KEY"
)

// Manager handles secure storage and retrieval of the API key used by the
// netlist translation backend. The key never touches the config file: it
// lives in the OS credential store (macOS Keychain, Windows Credential
// Manager, Linux Secret Service) or in the OPENAI_API_KEY environment
// variable.
type Manager struct {
	service string
}

// NewManager creates a new credential manager instance
func NewManager() *Manager {
	return &Manager{
		service: credentialService,
	}
}

// ValidateAPIKey checks that a key is plausibly usable before it is stored.
// OpenAI-compatible providers issue keys in many shapes (sk-*, gsk_*, plain
// hex for local gateways), so validation stays deliberately loose.
//
// Returns:
//   - error: Validation error if the key is empty or malformed
func (m *Manager) ValidateAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	if err := validateKeyFormat(key); err != nil {
		return fmt.Errorf("invalid API key format: %w", err)
	}
	return nil
}

// StoreAPIKey securely stores the LLM API key in the OS credential store.
// The key is validated before storage.
//
// Parameters:
//   - key: API key to store
//
// Returns:
//   - error: Storage errors or validation failures
func (m *Manager) StoreAPIKey(key string) error {
	if err := m.ValidateAPIKey(key); err != nil {
		return err
	}

	if err := keyring.Set(m.service, apiKeyName, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("failed to store API key in credential store: %w", err)
	}

	return nil
}

// GetAPIKey retrieves the stored LLM API key from the OS credential store.
//
// Returns:
//   - string: The stored API key
//   - error: Retrieval errors or if no key is stored
func (m *Manager) GetAPIKey() (string, error) {
	key, err := keyring.Get(m.service, apiKeyName)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("no API key found - set OPENAI_API_KEY or run setup to store one")
		}
		return "", fmt.Errorf("failed to retrieve API key from credential store: %w", err)
	}

	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("stored API key is empty - run setup to store a new one")
	}

	return key, nil
}

// DeleteAPIKey removes the stored API key from the OS credential store.
// Returns nil if no key exists.
func (m *Manager) DeleteAPIKey() error {
	err := keyring.Delete(m.service, apiKeyName)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete API key from credential store: %w", err)
	}
	return nil
}

// HasAPIKey checks if an API key is stored without retrieving it.
// This is useful for setup flow decisions.
func (m *Manager) HasAPIKey() bool {
	_, err := keyring.Get(m.service, apiKeyName)
	return err == nil
}

// UpdateAPIKey replaces the existing stored key with a new one.
//
// Parameters:
//   - newKey: New API key to store
//
// Returns:
//   - error: Update errors or validation failures
func (m *Manager) UpdateAPIKey(newKey string) error {
	if err := m.StoreAPIKey(newKey); err != nil {
		return fmt.Errorf("failed to update API key: %w", err)
	}
	return nil
}

// ResolveAPIKey returns the API key the translation backend should use.
// Resolution order: the OPENAI_API_KEY environment variable, then the OS
// credential store. An empty result with a nil error means no key is
// configured anywhere; local OpenAI-compatible gateways usually accept
// unauthenticated requests, so callers may treat that as anonymous access.
//
// Returns:
//   - string: The resolved API key, or "" when none is configured
//   - error: Credential store failures other than a missing key
func (m *Manager) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}

	key, err := keyring.Get(m.service, apiKeyName)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read API key from credential store: %w", err)
	}

	return strings.TrimSpace(key), nil
}

// validateKeyFormat applies loose sanity checks to an API key. Provider
// prefixes are not enforced because the backend URL is configurable and
// self-hosted gateways issue arbitrary keys.
//
// Parameters:
//   - key: Key string to validate
//
// Returns:
//   - error: Validation error if the key format is invalid
func validateKeyFormat(key string) error {
	key = strings.TrimSpace(key)

	// Shortest real-world keys observed are 8 characters (local gateways)
	if len(key) < 8 {
		return fmt.Errorf("API key too short (minimum 8 characters)")
	}

	// Embedded whitespace almost always means a paste error
	if strings.ContainsAny(key, " \t\n\r") {
		return fmt.Errorf("API key must not contain whitespace")
	}

	return nil
}

// StoreStatus returns information about credential store availability and
// any potential issues. This is useful for troubleshooting and setup
// validation.
//
// Returns:
//   - map[string]any: Status information including availability and any errors
func (m *Manager) StoreStatus() map[string]any {
	status := make(map[string]any)

	// Probe the credential store with a throwaway key
	testKey := "kicadmcp_probe"
	testValue := "probe_value"

	setErr := keyring.Set(m.service, testKey, testValue)
	if setErr != nil {
		status["available"] = false
		status["error"] = setErr.Error()
		return status
	}

	retrievedValue, getErr := keyring.Get(m.service, testKey)
	if getErr != nil {
		status["available"] = false
		status["error"] = getErr.Error()
		keyring.Delete(m.service, testKey)
		return status
	}

	if retrievedValue != testValue {
		status["available"] = false
		status["error"] = "credential store corrupted - values don't match"
		keyring.Delete(m.service, testKey)
		return status
	}

	deleteErr := keyring.Delete(m.service, testKey)
	if deleteErr != nil {
		status["available"] = true
		status["warning"] = "credential store works but cleanup failed: " + deleteErr.Error()
		return status
	}

	status["available"] = true
	status["error"] = nil
	return status
}
