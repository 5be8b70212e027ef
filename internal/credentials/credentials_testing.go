package credentials

import (
	"fmt"
	"testing"

	"github.com/zalando/go-keyring"
)

// credentials_testing.go provides helpers for safely testing credential
// operations that interact with the OS keyring (macOS Keychain, Windows
// Credential Manager, Linux Secret Service).
//
// Testing credential management requires special handling because:
//  1. Tests exercise the ACTUAL OS keyring, not a mock, to cover real
//     keyring behavior
//  2. Tests must not disturb a real API key stored on the developer's machine
//  3. Tests must clean up after themselves to avoid polluting the keyring
//  4. Tests should skip gracefully in CI environments without a keyring
//
// Each test gets a unique keyring service name ("kicadmcp-test-<TestName>"),
// which isolates its credentials from production and from other tests
// running in parallel. Cleanup is registered automatically via t.Cleanup().

// TestManager wraps Manager with a unique per-test keyring service and
// automatic cleanup.
type TestManager struct {
	*Manager
	testService string
	t           *testing.T
}

// NewTestManager creates an isolated credential manager for testing.
//
// Usage:
//
//	tm := credentials.NewTestManager(t)
//	err := tm.StoreAPIKey("sk-test-0123456789abcdef")
//	// Or hand the embedded manager to code under test:
//	model.credManager = tm.Manager
//
// Cleanup happens automatically when the test completes (pass or fail).
func NewTestManager(t *testing.T) *TestManager {
	t.Helper()

	// Unique service name per test keeps parallel tests from colliding
	testService := fmt.Sprintf("kicadmcp-test-%s", t.Name())

	tm := &TestManager{
		Manager: &Manager{
			service: testService,
		},
		testService: testService,
		t:           t,
	}

	t.Cleanup(func() {
		tm.Cleanup()
	})

	return tm
}

// Cleanup removes all test credentials from the keyring. It is registered
// via t.Cleanup() but can also be called manually.
func (tm *TestManager) Cleanup() {
	tm.t.Helper()

	// The key might not exist; ignore errors
	_ = keyring.Delete(tm.testService, apiKeyName)
}

// SetupTestKeyring verifies the keyring is usable before a test runs and
// skips the test if it is not (common in CI containers without a secret
// service). Returns a cleanup function.
//
// Most tests do not need this; NewTestManager handles keyring errors
// gracefully on its own.
func SetupTestKeyring(t *testing.T) func() {
	t.Helper()

	testService := fmt.Sprintf("kicadmcp-keyring-test-%s", t.Name())
	testKey := "test_availability"
	testValue := "test_value"

	err := keyring.Set(testService, testKey, testValue)
	if err != nil {
		t.Skipf("Keyring not available, skipping test: %v", err)
	}

	return func() {
		_ = keyring.Delete(testService, testKey)
	}
}

// CreateTestKey generates a plausible API key for testing. The key passes
// format validation but is not a real credential.
//
// Parameters:
//   - prefix: Key prefix to use (e.g., "sk-", "gsk_"). Empty string uses "sk-"
func CreateTestKey(prefix string) string {
	if prefix == "" {
		prefix = "sk-"
	}
	return prefix + "test1234567890abcdefghijklmnopqrstuvwxyz"
}

// CreateInvalidKey generates a key that fails format validation (too short).
func CreateInvalidKey() string {
	return "sk-1"
}

// AssertKeyStored verifies that the expected API key is stored in the
// credential manager.
func AssertKeyStored(t *testing.T, tm *TestManager, expectedKey string) {
	t.Helper()

	key, err := tm.GetAPIKey()
	if err != nil {
		t.Fatalf("Expected API key to be stored, but got error: %v", err)
	}

	if key != expectedKey {
		t.Errorf("Expected API key %q, got %q", expectedKey, key)
	}
}

// AssertKeyNotStored verifies that no API key is stored in the credential
// manager.
func AssertKeyNotStored(t *testing.T, tm *TestManager) {
	t.Helper()

	if tm.HasAPIKey() {
		t.Error("Expected no API key to be stored, but HasAPIKey returned true")
	}

	_, err := tm.GetAPIKey()
	if err == nil {
		t.Error("Expected error when getting non-existent API key, but got nil")
	}
}
