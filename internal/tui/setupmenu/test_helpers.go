package setupmenu

import (
	"os"
	"path/filepath"
	"testing"

	"kicadmcp/internal/config"
)

// SetTestConfigPath points KICADMCP_CONFIG_PATH at a file under a
// per-test temp directory so wizard runs never touch the real config.
// Returns the config file path the wizard will write to.
func SetTestConfigPath(t *testing.T) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigPath, configPath)
	return configPath
}

// FileExists checks if a file or directory exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
