package cli

import (
	"testing"

	"github.com/adrg/xdg"

	"kicadmcp/internal/hostcfg"
)

// redirectDataHome points xdg.DataHome at a temp directory so commands
// that touch the history and snapshot stores never see real user data.
// Cleanups run last-in first-out, so registering the reload before the
// env override re-resolves the xdg paths after the env is restored.
func redirectDataHome(t *testing.T) {
	t.Helper()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
}

// Commands read their flags from package-level vars, so every test that
// sets one registers the matching reset.

func resetInstallFlags() {
	installName = hostcfg.DefaultServerName
	installPath = ""
	installEnv = nil
}

func resetUninstallFlags() {
	uninstallName = hostcfg.DefaultServerName
	uninstallPath = ""
}

func resetNetlistFlags() {
	netlistSummary = false
	netlistOut = ""
}

func resetHistoryFlags() {
	historyLimit = 20
}

func resetSnapshotsFlags() {
	snapshotsLimit = 20
	snapshotsShow = ""
}
