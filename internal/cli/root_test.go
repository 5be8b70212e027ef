package cli

import "testing"

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "setup", "install", "uninstall", "netlist", "history", "snapshots", "docs"}

	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestVersionString(t *testing.T) {
	if versionString() == "" {
		t.Fatal("version string is empty")
	}
}
