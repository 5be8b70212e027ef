package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kicadmcp/internal/config"
)

const sampleNetlistXML = `<?xml version="1.0" encoding="UTF-8"?>
<export version="E">
  <design>
    <source>/home/ci/amp.kicad_sch</source>
    <tool>Eeschema 9.0.3</tool>
  </design>
  <components>
    <comp ref="R1"><value>10k</value></comp>
    <comp ref="C1"><value>100n</value></comp>
  </components>
  <nets>
    <net code="1" name="GND">
      <node ref="R1" pin="2"/>
      <node ref="C1" pin="2"/>
    </net>
    <net code="2" name="Net-(R1-Pad1)">
      <node ref="R1" pin="1"/>
    </net>
  </nets>
</export>
`

// startFakeBackend serves the sample netlist the way the KiCad agent
// plugin does and routes the command at it through the environment.
func startFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/netlist", func(w http.ResponseWriter, r *http.Request) {
		encoded := base64.StdEncoding.EncodeToString([]byte(sampleNetlistXML))
		json.NewEncoder(w).Encode(map[string]string{"net_list": encoded})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("KICAD_API_URL", server.URL)
	return server
}

func TestRunNetlistRaw(t *testing.T) {
	startFakeBackend(t)
	t.Cleanup(resetNetlistFlags)

	var buf bytes.Buffer
	if err := runNetlist(context.Background(), &buf); err != nil {
		t.Fatalf("runNetlist: %v", err)
	}
	if !strings.Contains(buf.String(), `<export version="E">`) {
		t.Errorf("raw output missing the netlist XML:\n%s", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("raw output should end with a newline")
	}
}

func TestRunNetlistSummary(t *testing.T) {
	startFakeBackend(t)
	netlistSummary = true
	t.Cleanup(resetNetlistFlags)

	var buf bytes.Buffer
	if err := runNetlist(context.Background(), &buf); err != nil {
		t.Fatalf("runNetlist: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"2 components, 2 nets", "GND", "2 pins", "Eeschema 9.0.3"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<export") {
		t.Errorf("summary should not include the raw XML:\n%s", out)
	}
}

func TestRunNetlistOut(t *testing.T) {
	startFakeBackend(t)
	dest := filepath.Join(t.TempDir(), "board.xml")
	netlistOut = dest
	t.Cleanup(resetNetlistFlags)

	var buf bytes.Buffer
	if err := runNetlist(context.Background(), &buf); err != nil {
		t.Fatalf("runNetlist: %v", err)
	}
	if !strings.Contains(buf.String(), "Netlist written to "+dest) {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "<export") {
		t.Errorf("--out should not also print the XML:\n%s", buf.String())
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading written netlist: %v", err)
	}
	if string(data) != sampleNetlistXML {
		t.Errorf("written netlist differs from the backend reply")
	}
}

func TestRunNetlistBackendDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("KICAD_API_URL", server.URL)
	t.Cleanup(resetNetlistFlags)

	if err := runNetlist(context.Background(), &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error when the backend is unreachable")
	}
}
