package validation

import (
	"testing"
)

func TestValidateBackendURL(t *testing.T) {
	t.Run("valid http URL", func(t *testing.T) {
		if err := ValidateBackendURL("http://localhost:9234"); err != nil {
			t.Errorf("expected valid URL, got error: %v", err)
		}
	})

	t.Run("valid https URL", func(t *testing.T) {
		if err := ValidateBackendURL("https://kicad.lab.example:9234"); err != nil {
			t.Errorf("expected valid URL, got error: %v", err)
		}
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		if err := ValidateBackendURL("  http://localhost:9234  "); err != nil {
			t.Errorf("expected valid URL, got error: %v", err)
		}
	})

	t.Run("empty URL", func(t *testing.T) {
		err := ValidateBackendURL("")
		if err == nil || err.Error() != "backend URL is empty" {
			t.Errorf("expected 'backend URL is empty', got: %v", err)
		}
	})

	t.Run("wrong scheme", func(t *testing.T) {
		err := ValidateBackendURL("ftp://localhost:9234")
		if err == nil || err.Error() != "URL scheme must be http or https" {
			t.Errorf("expected scheme error, got: %v", err)
		}
	})

	t.Run("missing host", func(t *testing.T) {
		err := ValidateBackendURL("http://")
		if err == nil || err.Error() != "URL is missing a host" {
			t.Errorf("expected missing host error, got: %v", err)
		}
	})

	t.Run("bare host without scheme", func(t *testing.T) {
		err := ValidateBackendURL("localhost:9234")
		if err == nil {
			t.Error("expected error for URL without http scheme")
		}
	})
}

func TestValidateServerName(t *testing.T) {
	valid := []string{"kicad", "kicad-mcp", "kicad_mcp.v2", "KiCad2"}
	for _, name := range valid {
		if err := ValidateServerName(name); err != nil {
			t.Errorf("expected %q to be valid, got: %v", name, err)
		}
	}

	t.Run("empty name", func(t *testing.T) {
		err := ValidateServerName("")
		if err == nil || err.Error() != "server name is empty" {
			t.Errorf("expected 'server name is empty', got: %v", err)
		}
	})

	t.Run("embedded space", func(t *testing.T) {
		if err := ValidateServerName("kicad mcp"); err == nil {
			t.Error("expected error for name with space")
		}
	})

	t.Run("shell metacharacter", func(t *testing.T) {
		if err := ValidateServerName("kicad;rm"); err == nil {
			t.Error("expected error for name with semicolon")
		}
	})
}

func TestValidateModelName(t *testing.T) {
	valid := []string{"gemini-2.5-flash-nothink", "gpt-4o", "meta-llama/llama-3-70b", "qwen:7b"}
	for _, model := range valid {
		if err := ValidateModelName(model); err != nil {
			t.Errorf("expected %q to be valid, got: %v", model, err)
		}
	}

	t.Run("empty model", func(t *testing.T) {
		err := ValidateModelName("")
		if err == nil || err.Error() != "model name is empty" {
			t.Errorf("expected 'model name is empty', got: %v", err)
		}
	})

	t.Run("embedded whitespace", func(t *testing.T) {
		if err := ValidateModelName("gpt 4"); err == nil {
			t.Error("expected error for model with space")
		}
	})
}

func TestValidateEnvPair(t *testing.T) {
	valid := []string{"KICAD_API_URL=http://localhost:9234", "DEBUG=1", "_PRIVATE=x", "EMPTY_VALUE="}
	for _, pair := range valid {
		if err := ValidateEnvPair(pair); err != nil {
			t.Errorf("expected %q to be valid, got: %v", pair, err)
		}
	}

	t.Run("missing equals", func(t *testing.T) {
		err := ValidateEnvPair("JUSTAKEY")
		if err == nil || err.Error() != "environment variable must be in KEY=VALUE form" {
			t.Errorf("expected KEY=VALUE error, got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		err := ValidateEnvPair("=value")
		if err == nil || err.Error() != "environment variable name is empty" {
			t.Errorf("expected empty name error, got: %v", err)
		}
	})

	t.Run("key starts with digit", func(t *testing.T) {
		if err := ValidateEnvPair("1KEY=value"); err == nil {
			t.Error("expected error for name starting with digit")
		}
	})

	t.Run("key with dash", func(t *testing.T) {
		if err := ValidateEnvPair("MY-KEY=value"); err == nil {
			t.Error("expected error for name containing dash")
		}
	})
}
