package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateBackendURL checks that a KiCad backend URL is usable for HTTP
// requests. Returns nil if valid, or an error describing the problem.
func ValidateBackendURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("backend URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("cannot parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("URL is missing a host")
	}
	return nil
}

// ValidateServerName checks a server name destined for the assistant host
// configuration. Names become JSON object keys and command identifiers, so
// only letters, digits, dots, dashes and underscores are allowed.
func ValidateServerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("server name is empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return fmt.Errorf("server name contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateModelName checks an LLM model identifier. Providers use slashes
// and colons in model names, so only emptiness and whitespace are rejected.
func ValidateModelName(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model name is empty")
	}
	if strings.ContainsAny(model, " \t\n") {
		return fmt.Errorf("model name must not contain whitespace")
	}
	return nil
}

// ValidateEnvPair checks a KEY=VALUE environment variable assignment as
// accepted on the command line.
func ValidateEnvPair(pair string) error {
	key, _, found := strings.Cut(pair, "=")
	if !found {
		return fmt.Errorf("environment variable must be in KEY=VALUE form")
	}
	if key == "" {
		return fmt.Errorf("environment variable name is empty")
	}
	for i, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return fmt.Errorf("environment variable name must not start with a digit")
			}
		default:
			return fmt.Errorf("environment variable name contains invalid character %q", r)
		}
	}
	return nil
}
