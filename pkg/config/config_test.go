package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `environment: test
finnhub:
  api_key: "%s"
  symbols:
    - AAPL
    - MSFT
`

func writeConfig(t *testing.T, apiKey string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Replace(sampleYAML, "%s", apiKey, 1)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	path := writeConfig(t, "")

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty api_key")
	}
}

func TestLoadWithEnvSuppliesAPIKey(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("FINNHUB_API_KEY", "from-env")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.Finnhub.APIKey != "from-env" {
		t.Fatalf("api key = %q, want from-env", c.Finnhub.APIKey)
	}
}

func TestLoadWithEnvOverridesSymbols(t *testing.T) {
	path := writeConfig(t, "yaml-key")
	t.Setenv("SYMBOLS", "NVDA,TSLA")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if len(c.Finnhub.Symbols) != 2 || c.Finnhub.Symbols[0] != "NVDA" {
		t.Fatalf("symbols = %v, want [NVDA TSLA]", c.Finnhub.Symbols)
	}
}
