package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFeedConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedConfig(t, tempDir, "bundesliga", `
url: "https://scores.example.com/bundesliga.xml"

settings:
  enabled: true
  poll_interval: 120
  timeout: 15
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 feedConfig, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("bundesliga")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Name != "bundesliga" {
		t.Errorf("Expected name 'bundesliga', got '%s'", feedConfig.Name)
	}
	if feedConfig.URL != "https://scores.example.com/bundesliga.xml" {
		t.Errorf("Unexpected URL '%s'", feedConfig.URL)
	}
	if feedConfig.Settings.PollInterval != 120 {
		t.Errorf("Expected poll interval 120, got %d", feedConfig.Settings.PollInterval)
	}
	if feedConfig.Settings.Timeout != 15 {
		t.Errorf("Expected timeout 15, got %d", feedConfig.Settings.Timeout)
	}
}

func TestConfigCacheEnabledByDefault(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedConfig(t, tempDir, "minimal", `url: "https://scores.example.com/feed.xml"`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	feedConfig, err := configCache.GetConfig("minimal")
	if err != nil {
		t.Fatal(err)
	}

	if !feedConfig.Settings.Enabled {
		t.Error("Expected feed to be enabled by default")
	}
	if feedConfig.Settings.PollInterval != 0 {
		t.Errorf("Expected poll interval to default to 0, got %d", feedConfig.Settings.PollInterval)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"missing url", "settings:\n  enabled: true\n", "feed URL is required"},
		{"negative interval", "url: \"https://x\"\nsettings:\n  poll_interval: -5\n", "poll interval must be non-negative"},
		{"broken yaml", "url: [unterminated", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeFeedConfig(t, tempDir, "broken", tt.content)

			err := NewConfigCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected error for invalid config")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error to contain '%s', got: %v", tt.errPart, err)
			}
		})
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected missing directory to be ignored, got: %v", err)
	}
	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheEnabledConfigsOrdered(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedConfig(t, tempDir, "c-serie-a", `url: "https://scores.example.com/c.xml"`)
	writeFeedConfig(t, tempDir, "a-bundesliga", `url: "https://scores.example.com/a.xml"`)
	writeFeedConfig(t, tempDir, "b-disabled", "url: \"https://scores.example.com/b.xml\"\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if err := configCache.Add(&Config{Name: "b-flag", URL: "https://scores.example.com/flag.xml", Settings: ConfigSettings{Enabled: true}}); err != nil {
		t.Fatal(err)
	}

	enabled := configCache.GetEnabledConfigs()
	names := make([]string, 0, len(enabled))
	for _, c := range enabled {
		names = append(names, c.Name)
	}

	expected := "a-bundesliga,b-flag,c-serie-a"
	if strings.Join(names, ",") != expected {
		t.Errorf("Expected order %s, got %s", expected, strings.Join(names, ","))
	}
}

func TestConfigCacheAddRejectsInvalid(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Add(&Config{Name: "no-url"}); err == nil {
		t.Error("Expected error for feed without URL")
	}
}
