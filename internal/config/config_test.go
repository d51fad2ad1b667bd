package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Validate_Success(t *testing.T) {
	cfg := &Config{
		Bot: BotConfig{
			Token:       "123:abc",
			DeveloperID: 42,
			Private:     true,
		},
		Lookup: LookupConfig{
			BaseURL: "https://api.vxtwitter.com",
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() should pass, got %v", err)
	}
}

func TestConfig_Validate_MissingToken(t *testing.T) {
	cfg := &Config{
		Lookup:  LookupConfig{BaseURL: "https://api.vxtwitter.com"},
		Storage: StorageConfig{DataDir: "data"},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for missing BOT_TOKEN")
	}
}

func TestConfig_Validate_PrivateWithoutDeveloper(t *testing.T) {
	cfg := &Config{
		Bot: BotConfig{
			Token:   "123:abc",
			Private: true,
		},
		Lookup:  LookupConfig{BaseURL: "https://api.vxtwitter.com"},
		Storage: StorageConfig{DataDir: "data"},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail when private mode has no DEVELOPER_ID")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("IS_BOT_PRIVATE", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Lookup.BaseURL != "https://api.vxtwitter.com" {
		t.Errorf("Lookup.BaseURL = %q, want default", cfg.Lookup.BaseURL)
	}
	if cfg.Lookup.Timeout != 30*time.Second {
		t.Errorf("Lookup.Timeout = %v, want 30s", cfg.Lookup.Timeout)
	}
	if cfg.Download.Timeout != 20*time.Minute {
		t.Errorf("Download.Timeout = %v, want 20m", cfg.Download.Timeout)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("Storage.DataDir = %q, want data", cfg.Storage.DataDir)
	}
	if cfg.Ops.Addr != ":9847" {
		t.Errorf("Ops.Addr = %q, want :9847", cfg.Ops.Addr)
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
bot:
  token: "from-file"
  developer_id: 7
lookup:
  base_url: "http://localhost:8080"
storage:
  data_dir: "/tmp/relay"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LOOKUP_BASE_URL", "http://override:9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Bot.Token != "from-file" {
		t.Errorf("Bot.Token = %q, want from-file", cfg.Bot.Token)
	}
	if cfg.Bot.DeveloperID != 7 {
		t.Errorf("Bot.DeveloperID = %d, want 7 from file", cfg.Bot.DeveloperID)
	}
	if cfg.Lookup.BaseURL != "http://override:9090" {
		t.Errorf("env should override file, got %q", cfg.Lookup.BaseURL)
	}
}
