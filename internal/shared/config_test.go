package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://127.0.0.1:8000/api" {
			t.Errorf("expected base URL http://127.0.0.1:8000/api, got %s", config.API.BaseURL)
		}

		if config.API.Timeout() != 10*time.Second {
			t.Errorf("expected 10s timeout, got %v", config.API.Timeout())
		}

		if config.Database.Path != "./encore.db" {
			t.Errorf("expected database path ./encore.db, got %s", config.Database.Path)
		}

		if config.Concerts.PerPage != 10 {
			t.Errorf("expected per_page 10, got %d", config.Concerts.PerPage)
		}

		if config.Moderation.Workers != 4 {
			t.Errorf("expected 4 moderation workers, got %d", config.Moderation.Workers)
		}
	})

	t.Run("Host", func(t *testing.T) {
		tt := []struct {
			base string
			want string
		}{
			{"http://127.0.0.1:8000/api", "http://127.0.0.1:8000"},
			{"http://127.0.0.1:8000/api/", "http://127.0.0.1:8000"},
			{"https://tickets.example.com", "https://tickets.example.com"},
		}

		for _, tc := range tt {
			if got := (APIConfig{BaseURL: tc.base}).Host(); got != tc.want {
				t.Errorf("Host(%q) = %q, want %q", tc.base, got, tc.want)
			}
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://tickets.example.com/api"
timeout_seconds = 3

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://tickets.example.com/api" {
			t.Errorf("expected custom base URL, got %s", config.API.BaseURL)
		}

		if config.API.Timeout() != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", config.API.Timeout())
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Concerts.PerPage != 10 {
			t.Errorf("expected unset per_page to keep default 10, got %d", config.Concerts.PerPage)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[api]\nbase_url = \"\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}

		if _, err := LoadConfig(filepath.Join(tmpDir, "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestEnv(t *testing.T) {
	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://override.test/api")
		t.Setenv(EnvDBPath, "/tmp/override.db")
		t.Setenv(EnvFrontendURL, "")

		config := DefaultConfig()
		ApplyEnv(config)

		if config.API.BaseURL != "http://override.test/api" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
		if config.Database.Path != "/tmp/override.db" {
			t.Errorf("expected env db path, got %s", config.Database.Path)
		}
		if config.API.FrontendURL != DefaultConfig().API.FrontendURL {
			t.Errorf("empty env var should not override frontend url, got %s", config.API.FrontendURL)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		tmpDir := t.TempDir()
		envPath := filepath.Join(tmpDir, ".env")
		if err := os.WriteFile(envPath, []byte("ENCORE_TEST_ONLY_VAR=from-dotenv\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("ENCORE_TEST_ONLY_VAR") })

		if err := LoadEnv(filepath.Join(tmpDir, "missing.env"), envPath); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		if got := os.Getenv("ENCORE_TEST_ONLY_VAR"); got != "from-dotenv" {
			t.Errorf("expected variable from .env, got %q", got)
		}
	})
}
