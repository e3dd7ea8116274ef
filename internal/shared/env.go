package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvAPIURL      = "ENCORE_API_URL"
	EnvDBPath      = "ENCORE_DB_PATH"
	EnvFrontendURL = "ENCORE_FRONTEND_URL"
)

// LoadEnv loads variables from the given dotenv files into the process environment.
//
// Missing files are skipped; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with any ENCORE_* variables that are set.
func ApplyEnv(c *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvFrontendURL); v != "" {
		c.API.FrontendURL = v
	}
}
