// Package config loads and validates stockbook configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lherron/stockbook/internal/domain"
)

// ArchiveSeparator is the token used to delimit segments of archive table
// names. Branch keys must never contain it, otherwise archive names could
// not be decoded losslessly.
const ArchiveSeparator = "::"

// Config represents the application configuration. It is treated as an
// immutable value once loaded: the orchestrator receives it at construction
// and never mutates it.
type Config struct {
	DBPath        string          `yaml:"db_path"`
	TemplateTable string          `yaml:"template_table"`
	Branches      []domain.Branch `yaml:"branches"`
	Exclusions    []string        `yaml:"exclusions"`
	LogLevel      string          `yaml:"log_level"`
	Output        string          `yaml:"output"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ./.stockbook/config.yaml, else ~/.config/stockbook/config.yaml
func Load() (*Config, error) {
	cfg := &Config{
		TemplateTable: "record_template",
		LogLevel:      "info",
		Output:        "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional; branch sets normally come from here
	if err := loadYAMLConfig(cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables
	if dbPath := getEnvOrFile("STOCKBOOK_DB_PATH", "STOCKBOOK_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if tmpl := os.Getenv("STOCKBOOK_TEMPLATE_TABLE"); tmpl != "" {
		cfg.TemplateTable = tmpl
	}
	if logLevel := os.Getenv("STOCKBOOK_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if output := os.Getenv("STOCKBOOK_OUTPUT"); output != "" {
		cfg.Output = output
	}

	// Set defaults if not configured
	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".stockbook/stockbook.db"); err == nil {
			cfg.DBPath = ".stockbook/stockbook.db"
		} else {
			// Fall back to user-global database
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "stockbook", "stockbook.db")
		}
	}

	return cfg, nil
}

// Validate checks the configured branch set for constraints the engine
// relies on: at least one branch, no empty or separator-bearing keys, and
// unique keys and tab names.
func (c *Config) Validate() error {
	if len(c.Branches) == 0 {
		return fmt.Errorf("no branches configured")
	}

	seenKeys := make(map[string]bool)
	seenTabs := make(map[string]bool)
	for _, b := range c.Branches {
		if strings.TrimSpace(b.Key) == "" {
			return fmt.Errorf("branch with empty key configured")
		}
		if strings.Contains(b.Key, ArchiveSeparator) {
			return fmt.Errorf("branch key %q contains reserved separator %q", b.Key, ArchiveSeparator)
		}
		if strings.TrimSpace(b.TabName) == "" {
			return fmt.Errorf("branch %q has empty tab name", b.Key)
		}
		if seenKeys[b.Key] {
			return fmt.Errorf("duplicate branch key %q", b.Key)
		}
		if seenTabs[b.TabName] {
			return fmt.Errorf("duplicate tab name %q", b.TabName)
		}
		seenKeys[b.Key] = true
		seenTabs[b.TabName] = true
	}

	if strings.TrimSpace(c.TemplateTable) == "" {
		return fmt.Errorf("template table name is empty")
	}

	return nil
}

// FindBranch returns the configured branch for key, or an UnknownBranchError.
func (c *Config) FindBranch(key string) (domain.Branch, error) {
	for _, b := range c.Branches {
		if b.Key == key {
			return b, nil
		}
	}
	return domain.Branch{}, &domain.UnknownBranchError{Key: key}
}

// loadYAMLConfig loads configuration from the project-local config if
// present, otherwise from ~/.config/stockbook/config.yaml.
func loadYAMLConfig(cfg *Config) error {
	if data, err := os.ReadFile(filepath.Join(".stockbook", "config.yaml")); err == nil {
		return yaml.Unmarshal(data, cfg)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "stockbook", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
