package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Ingest IngestConfig `toml:"ingest"`
	Audit  AuditConfig  `toml:"audit"`
}

type PathsConfig struct {
	Root          string `toml:"root"`
	ClientDir     string `toml:"client_dir"`
	SupervisorDir string `toml:"supervisor_dir"`
	Database      string `toml:"database"`
	OutputDir     string `toml:"output_dir"`
}

type IngestConfig struct {
	UseSupervisor bool `toml:"use_supervisor"`
	UseFallback   bool `toml:"use_client_fallback"`
}

type AuditConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Samples int    `toml:"samples"`
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			Root:          ".",
			ClientDir:     "001-Client reports",
			SupervisorDir: "002-Supervisor_Reports",
			Database:      "diary.sqlite",
			OutputDir:     "analysis",
		},
		Ingest: IngestConfig{
			UseSupervisor: true,
			UseFallback:   true,
		},
		Audit: AuditConfig{
			Model:   "gpt-4o-mini",
			Samples: 3,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sitediary"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, then layers env overrides on top. A .env in the working
// directory is picked up first so OPENAI_API_KEY can live there.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITEDIARY_ROOT"); v != "" {
		cfg.Paths.Root = v
	}
	if v := os.Getenv("SITEDIARY_CLIENT_DIR"); v != "" {
		cfg.Paths.ClientDir = v
	}
	if v := os.Getenv("SITEDIARY_SUPERVISOR_DIR"); v != "" {
		cfg.Paths.SupervisorDir = v
	}
	if v := os.Getenv("SITEDIARY_DATABASE"); v != "" {
		cfg.Paths.Database = v
	}
	if v := os.Getenv("SITEDIARY_OUTPUT_DIR"); v != "" {
		cfg.Paths.OutputDir = v
	}
	if v := os.Getenv("SITEDIARY_AUDIT_MODEL"); v != "" {
		cfg.Audit.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Audit.APIKey = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Save writes the config back to disk, creating the directory if needed.
// The API key is never written; it stays in the environment.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	clean := *cfg
	clean.Audit.APIKey = ""
	out, err := toml.Marshal(clean)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
