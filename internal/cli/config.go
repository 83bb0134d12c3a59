package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// Backends a server can read and write through.
const (
	BackendPostgREST = "postgrest"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
)

// Config holds hoom configuration persisted to disk.
type Config struct {
	ServerURL    string        `yaml:"server_url,omitempty"`
	Backend      string        `yaml:"backend,omitempty"`
	SupabaseURL  string        `yaml:"supabase_url,omitempty"`
	SupabaseKey  string        `yaml:"supabase_key,omitempty"`
	DBPath       string        `yaml:"db_path,omitempty"`
	DatabaseURL  string        `yaml:"database_url,omitempty"`
	ListingsTTL  time.Duration `yaml:"listings_ttl,omitempty"`
	PromotersTTL time.Duration `yaml:"promoters_ttl,omitempty"`
	ExcludeTitle string        `yaml:"exclude_title,omitempty"`
	Dev          bool          `yaml:"dev,omitempty"`
	Port         int           `yaml:"port,omitempty"`
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hoom", "config.yaml"), nil
}

// readConfigFile reads the config file as written.
// Returns a zero-value config if the file doesn't exist.
func readConfigFile() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// loadConfig returns the effective configuration: the file, then .env and
// environment overrides, then defaults.
func loadConfig() (Config, error) {
	cfg, err := readConfigFile()
	if err != nil {
		return Config{}, err
	}
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadDotEnv loads .env from the working directory; a missing file is fine.
// Variables already set in the environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading .env: %w", err)
}

func applyEnv(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"HOOM_SERVER_URL", &cfg.ServerURL},
		{"HOOM_BACKEND", &cfg.Backend},
		{"SUPABASE_URL", &cfg.SupabaseURL},
		{"SUPABASE_KEY", &cfg.SupabaseKey},
		{"HOOM_DB", &cfg.DBPath},
		{"DATABASE_URL", &cfg.DatabaseURL},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("HOOM_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing HOOM_DEV: %w", err)
		}
		cfg.Dev = dev
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	if cfg.Backend == "" {
		// A configured Supabase project is the remote store; otherwise
		// work against the local SQLite file.
		cfg.Backend = BackendSQLite
		if cfg.SupabaseURL != "" {
			cfg.Backend = BackendPostgREST
		}
	}
	if cfg.ListingsTTL == 0 {
		cfg.ListingsTTL = listing.DefaultTTL
	}
	if cfg.PromotersTTL == 0 {
		cfg.PromotersTTL = promoter.DefaultTTL
	}
	if cfg.ExcludeTitle == "" {
		cfg.ExcludeTitle = listing.DefaultExcludeTitle
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
}

func (cfg Config) validate() error {
	switch cfg.Backend {
	case BackendPostgREST, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)",
			cfg.Backend, BackendPostgREST, BackendSQLite, BackendPostgres)
	}
	if cfg.ListingsTTL < 0 || cfg.PromotersTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (cfg Config) Redacted() Config {
	if cfg.SupabaseKey != "" {
		cfg.SupabaseKey = "********"
	}
	if cfg.DatabaseURL != "" {
		cfg.DatabaseURL = "********"
	}
	return cfg
}

// setConfigValue sets one key in the config file, keeping the others.
func setConfigValue(key, value string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading config: %w", err)
	}

	if !configKeys[key] {
		return fmt.Errorf("unknown config key %q", key)
	}
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil {
		v = value
	}
	doc[key] = v

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Reject values that do not fit the field they target.
	var check Config
	if err := yaml.Unmarshal(out, &check); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

var configKeys = map[string]bool{
	"server_url":    true,
	"backend":       true,
	"supabase_url":  true,
	"supabase_key":  true,
	"db_path":       true,
	"database_url":  true,
	"listings_ttl":  true,
	"promoters_ttl": true,
	"exclude_title": true,
	"dev":           true,
	"port":          true,
}
