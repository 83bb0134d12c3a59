package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// isolateConfig points HOME and --config at a temp dir and clears the
// environment overrides.
func isolateConfig(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	for _, env := range []string{
		"HOOM_SERVER_URL", "HOOM_BACKEND", "SUPABASE_URL", "SUPABASE_KEY",
		"HOOM_DB", "DATABASE_URL", "HOOM_DEV",
	} {
		t.Setenv(env, "")
	}
	path := filepath.Join(tmp, "config.yaml")
	flagConfig = path
	t.Cleanup(func() { flagConfig = "" })
	return path
}

func TestConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ServerURL != "http://localhost:8080" {
		t.Errorf("server_url = %q", cfg.ServerURL)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("backend = %q, want %q", cfg.Backend, BackendSQLite)
	}
	if cfg.ListingsTTL != listing.DefaultTTL || cfg.PromotersTTL != promoter.DefaultTTL {
		t.Errorf("ttls = %v %v", cfg.ListingsTTL, cfg.PromotersTTL)
	}
	if cfg.ExcludeTitle != listing.DefaultExcludeTitle {
		t.Errorf("exclude_title = %q", cfg.ExcludeTitle)
	}
	if cfg.Port != 8080 || cfg.Dev {
		t.Errorf("port = %d dev = %v", cfg.Port, cfg.Dev)
	}
}

func TestConfigDefaultPath(t *testing.T) {
	isolateConfig(t)
	flagConfig = ""

	path, err := configPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if want := filepath.Join(os.Getenv("HOME"), ".config", "hoom", "config.yaml"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	path := isolateConfig(t)
	data := []byte(`server_url: http://file:9000
backend: postgres
database_url: postgres://hoom@localhost/hoom
listings_ttl: 5m
exclude_title: preventa
port: 9090
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("HOOM_SERVER_URL", "http://env:1234")
	t.Setenv("HOOM_DEV", "true")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ServerURL != "http://env:1234" {
		t.Errorf("server_url = %q, want env override", cfg.ServerURL)
	}
	if cfg.Backend != BackendPostgres || cfg.DatabaseURL != "postgres://hoom@localhost/hoom" {
		t.Errorf("backend = %q url = %q", cfg.Backend, cfg.DatabaseURL)
	}
	if cfg.ListingsTTL != 5*time.Minute {
		t.Errorf("listings_ttl = %v, want 5m", cfg.ListingsTTL)
	}
	if cfg.PromotersTTL != promoter.DefaultTTL {
		t.Errorf("promoters_ttl = %v, want default", cfg.PromotersTTL)
	}
	if cfg.ExcludeTitle != "preventa" || cfg.Port != 9090 || !cfg.Dev {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfigSupabaseSelectsPostgREST(t *testing.T) {
	isolateConfig(t)
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_KEY", "secret")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendPostgREST {
		t.Errorf("backend = %q, want %q", cfg.Backend, BackendPostgREST)
	}
	if r := cfg.Redacted(); r.SupabaseKey == "secret" || cfg.SupabaseKey != "secret" {
		t.Errorf("redacted key = %q, original = %q", r.SupabaseKey, cfg.SupabaseKey)
	}
}

func TestConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"unknown backend", "", map[string]string{"HOOM_BACKEND": "mysql"}},
		{"bad dev flag", "", map[string]string{"HOOM_DEV": "sometimes"}},
		{"bad yaml", "port: [1", nil},
		{"negative ttl", "listings_ttl: -1m", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := isolateConfig(t)
			if tt.file != "" {
				if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
					t.Fatalf("write: %v", err)
				}
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	path := isolateConfig(t)

	if err := setConfigValue("port", "9191"); err != nil {
		t.Fatalf("set port: %v", err)
	}
	if err := setConfigValue("listings_ttl", "2m"); err != nil {
		t.Fatalf("set ttl: %v", err)
	}
	if err := setConfigValue("server_url", "http://myhost:9191"); err != nil {
		t.Fatalf("set url: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not found: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9191 || cfg.ListingsTTL != 2*time.Minute || cfg.ServerURL != "http://myhost:9191" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSetConfigValueRejects(t *testing.T) {
	isolateConfig(t)

	if err := setConfigValue("api_key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := setConfigValue("port", "eighty"); err == nil {
		t.Error("expected error for non-numeric port")
	}
}
