package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate points the global config at a temp dir and runs the test from
// another temp dir so no real config files leak in.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for _, key := range keys {
		t.Setenv(envPrefix+"_"+envName(key), "")
		_ = os.Unsetenv(envPrefix + "_" + envName(key))
	}
	work := filepath.Join(tmpDir, "work")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatalf("Failed to create work dir: %v", err)
	}
	t.Chdir(work)
	return tmpDir
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got, want := GlobalPath(), "/custom/config/resumescan/resumescan.yml"; got != want {
			t.Errorf("GlobalPath() = %v, want %v", got, want)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		if !filepath.IsAbs(got) {
			t.Errorf("GlobalPath() should return absolute path, got %v", got)
		}
		if filepath.Base(got) != "resumescan.yml" {
			t.Errorf("GlobalPath() should end with resumescan.yml, got %v", got)
		}
	})
}

func TestProjectPath(t *testing.T) {
	if got, want := ProjectPath(), "resumescan.yml"; got != want {
		t.Errorf("ProjectPath() = %v, want %v", got, want)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Defaults()
	if cfg.BackendURL != "http://127.0.0.1:5000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want no timeout", cfg.RequestTimeout)
	}
	if cfg.CleanupGrace != want.CleanupGrace {
		t.Errorf("CleanupGrace = %v, want %v", cfg.CleanupGrace, want.CleanupGrace)
	}
	if !cfg.History {
		t.Error("History should default to true")
	}
	if cfg.DropEmptySkills {
		t.Error("DropEmptySkills should default to false")
	}
	if cfg.Breaker.Enabled || cfg.Breaker.MaxFailures != 5 || cfg.Breaker.OpenTimeout != 30*time.Second {
		t.Errorf("unexpected breaker defaults: %+v", cfg.Breaker)
	}
	if cfg.Theme != "catppuccin-mocha" {
		t.Errorf("Theme = %q, want catppuccin-mocha", cfg.Theme)
	}
}

func TestLoad_ThemeFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("RESUMESCAN_THEME", "custom")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Theme != "custom" {
		t.Errorf("Theme = %q, want custom", cfg.Theme)
	}
}

func TestLoad_Precedence(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "config", "resumescan", "resumescan.yml"), `
backend_url: http://global:5000
log_level: warn
request_timeout: 10s
breaker:
  enabled: true
  max_failures: 3
`)
	writeFile(t, ProjectPath(), `
backend_url: http://project:5000
cleanup_grace: 500ms
`)

	t.Run("project overrides global", func(t *testing.T) {
		cfg, err := Load(nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BackendURL != "http://project:5000" {
			t.Errorf("BackendURL = %q, want project value", cfg.BackendURL)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("LogLevel = %q, want global value", cfg.LogLevel)
		}
		if cfg.RequestTimeout != 10*time.Second {
			t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
		}
		if cfg.CleanupGrace != 500*time.Millisecond {
			t.Errorf("CleanupGrace = %v, want 500ms", cfg.CleanupGrace)
		}
		if !cfg.Breaker.Enabled || cfg.Breaker.MaxFailures != 3 {
			t.Errorf("Breaker = %+v, want global values", cfg.Breaker)
		}
	})

	t.Run("env overrides files", func(t *testing.T) {
		t.Setenv("RESUMESCAN_BACKEND_URL", "http://env:5000")
		t.Setenv("RESUMESCAN_DROP_EMPTY_SKILLS", "true")
		t.Setenv("RESUMESCAN_BREAKER_OPEN_TIMEOUT", "1m")

		cfg, err := Load(nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BackendURL != "http://env:5000" {
			t.Errorf("BackendURL = %q, want env value", cfg.BackendURL)
		}
		if !cfg.DropEmptySkills {
			t.Error("DropEmptySkills should come from env")
		}
		if cfg.Breaker.OpenTimeout != time.Minute {
			t.Errorf("OpenTimeout = %v, want 1m", cfg.Breaker.OpenTimeout)
		}
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("RESUMESCAN_BACKEND_URL", "http://env:5000")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("backend-url", "", "")
		flags.Bool("no-history", false, "")
		if err := flags.Parse([]string{"--backend-url", "http://flag:5000", "--no-history"}); err != nil {
			t.Fatalf("parse flags: %v", err)
		}

		cfg, err := Load(flags)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BackendURL != "http://flag:5000" {
			t.Errorf("BackendURL = %q, want flag value", cfg.BackendURL)
		}
		if cfg.History {
			t.Error("--no-history should disable history")
		}
	})

	t.Run("unset flags keep lower layers", func(t *testing.T) {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("backend-url", "http://flag-default:5000", "")
		if err := flags.Parse(nil); err != nil {
			t.Fatalf("parse flags: %v", err)
		}

		cfg, err := Load(flags)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BackendURL != "http://project:5000" {
			t.Errorf("BackendURL = %q, want project value", cfg.BackendURL)
		}
	})
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("RESUMESCAN_BACKEND_URL", "127.0.0.1:5000")

	if _, err := Load(nil); err == nil {
		t.Error("expected error for backend url without scheme")
	}
}

func TestExists(t *testing.T) {
	isolate(t)

	if Exists() {
		t.Error("Exists() = true, want false when no config files exist")
	}

	writeFile(t, ProjectPath(), "backend_url: http://x:1\n")
	if !Exists() {
		t.Error("Exists() = false, want true when project config exists")
	}
}

func TestWriteAndReload(t *testing.T) {
	isolate(t)

	cfg := Defaults()
	cfg.BackendURL = "https://matcher.example.com"
	cfg.RequestTimeout = 15 * time.Second
	cfg.OpenCommand = "zathura {{path}}"
	cfg.Breaker.Enabled = true

	if err := WriteGlobal(cfg); err != nil {
		t.Fatalf("WriteGlobal() error = %v", err)
	}
	if _, err := os.Stat(GlobalPath()); err != nil {
		t.Fatalf("config file not created at %s: %v", GlobalPath(), err)
	}

	loaded, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}

	cfg.BackendURL = "http://project:5000"
	if err := WriteProject(cfg); err != nil {
		t.Fatalf("WriteProject() error = %v", err)
	}
	loaded, err = Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.BackendURL != "http://project:5000" {
		t.Errorf("BackendURL = %q, want project value", loaded.BackendURL)
	}
}
