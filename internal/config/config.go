// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	appName       = "resumescan"
	envPrefix     = "RESUMESCAN"
	defaultOrigin = "http://127.0.0.1:5000"
)

// Breaker configures the backend circuit breaker.
type Breaker struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures" yaml:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" yaml:"open_timeout"`
}

// Config holds all configuration values for resumescan.
type Config struct {
	BackendURL      string        `mapstructure:"backend_url" yaml:"backend_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	CleanupGrace    time.Duration `mapstructure:"cleanup_grace" yaml:"cleanup_grace"`
	DataDir         string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string        `mapstructure:"log_file" yaml:"log_file"`
	History         bool          `mapstructure:"history" yaml:"history"`
	DropEmptySkills bool          `mapstructure:"drop_empty_skills" yaml:"drop_empty_skills"`
	OpenCommand     string        `mapstructure:"open_command" yaml:"open_command"`
	TraceFile       string        `mapstructure:"trace_file" yaml:"trace_file"`
	Theme           string        `mapstructure:"theme" yaml:"theme"`
	Breaker         Breaker       `mapstructure:"breaker" yaml:"breaker"`
}

// keys lists every config key so each gets an explicit env binding.
var keys = []string{
	"backend_url",
	"request_timeout",
	"cleanup_grace",
	"data_dir",
	"log_level",
	"log_file",
	"history",
	"drop_empty_skills",
	"open_command",
	"trace_file",
	"theme",
	"breaker.enabled",
	"breaker.max_failures",
	"breaker.open_timeout",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"backend-url":     "backend_url",
	"request-timeout": "request_timeout",
	"data-dir":        "data_dir",
	"log-level":       "log_level",
	"log-file":        "log_file",
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		BackendURL:   defaultOrigin,
		CleanupGrace: 2 * time.Second,
		DataDir:      ".resumescan",
		LogLevel:     "info",
		History:      true,
		Theme:        "catppuccin-mocha",
		Breaker: Breaker{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName(appName)

	d := Defaults()
	v.SetDefault("backend_url", d.BackendURL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("cleanup_grace", d.CleanupGrace)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("history", d.History)
	v.SetDefault("drop_empty_skills", d.DropEmptySkills)
	v.SetDefault("open_command", d.OpenCommand)
	v.SetDefault("trace_file", d.TraceFile)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.max_failures", d.Breaker.MaxFailures)
	v.SetDefault("breaker.open_timeout", d.Breaker.OpenTimeout)

	// RESUMESCAN_BACKEND_URL, RESUMESCAN_BREAKER_ENABLED, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		env := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
		// --no-history inverts the history key.
		if f := flags.Lookup("no-history"); f != nil && f.Changed {
			v.Set("history", f.Value.String() != "true")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend_url must not be empty")
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("backend_url must start with http:// or https://, got %q", c.BackendURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.CleanupGrace < 0 {
		return fmt.Errorf("cleanup_grace must not be negative")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/resumescan/resumescan.yml or $XDG_CONFIG_HOME/resumescan/resumescan.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, appName+".yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return appName + ".yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	return write(GlobalPath(), cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
