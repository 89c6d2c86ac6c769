// Package config loads and validates relay configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Horde       HordeConfig       `mapstructure:"horde"`
	Relay       RelayConfig       `mapstructure:"relay"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Docs        DocsConfig        `mapstructure:"docs"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HordeConfig points the relay at the remote generation network.
type HordeConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	ClientAgent string        `mapstructure:"client_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// RelayConfig governs the submit/poll/retrieve cycle.
type RelayConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
	CheckRetries int           `mapstructure:"check_retries"`
	// BestEffort answers every generation with 200 and an empty image on failure.
	BestEffort bool `mapstructure:"best_effort"`
}

// PreferencesConfig bounds the per-key model preference store.
type PreferencesConfig struct {
	DefaultModel string        `mapstructure:"default_model"`
	Capacity     int           `mapstructure:"capacity"`
	TTL          time.Duration `mapstructure:"ttl"`
}

// DocsConfig locates the markdown served at the root page.
type DocsConfig struct {
	ReadmePath string `mapstructure:"readme_path"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HORDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "HORDE_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 7860)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("horde.base_url", "https://aihorde.net/api")
	v.SetDefault("horde.client_agent", "horde-relay:1.0:unknown")
	v.SetDefault("horde.timeout", 30*time.Second)
	v.SetDefault("relay.poll_interval", time.Second)
	v.SetDefault("relay.max_wait", 10*time.Minute)
	v.SetDefault("relay.check_retries", 3)
	v.SetDefault("relay.best_effort", true)
	v.SetDefault("preferences.default_model", "Anything Diffusion")
	v.SetDefault("preferences.capacity", 10000)
	v.SetDefault("preferences.ttl", time.Duration(0))
	v.SetDefault("docs.readme_path", "README.md")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Horde.BaseURL == "" {
		return fmt.Errorf("horde.base_url must be set")
	}
	if c.Horde.Timeout <= 0 {
		return fmt.Errorf("horde.timeout must be > 0")
	}
	if c.Relay.PollInterval <= 0 {
		return fmt.Errorf("relay.poll_interval must be > 0")
	}
	if c.Relay.MaxWait < c.Relay.PollInterval {
		return fmt.Errorf("relay.max_wait must be >= relay.poll_interval")
	}
	if c.Relay.CheckRetries < 0 {
		return fmt.Errorf("relay.check_retries must be >= 0")
	}
	if c.Preferences.DefaultModel == "" {
		return fmt.Errorf("preferences.default_model must be set")
	}
	if c.Preferences.Capacity < 0 {
		return fmt.Errorf("preferences.capacity must be >= 0")
	}
	return nil
}
