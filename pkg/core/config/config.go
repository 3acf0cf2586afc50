package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "FORMPLAN_"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general" envPrefix:"GENERAL_"`
	Plans   PlansConfig   `toml:"plans" yaml:"plans" envPrefix:"PLANS_"`
	Store   StoreConfig   `toml:"store" yaml:"store" envPrefix:"STORE_"`
	Server  ServerConfig  `toml:"server" yaml:"server" envPrefix:"SERVER_"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics" envPrefix:"METRICS_"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name" env:"NAME"`
	Environment string `toml:"environment" yaml:"environment" env:"ENVIRONMENT"`
	LogLevel    string `toml:"log_level" yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `toml:"log_format" yaml:"log_format" env:"LOG_FORMAT"`
	Locale      string `toml:"locale" yaml:"locale" env:"LOCALE"`
	LocalesDir  string `toml:"locales_dir" yaml:"locales_dir" env:"LOCALES_DIR"`
	LogFile     string `toml:"log_file" yaml:"log_file" env:"LOG_FILE"`
}

// PlansConfig points at the plan catalog
type PlansConfig struct {
	Path     string   `toml:"path" yaml:"path" env:"PATH"`
	Watch    bool     `toml:"watch" yaml:"watch" env:"WATCH"`
	Debounce Duration `toml:"debounce" yaml:"debounce" env:"DEBOUNCE"`
}

// StoreConfig holds the uniqueness store settings
type StoreConfig struct {
	Path        string   `toml:"path" yaml:"path" env:"PATH"`
	BusyTimeout Duration `toml:"busy_timeout" yaml:"busy_timeout" env:"BUSY_TIMEOUT"`
	CacheTTL    Duration `toml:"cache_ttl" yaml:"cache_ttl" env:"CACHE_TTL"` // 0 disables the lookup cache
	CacheSize   int      `toml:"cache_size" yaml:"cache_size" env:"CACHE_SIZE"`
}

// ServerConfig holds gRPC server settings
type ServerConfig struct {
	Host              string   `toml:"host" yaml:"host" env:"HOST"`
	Port              int      `toml:"port" yaml:"port" env:"PORT"`
	Reflection        bool     `toml:"reflection" yaml:"reflection" env:"REFLECTION"`
	MaxRecvMsgSize    int      `toml:"max_recv_msg_size" yaml:"max_recv_msg_size" env:"MAX_RECV_MSG_SIZE"`
	KeepaliveInterval Duration `toml:"keepalive_interval" yaml:"keepalive_interval" env:"KEEPALIVE_INTERVAL"`
	KeepaliveTimeout  Duration `toml:"keepalive_timeout" yaml:"keepalive_timeout" env:"KEEPALIVE_TIMEOUT"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// MetricsConfig holds the prometheus endpoint settings
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled" env:"ENABLED"`
	Address   string `toml:"address" yaml:"address" env:"ADDRESS"`
	Path      string `toml:"path" yaml:"path" env:"PATH"`
	Namespace string `toml:"namespace" yaml:"namespace" env:"NAMESPACE"`
}

// Duration wraps time.Duration for TOML, YAML and env parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied and the
// environment overrides parsed
func Default() (*Config, error) {
	var cfg Config
	cfg.applyDefaults()
	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdwerror.Newf("config file not found: %s", path).
				WithCode(mdwerror.CodeConfigError).
				WithOperation("config.Load").
				WithDetail("path", path)
		}
		return nil, mdwerror.Wrap(err, "failed to read config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, mdwerror.Newf("unsupported config format %q", ext).
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.applyDefaults()

	if err := cfg.parseEnv(); err != nil {
		return nil, err
	}

	cfg.expandEnvVars()
	return &cfg, nil
}

// LoadFromEnv loads configuration from the FORMPLAN_CONFIG environment
// variable or the first default location that exists. Without any file the
// defaults are used.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPrefix + "CONFIG")
	if path == "" {
		path = findDefault()
	}
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Resolve loads path when given, otherwise falls back to LoadFromEnv
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	return LoadFromEnv()
}

func findDefault() string {
	candidates := []string{
		"./configs/formplan.toml",
		"./configs/formplan.yaml",
		"./formplan.toml",
		"./formplan.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "formplan", "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// parseEnv applies FORMPLAN_* overrides on top of the file values
func (c *Config) parseEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return mdwerror.Wrap(err, "parse env").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.parseEnv")
	}
	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "formplan"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}
	if c.General.Locale == "" {
		c.General.Locale = "en"
	}

	// Plans
	if c.Plans.Path == "" {
		c.Plans.Path = "./configs/forms.yaml"
	}
	if c.Plans.Debounce.Duration == 0 {
		c.Plans.Debounce.Duration = 250 * time.Millisecond
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = "./data/formplan.db"
	}
	if c.Store.BusyTimeout.Duration == 0 {
		c.Store.BusyTimeout.Duration = 5 * time.Second
	}
	if c.Store.CacheSize == 0 {
		c.Store.CacheSize = 10000
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9300
	}
	if c.Server.MaxRecvMsgSize == 0 {
		c.Server.MaxRecvMsgSize = 4 * 1024 * 1024 // 4MB
	}
	if c.Server.KeepaliveInterval.Duration == 0 {
		c.Server.KeepaliveInterval.Duration = 30 * time.Second
	}
	if c.Server.KeepaliveTimeout.Duration == 0 {
		c.Server.KeepaliveTimeout.Duration = 10 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}

	// Metrics
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9301"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "formplan"
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.LocalesDir = os.ExpandEnv(c.General.LocalesDir)
	c.General.LogFile = os.ExpandEnv(c.General.LogFile)
	c.Plans.Path = os.ExpandEnv(c.Plans.Path)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// ServerAddress returns the gRPC listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
