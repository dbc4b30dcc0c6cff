package config

import (
	"fmt"
	"os"
	"time"

	"github.com/fotocheck/fotocheck/internal/gateway"
	"github.com/fotocheck/fotocheck/internal/rubric"
	"github.com/fotocheck/fotocheck/pkg/database"
	"github.com/fotocheck/fotocheck/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvFotocheckEnv             = "FOTOCHECK_ENV"
	EnvFotocheckShutdownTimeout = "FOTOCHECK_SHUTDOWN_TIMEOUT"
	EnvFotocheckVersion         = "FOTOCHECK_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "FOTOCHECK_DB_HOST",
	Port:            "FOTOCHECK_DB_PORT",
	Name:            "FOTOCHECK_DB_NAME",
	User:            "FOTOCHECK_DB_USER",
	Password:        "FOTOCHECK_DB_PASSWORD",
	SSLMode:         "FOTOCHECK_DB_SSL_MODE",
	MaxOpenConns:    "FOTOCHECK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FOTOCHECK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FOTOCHECK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FOTOCHECK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "FOTOCHECK_STORAGE_CONTAINER_NAME",
	ConnectionString: "FOTOCHECK_STORAGE_CONNECTION_STRING",
}

var gatewayEnv = &gateway.Env{
	Endpoint:        "FOTOCHECK_GATEWAY_ENDPOINT",
	ModelDeployment: "FOTOCHECK_GATEWAY_MODEL_DEPLOYMENT",
	ImageDeployment: "FOTOCHECK_GATEWAY_IMAGE_DEPLOYMENT",
	APIVersion:      "FOTOCHECK_GATEWAY_API_VERSION",
	ImageAPIVersion: "FOTOCHECK_GATEWAY_IMAGE_API_VERSION",
	AgentName:       "FOTOCHECK_GATEWAY_AGENT_NAME",
	AgentID:         "FOTOCHECK_GATEWAY_AGENT_ID",
	PollInterval:    "FOTOCHECK_GATEWAY_POLL_INTERVAL",
	RunTimeout:      "FOTOCHECK_GATEWAY_RUN_TIMEOUT",
	MaxImageSize:    "FOTOCHECK_GATEWAY_MAX_IMAGE_SIZE",
}

// Config is the root configuration for the Fotocheck service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Gateway         gateway.Config  `toml:"gateway"`
	Rubric          rubric.Config   `toml:"rubric"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the FOTOCHECK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFotocheckEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadWorkflow reads the same configuration sources as Load but finalizes
// only the gateway and rubric sections. CLI tools that never touch the
// database or storage use it.
func LoadWorkflow() (*gateway.Config, *rubric.Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Gateway.Finalize(gatewayEnv); err != nil {
		return nil, nil, fmt.Errorf("gateway: %w", err)
	}
	if err := cfg.Rubric.Finalize(); err != nil {
		return nil, nil, fmt.Errorf("rubric: %w", err)
	}

	return &cfg.Gateway, &cfg.Rubric, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Gateway.Merge(&overlay.Gateway)
	c.Rubric.Merge(&overlay.Rubric)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment variable overrides, and validation
// across all sub-configs.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Gateway.Finalize(gatewayEnv); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if err := c.Rubric.Finalize(); err != nil {
		return fmt.Errorf("rubric: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvFotocheckShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvFotocheckVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvFotocheckEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
