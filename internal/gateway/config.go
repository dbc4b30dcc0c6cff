package gateway

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fotocheck/fotocheck/pkg/formatting"
)

// Env maps gateway config fields to environment variable names.
type Env struct {
	Endpoint        string
	ModelDeployment string
	ImageDeployment string
	APIVersion      string
	ImageAPIVersion string
	AgentName       string
	AgentID         string
	PollInterval    string
	RunTimeout      string
	MaxImageSize    string
}

// Config holds connection and behavior settings for the AI Foundry project.
type Config struct {
	// Endpoint is the AI Foundry project endpoint.
	Endpoint string `toml:"endpoint"`
	// ModelDeployment is the deployed model used for rubric evaluation.
	ModelDeployment string `toml:"model_deployment"`
	// ImageDeployment is the deployed model used for image edits.
	ImageDeployment string `toml:"image_deployment"`

	APIVersion      string `toml:"api_version"`
	ImageAPIVersion string `toml:"image_api_version"`

	// AgentName labels agents created by this service. AgentID, when set,
	// reuses an existing agent instead of creating one.
	AgentName string `toml:"agent_name"`
	AgentID   string `toml:"agent_id"`

	PollInterval string `toml:"poll_interval"`
	RunTimeout   string `toml:"run_timeout"`

	MaxImageSize string   `toml:"max_image_size"`
	AllowedSizes []string `toml:"allowed_sizes"`
}

func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

func (c *Config) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

func (c *Config) MaxImageSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxImageSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return size
}

// AllowedSize reports whether size is an accepted output dimension.
func (c *Config) AllowedSize(size string) bool {
	return slices.Contains(c.AllowedSizes, size)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.ModelDeployment != "" {
		c.ModelDeployment = overlay.ModelDeployment
	}
	if overlay.ImageDeployment != "" {
		c.ImageDeployment = overlay.ImageDeployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.ImageAPIVersion != "" {
		c.ImageAPIVersion = overlay.ImageAPIVersion
	}
	if overlay.AgentName != "" {
		c.AgentName = overlay.AgentName
	}
	if overlay.AgentID != "" {
		c.AgentID = overlay.AgentID
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}
	if overlay.MaxImageSize != "" {
		c.MaxImageSize = overlay.MaxImageSize
	}
	if len(overlay.AllowedSizes) > 0 {
		c.AllowedSizes = overlay.AllowedSizes
	}
}

func (c *Config) loadDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = "v1"
	}
	if c.ImageAPIVersion == "" {
		c.ImageAPIVersion = "2025-04-01-preview"
	}
	if c.AgentName == "" {
		c.AgentName = "image-evaluator"
	}
	if c.PollInterval == "" {
		c.PollInterval = "2s"
	}
	if c.RunTimeout == "" {
		c.RunTimeout = "2m"
	}
	if c.MaxImageSize == "" {
		c.MaxImageSize = "20MB"
	}
	if len(c.AllowedSizes) == 0 {
		c.AllowedSizes = []string{"256x256", "512x512", "1024x1024"}
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.Endpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(env.ModelDeployment); v != "" {
		c.ModelDeployment = v
	}
	if v := os.Getenv(env.ImageDeployment); v != "" {
		c.ImageDeployment = v
	}
	if v := os.Getenv(env.APIVersion); v != "" {
		c.APIVersion = v
	}
	if v := os.Getenv(env.ImageAPIVersion); v != "" {
		c.ImageAPIVersion = v
	}
	if v := os.Getenv(env.AgentName); v != "" {
		c.AgentName = v
	}
	if v := os.Getenv(env.AgentID); v != "" {
		c.AgentID = v
	}
	if v := os.Getenv(env.PollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(env.RunTimeout); v != "" {
		c.RunTimeout = v
	}
	if v := os.Getenv(env.MaxImageSize); v != "" {
		c.MaxImageSize = v
	}
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint required")
	}
	if c.ModelDeployment == "" {
		return fmt.Errorf("model_deployment required")
	}
	if c.ImageDeployment == "" {
		return fmt.Errorf("image_deployment required")
	}
	if _, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.RunTimeout); err != nil {
		return fmt.Errorf("invalid run_timeout: %w", err)
	}
	if _, err := formatting.ParseBytes(c.MaxImageSize); err != nil {
		return fmt.Errorf("invalid max_image_size: %w", err)
	}

	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	return nil
}
