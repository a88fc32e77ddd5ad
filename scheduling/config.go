package scheduling

import (
	"fmt"
	"os"

	"github.com/schoolbridge/schedsync/database"
	"gopkg.in/yaml.v2"
)

// Config holds the external scheduling platform settings. The default
// administrator is an out-of-band-provisioned account this system only ever
// looks up, never creates.
type Config struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	DefaultAdminEmail string `yaml:"default_admin_email"`
}

// ConfigFromEnv builds the platform configuration from environment variables.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:           database.GetEnvDefault("SCHEDULING_API_URL", "http://localhost:5555/api/v2"),
		APIKey:            os.Getenv("SCHEDULING_API_KEY"),
		DefaultAdminEmail: os.Getenv("SCHEDULING_ADMIN_EMAIL"),
	}
}

// LoadConfigFile reads and parses a YAML config file, overriding env values.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := ConfigFromEnv()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// LoadConfig resolves the platform configuration: a SCHEDULING_CONFIG file
// when present, env vars otherwise.
func LoadConfig() (Config, error) {
	if path := os.Getenv("SCHEDULING_CONFIG"); path != "" {
		cfg, err := LoadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		return *cfg, nil
	}

	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures the configuration is complete.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("scheduling platform base URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("scheduling platform API key is required")
	}
	if c.DefaultAdminEmail == "" {
		return fmt.Errorf("default administrator email is required")
	}
	return nil
}
