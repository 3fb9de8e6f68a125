package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/melih/dockship/internal/core/domain"
)

const appName = "dockship"

// Config holds settings that can come from the config file, the environment
// or flags, in increasing order of precedence.
type Config struct {
	Region       string   `yaml:"region"`
	AccountID    string   `yaml:"account_id"`
	DefaultPorts []string `yaml:"default_ports"`
	DockerConfig string   `yaml:"docker_config"` // credential file reset on managed hosts
	Listen       string   `yaml:"listen"`
	Verbose      bool     `yaml:"verbose"`
	Debug        bool     `yaml:"debug"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DefaultPorts: []string{"5000:5000"},
		Listen:       ":3000",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/dockship/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// applyEnv lets DOCKSHIP_* variables override the file. The AWS region
// variables only fill a region the file left empty.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCKSHIP_REGION"); v != "" {
		c.Region = v
	}
	for _, key := range []string{"AWS_REGION", "AWS_DEFAULT_REGION"} {
		if c.Region != "" {
			break
		}
		c.Region = os.Getenv(key)
	}
	if v := os.Getenv("DOCKSHIP_ACCOUNT_ID"); v != "" {
		c.AccountID = v
	}
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := c.Ports(); err != nil {
		return fmt.Errorf("default_ports: %w", err)
	}
	return nil
}

// Ports parses DefaultPorts.
func (c Config) Ports() (domain.PortMap, error) {
	if len(c.DefaultPorts) == 0 {
		return domain.DefaultPorts(), nil
	}
	return domain.ParsePortMap(c.DefaultPorts)
}
