package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up inside the server's config directory.
const ConfigFileName = "notelab_config.yaml"

// ServerConfig holds the server-side configuration loaded from the config
// directory, optionally overlaid with programmatic overrides.
type ServerConfig struct {
	Token           string `yaml:"token"`
	PasswordHash    string `yaml:"password_hash"`
	AllowOrigin     string `yaml:"allow_origin"`
	CullIdleSeconds int    `yaml:"cull_idle_seconds"`
	DefaultKernel   string `yaml:"default_kernel"`
}

// Overrides carries programmatic configuration supplied by an embedding
// caller (typically a test harness). A nil field means "no override".
type Overrides struct {
	Token           *string
	PasswordHash    *string
	AllowOrigin     *string
	CullIdleSeconds *int
	DefaultKernel   *string
}

// LoadServerConfig reads notelab_config.yaml from configDir. A missing file
// is not an error; defaults are returned.
func LoadServerConfig(configDir string) (*ServerConfig, error) {
	cfg := &ServerConfig{
		DefaultKernel: "go",
	}

	path := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}
	if cfg.DefaultKernel == "" {
		cfg.DefaultKernel = "go"
	}

	return cfg, nil
}

// Apply overlays non-nil override fields onto the config.
func (c *ServerConfig) Apply(o *Overrides) {
	if o == nil {
		return
	}
	if o.Token != nil {
		c.Token = *o.Token
	}
	if o.PasswordHash != nil {
		c.PasswordHash = *o.PasswordHash
	}
	if o.AllowOrigin != nil {
		c.AllowOrigin = *o.AllowOrigin
	}
	if o.CullIdleSeconds != nil {
		c.CullIdleSeconds = *o.CullIdleSeconds
	}
	if o.DefaultKernel != nil {
		c.DefaultKernel = *o.DefaultKernel
	}
}
