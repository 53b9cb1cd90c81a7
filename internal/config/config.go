// Package config loads cnxpopulate.yaml, the optional per-directory settings
// file of cnx-populate. CLI flags and environment variables override it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the name Load looks for.
const ConfigFileName = "cnxpopulate.yaml"

// ConnectionConfig holds archive connection defaults. Passwords are never
// read from the file; use $PGPASSWORD, ~/.pgpass or a connection string.
type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// ProjectConfig is the content of cnxpopulate.yaml.
type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Licenses is a JSON or YAML license list, relative to the config file.
	Licenses string `yaml:"licenses"`

	// RetainSource registers the collection document as a file of the
	// collection. Unset means true.
	RetainSource *bool `yaml:"retain_source"`

	AllowUnknownLicense bool   `yaml:"allow_unknown_license"`
	Timeout             string `yaml:"timeout"`

	dir string
}

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configPath, err)
	}
	cfg.dir = dir
	return &cfg, nil
}

// LicensesPath returns the license list path resolved against the config
// directory, or "" when none is configured.
func (c *ProjectConfig) LicensesPath() string {
	if c == nil || c.Licenses == "" {
		return ""
	}
	if filepath.IsAbs(c.Licenses) || c.dir == "" {
		return c.Licenses
	}
	return filepath.Join(c.dir, c.Licenses)
}

// RetainSourceBuffer reports whether the collection document is retained.
func (c *ProjectConfig) RetainSourceBuffer() bool {
	if c == nil || c.RetainSource == nil {
		return true
	}
	return *c.RetainSource
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, ConfigFileName, err)
	}
	return d, nil
}
