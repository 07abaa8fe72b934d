package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"immoscope/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "immoscope" // application name used for config directory

// Defaults applied by DefaultConfig and by Normalize when a field is unset.
const (
	DefaultGeocodeBaseURL = "https://api-adresse.data.gouv.fr"
	DefaultDVFBaseURL     = "https://api.cquest.org/dvf"
	DefaultINSEEBaseURL   = "https://api.insee.fr/series/BDM/V1"

	DefaultAdapterTimeoutSeconds = 8
	DefaultCacheTTLHours         = 6
)

// Config holds user configuration for immoscope.
type Config struct {
	// Base URLs for the external data adapters. Overridable mainly for tests
	// and for users behind mirrors of the public APIs.
	GeocodeBaseURL string `yaml:"geocode_base_url"`
	DVFBaseURL     string `yaml:"dvf_base_url"`
	INSEEBaseURL   string `yaml:"insee_base_url"`

	// AdapterTimeoutSeconds bounds every outbound adapter call.
	AdapterTimeoutSeconds int `yaml:"adapter_timeout_seconds"`

	// CacheTTLHours bounds how long a resolved price estimate is reused.
	CacheTTLHours int `yaml:"cache_ttl_hours"`

	// DatasetPath optionally overrides the bundled benchmark dataset.
	DatasetPath string `yaml:"dataset_path,omitempty"`

	Version  string `yaml:"version"`   // Track config version
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config paths", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location.
// If no config exists, defaults are returned so the server can run unconfigured.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		cfg := DefaultConfig()
		return &cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Normalize()
	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	// Check primary location first
	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GeocodeBaseURL:        DefaultGeocodeBaseURL,
		DVFBaseURL:            DefaultDVFBaseURL,
		INSEEBaseURL:          DefaultINSEEBaseURL,
		AdapterTimeoutSeconds: DefaultAdapterTimeoutSeconds,
		CacheTTLHours:         DefaultCacheTTLHours,
		Version:               "1.0",
		InitTime:              0, // Will be set during first save
	}
}

// Normalize fills unset fields with defaults so a partial config file is usable.
func (c *Config) Normalize() {
	if c.GeocodeBaseURL == "" {
		c.GeocodeBaseURL = DefaultGeocodeBaseURL
	}
	if c.DVFBaseURL == "" {
		c.DVFBaseURL = DefaultDVFBaseURL
	}
	if c.INSEEBaseURL == "" {
		c.INSEEBaseURL = DefaultINSEEBaseURL
	}
	if c.AdapterTimeoutSeconds <= 0 {
		c.AdapterTimeoutSeconds = DefaultAdapterTimeoutSeconds
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = DefaultCacheTTLHours
	}
	if c.Version == "" {
		c.Version = "1.0"
	}
}

// AdapterTimeout returns the per-call timeout for outbound adapter requests.
func (c *Config) AdapterTimeout() time.Duration {
	return time.Duration(c.AdapterTimeoutSeconds) * time.Second
}

// CacheTTL returns how long resolved market data may be served from cache.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
