package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultListenAddr       = ":3120"
	DefaultDirectoryTimeout = 3 * time.Second
	DefaultProbeInterval    = 30 * time.Second
	DefaultClockSkew        = 5 * time.Second
	maxClockSkew            = 5 * time.Minute
)

type Config struct {
	Listen    string          `yaml:"listen"`
	Directory DirectoryConfig `yaml:"directory"`
	Auth      AuthConfig      `yaml:"auth"`
	Audit     AuditConfig     `yaml:"audit"`
	SelfCheck SelfCheckConfig `yaml:"self_check"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DirectoryConfig selects and configures the key-value backend holding public keys.
type DirectoryConfig struct {
	Type string `yaml:"type"` // e.g., "memory", "redis", "consul"

	// Timeout bounds every single directory operation.
	Timeout time.Duration `yaml:"timeout"`

	// ProbeInterval is the period of the background reachability probe.
	ProbeInterval time.Duration `yaml:"probe_interval"`

	// Options are backend specific and decoded by the backend.
	Options map[string]any `yaml:"options"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	// ClockSkew is the leeway applied to exp, nbf and iat.
	ClockSkew time.Duration `yaml:"clock_skew"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"

	// Capacity is the number of entries the memory auditor retains. 0 uses the default.
	Capacity int `yaml:"capacity"`
}

// SelfCheckConfig enables the startup key pair check of the vault's own identity.
type SelfCheckConfig struct {
	Identity string `yaml:"identity"`

	// PrivateKeyFile points to a PEM file holding the identity's private key.
	PrivateKeyFile string `yaml:"private_key_file"`

	// Required makes a failed check abort the startup.
	Required bool `yaml:"required"`
}

func (s SelfCheckConfig) Enabled() bool {
	return s.Identity != "" && s.PrivateKeyFile != ""
}

type TelemetryConfig struct {
	// OTLPEndpoint enables trace export via OTLP/HTTP when set.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListenAddr
	}
	if c.Directory.Type == "" {
		c.Directory.Type = "memory"
	}
	if c.Directory.Timeout == 0 {
		c.Directory.Timeout = DefaultDirectoryTimeout
	}
	if c.Directory.ProbeInterval == 0 {
		c.Directory.ProbeInterval = DefaultProbeInterval
	}
	if c.Auth.ClockSkew == 0 {
		c.Auth.ClockSkew = DefaultClockSkew
	}
	if c.Audit.Enabled && c.Audit.Type == "" {
		c.Audit.Type = "memory"
	}
}

func (c *Config) Validate() error {
	switch c.Directory.Type {
	case "memory", "redis", "consul":
	default:
		return fmt.Errorf("unknown directory type '%s'", c.Directory.Type)
	}
	if c.Directory.Timeout < 0 {
		return fmt.Errorf("directory.timeout must not be negative")
	}
	if c.Directory.ProbeInterval < 0 {
		return fmt.Errorf("directory.probe_interval must not be negative")
	}
	if c.Auth.ClockSkew < 0 || c.Auth.ClockSkew > maxClockSkew {
		return fmt.Errorf("auth.clock_skew must be between 0 and %s", maxClockSkew)
	}
	if c.Audit.Capacity < 0 {
		return fmt.Errorf("audit.capacity must not be negative")
	}
	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "memory":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for file auditing")
			}
		default:
			return fmt.Errorf("unknown audit type '%s'", c.Audit.Type)
		}
	}
	if (c.SelfCheck.Identity == "") != (c.SelfCheck.PrivateKeyFile == "") {
		return fmt.Errorf("self_check requires both identity and private_key_file")
	}
	return nil
}
