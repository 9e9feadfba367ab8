// Package config provides the configuration structure for pfaudit, matching
// the schema of pfaudit.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full pfaudit configuration file.
type Config struct {
	// DatabasePath is the SQLite file holding devices and reviews.
	DatabasePath string `yaml:"database"`

	Catalog CatalogConfig `yaml:"catalog"`
	SSH     SSHConfig     `yaml:"ssh"`
	Export  ExportConfig  `yaml:"export"`

	LogFile string `yaml:"logfile,omitempty"`
}

// CatalogConfig names the benchmark sources. The CKL file is authoritative;
// the JSON file is the fallback when the CKL is missing or unparseable.
type CatalogConfig struct {
	CKLPath  string `yaml:"ckl"`
	JSONPath string `yaml:"json"`
}

// SSHConfig holds the connection defaults applied to every device audit.
type SSHConfig struct {
	KeyFile        string `yaml:"key_file,omitempty"`
	KnownHostsFile string `yaml:"known_hosts,omitempty"`
	// InsecureSkipHostKeyVerify disables host key checks. Off by default.
	InsecureSkipHostKeyVerify bool     `yaml:"insecure_skip_host_key_verify,omitempty"`
	Timeout                   Duration `yaml:"timeout,omitempty"`
	// ConfigPath is the remote path of the appliance configuration export.
	ConfigPath string `yaml:"config_path,omitempty"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ExportConfig holds report output settings.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// NewDefaultConfig returns a Config populated with safe defaults.
func NewDefaultConfig() *Config {
	return &Config{
		DatabasePath: "pfaudit.db",
		Catalog: CatalogConfig{
			CKLPath:  "data/benchmark.ckl",
			JSONPath: "data/benchmark.json",
		},
		SSH: SSHConfig{
			Timeout:    Duration(30 * time.Second),
			ConfigPath: "/conf/config.xml",
		},
		Export: ExportConfig{
			Dir: "exports",
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing file is
// not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
