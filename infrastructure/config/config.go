// Package config loads the desk configuration from a YAML file with
// environment overrides applied by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the garagedesk configuration file shape.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	SQLitePath     string `yaml:"sqlite_path"`
	BackendBaseURL string `yaml:"backend_base_url"`
	CredentialPath string `yaml:"credential_path"`

	// Poll intervals per screen; the work order table refreshes faster than
	// the spare screens.
	WorkOrderPollSeconds int `yaml:"work_order_poll_seconds"`
	SparePollSeconds     int `yaml:"spare_poll_seconds"`

	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ListenAddr:            ":8080",
		SQLitePath:            "garagedesk.db",
		BackendBaseURL:        "http://localhost:9000",
		CredentialPath:        "garagedesk.cred",
		WorkOrderPollSeconds:  5,
		SparePollSeconds:      10,
		RequestTimeoutSeconds: 30,
	}
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist. Unset fields keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the pollers and client cannot run with.
func (c Config) Validate() error {
	if c.BackendBaseURL == "" {
		return fmt.Errorf("backend_base_url is required")
	}
	if c.WorkOrderPollSeconds <= 0 || c.SparePollSeconds <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	return nil
}

// WorkOrderPollInterval returns the work order screen refresh period.
func (c Config) WorkOrderPollInterval() time.Duration {
	return time.Duration(c.WorkOrderPollSeconds) * time.Second
}

// SparePollInterval returns the spare screens refresh period.
func (c Config) SparePollInterval() time.Duration {
	return time.Duration(c.SparePollSeconds) * time.Second
}

// RequestTimeout returns the backend HTTP client timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
