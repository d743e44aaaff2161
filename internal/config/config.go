package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Auth struct {
		SessionTTLHours int64 `yaml:"session_ttl_hours"`
		NonceTTLMinutes int64 `yaml:"nonce_ttl_minutes"`
	} `yaml:"auth"`
	Admin struct {
		// Reject a new DJ request while the caller already has one pending.
		SinglePendingRequest bool   `yaml:"single_pending_request"`
		BootstrapEmail       string `yaml:"bootstrap_email"`
		BootstrapPassword    string `yaml:"bootstrap_password"`
	} `yaml:"admin"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":4001"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data.sqlite"
	}
	if c.Auth.SessionTTLHours <= 0 {
		c.Auth.SessionTTLHours = 7 * 24
	}
	if c.Auth.NonceTTLMinutes <= 0 {
		c.Auth.NonceTTLMinutes = 5
	}
}
