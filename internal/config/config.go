package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/spacefrags/kopia-status/internal/model"
)

type Config struct {
	HTTPListenAddr string           `yaml:"listen_addr" validate:"required"`
	LogLevel       string           `yaml:"log_level"`
	StateFile      string           `yaml:"state_file" validate:"required"`
	Instances      []InstanceConfig `yaml:"instances" validate:"dive"`
}

// InstanceConfig declares one webhook instance to register at boot.
type InstanceConfig struct {
	WebhookID    string `yaml:"webhook_id" validate:"required,webhook_id"`
	Name         string `yaml:"name" validate:"omitempty,max=64"`
	HistoryLimit int    `yaml:"history_limit" validate:"omitempty,min=5,max=40"`
}

var validate = validator.New()

var webhookIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

func init() {
	validate.RegisterValidation("webhook_id", func(fl validator.FieldLevel) bool {
		return webhookIDRegex.MatchString(fl.Field().String())
	})
}

// Load builds the config from defaults, an optional YAML file, and
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPListenAddr: ":8123",
		LogLevel:       "info",
		StateFile:      "kopia-status-state.json",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.HTTPListenAddr = getEnv("HTTP_LISTEN_ADDR", cfg.HTTPListenAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.StateFile = getEnv("STATE_FILE", cfg.StateFile)

	for i := range cfg.Instances {
		if cfg.Instances[i].HistoryLimit == 0 {
			cfg.Instances[i].HistoryLimit = model.DefaultHistoryLimit
		}
	}

	return cfg, nil
}

// Validate checks field constraints and webhook ID uniqueness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Instances))
	for _, inst := range c.Instances {
		if seen[inst.WebhookID] {
			return fmt.Errorf("duplicate webhook_id %q in config", inst.WebhookID)
		}
		seen[inst.WebhookID] = true
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
