package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfig   = "WARDEN_CONFIG"
	EnvLogLevel = "WARDEN_LOG_LEVEL"

	defaultFile = "warden.yaml"
)

// Load layers defaults, the discovered YAML file and environment
// overrides, then validates the result
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if file := discoverConfigFile(path); len(file) != 0 {
		if err := loadYAMLFile(file, &cfg); err != nil {
			return nil, errors.Wrapf(err, "load config file %s", file)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}

	return &cfg, nil
}

// discoverConfigFile tries the explicit path, then WARDEN_CONFIG, then
// ./warden.yaml. It returns "" when nothing is found.
func discoverConfigFile(path string) string {
	if len(path) != 0 {
		return path
	}

	if env := os.Getenv(EnvConfig); len(env) != 0 {
		return env
	}

	if _, err := os.Stat(defaultFile); err == nil {
		return defaultFile
	}

	return ""
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); len(level) != 0 {
		cfg.LogLevel = level
	}
}
