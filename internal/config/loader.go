package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load assembles the runtime configuration. Values come from the YAML file
// named by CONFIG_PATH, with environment variables overriding the file and
// env-default tags filling the rest. Without CONFIG_PATH the default path is
// tried but may be absent, in which case environment and defaults alone must
// produce a valid config. A CONFIG_PATH that names a missing file is an
// error: an operator who set it expects it to be read.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit {
		path = defaultConfigPath
	}

	var cfg Config
	if err := readInto(&cfg, path, explicit); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func readInto(cfg *Config, path string, explicit bool) error {
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}
