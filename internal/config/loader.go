package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigFile = "config.yaml"

// Load builds the Config shared by the TUI, the explain command and the
// Lambda. Environment variables win over the YAML file, which wins over the
// env-default tags.
//
// CONFIG_PATH names a file that must exist. Without it a config.yaml in the
// working directory is read when present; a Lambda usually has none and runs
// from env alone.
func Load() (*Config, error) {
	var cfg Config

	path, required := configFile()
	if err := readInto(&cfg, path, required); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// configFile reports the file to read and whether it must exist.
func configFile() (string, bool) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return defaultConfigFile, false
}

func readInto(cfg *Config, path string, required bool) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return nil
	case required || !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("config: file %s: %w", path, err)
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("config: read env: %w", err)
	}
	return nil
}
