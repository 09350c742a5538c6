package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	FileName = "ridit.toml"

	EnvConfig          = "RIDIT_CONFIG"
	EnvDownloadThreads = "RIDIT_DOWNLOAD_THREADS"
	EnvTimeout         = "RIDIT_TIMEOUT"
	EnvPath            = "RIDIT_PATH"
	EnvPort            = "RIDIT_PORT"
)

// DefaultPath returns where ridit.toml lives unless RIDIT_CONFIG says otherwise.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(dir, "ridit", FileName)
}

// Load builds the configuration from defaults, the file at path, .env files and
// the environment, in that order. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".ridit.env"))
	}

	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes the file at path on top of the defaults.
// Subreddits and profiles are taken from the file as a whole, not merged with the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("config file does not exist, using defaults")
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: couldn't read config(path=%s)", err, path)
	}

	cfg.Subreddits = nil
	cfg.Profiles = nil
	if _, err := toml.NewDecoder(bytes.NewReader(b)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: bad configuration(path=%s)", err, path)
	}
	if cfg.Subreddits == nil {
		cfg.Subreddits = make(map[string]Subreddit)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	for id, sub := range cfg.Subreddits {
		if sub.ProperName == "" {
			sub.ProperName = id
			cfg.Subreddits[id] = sub
		}
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	if v := os.Getenv(EnvDownloadThreads); v != "" {
		if c.DownloadThreads, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: parsing %s", err, EnvDownloadThreads)
		}
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if c.Timeout, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: parsing %s", err, EnvTimeout)
		}
	}
	if v := os.Getenv(EnvPort); v != "" {
		if c.Server.Port, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("%w: parsing %s", err, EnvPort)
		}
	}
	if v := os.Getenv(EnvPath); v != "" {
		c.Path = v
	}
	return nil
}

// Save writes the configuration to path through a temporary file and a rename.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("%w: couldn't create directory(name=%s)", err, filepath.Dir(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), FileName+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: couldn't encode config", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: couldn't replace config(path=%s)", err, path)
	}

	log.Debug().Str("path", path).Msg("saved configuration")
	return nil
}
