// Package config resolves which server to talk to and with which
// credentials. Values come from, in increasing priority:
//
//  1. <name>.json5
//  2. <name>.local.json5
//  3. the environment (a .env file is loaded into it first)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"odk-pull/internal/components/configutil"
	"odk-pull/internal/components/telemetry"
	"odk-pull/internal/odk"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProvider       = "ODK_PROVIDER"
	EnvUrl            = "ODK_URL"
	EnvUsername       = "ODK_USERNAME"
	EnvPassword       = "ODK_PASSWORD"
	EnvTimeoutSeconds = "ODK_TIMEOUT_SECONDS"
)

// ErrMissingSetting is returned when a required value is found in neither the
// config files nor the environment.
var ErrMissingSetting = errors.New("missing setting")

type Config struct {
	// one of "ona", "kobo", "central" (or "getodk")
	Provider string `json:"provider"`
	Url      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// if unspecified, odk.DefaultTimeout is used
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Load reads the config file at `path` (missing files are fine), loads
// `envFile` into the environment if it exists and applies the ODK_*
// environment overrides.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if path != "" {
		var err error
		cfg, err = configutil.ReadConfig[Config](path)
		if os.IsNotExist(err) {
			slog.Debug("no config file, using environment only", "path", path)
			cfg = Config{}
		} else if err != nil {
			return Config{}, err
		}
	}

	err := cfg.applyEnv()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv(EnvProvider); ok && value != "" {
		c.Provider = value
	}
	if value, ok := os.LookupEnv(EnvUrl); ok && value != "" {
		c.Url = value
	}
	if value, ok := os.LookupEnv(EnvUsername); ok && value != "" {
		c.Username = value
	}
	if value, ok := os.LookupEnv(EnvPassword); ok {
		c.Password = value
	}
	if value, ok := os.LookupEnv(EnvTimeoutSeconds); ok && value != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeoutSeconds, err)
		}
		c.TimeoutSeconds = seconds
	}
	return nil
}

// Validate checks that every value needed to open a connection is present.
func (c Config) Validate() error {
	var missing []string
	if c.Provider == "" {
		missing = append(missing, "provider")
	}
	if c.Url == "" {
		missing = append(missing, "url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Options converts the config into connection options.
func (c Config) Options(tel telemetry.API) odk.Options {
	return odk.Options{
		Username:  c.Username,
		Password:  c.Password,
		Url:       c.Url,
		Timeout:   time.Duration(c.TimeoutSeconds) * time.Second,
		Telemetry: tel,
	}
}
