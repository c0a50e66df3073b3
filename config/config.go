// Package config reads the run configuration of wallet sessions from the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/networkteam/keplrflow"
	"github.com/networkteam/keplrflow/driver/pwdriver"
)

// Environment variables
const (
	EnvSecret              = "KEPLR_SECRET_WORDS_OR_PRIVATE_KEY"
	EnvPassword            = "KEPLR_PASSWORD"
	EnvNewAccount          = "KEPLR_NEW_ACCOUNT"
	EnvExtensionPath       = "KEPLR_EXTENSION_PATH"
	EnvHeadless            = "KEPLR_HEADLESS"
	EnvNotificationTimeout = "KEPLR_NOTIFICATION_TIMEOUT"
	EnvVersionConstraint   = "KEPLR_VERSION_CONSTRAINT"
)

// DefaultEnvFile is read by Load when no files are given. It may be missing.
const DefaultEnvFile = ".env"

var ErrMissingSecret = errors.New(EnvSecret + " is not set")

type Config struct {
	// SecretWordsOrPrivateKey is a recovery phrase (words separated by spaces) or a private key
	SecretWordsOrPrivateKey string
	Password                string
	NewAccount              bool

	ExtensionPath       string
	Headless            bool
	NotificationTimeout time.Duration
	VersionConstraint   string
}

// Load reads the configuration from the environment, falling back to values of the given .env files.
// Variables set in the environment take precedence over the files.
func Load(files ...string) (Config, error) {
	values, err := readEnvFiles(files)
	if err != nil {
		return Config{}, err
	}

	return parse(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	})
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		values, err := godotenv.Read(DefaultEnvFile)
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", DefaultEnvFile, err)
		}
		return values, nil
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("reading env files: %w", err)
	}
	return values, nil
}

func parse(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	cfg.SecretWordsOrPrivateKey, _ = lookup(EnvSecret)
	cfg.Password, _ = lookup(EnvPassword)
	cfg.ExtensionPath, _ = lookup(EnvExtensionPath)
	cfg.VersionConstraint, _ = lookup(EnvVersionConstraint)

	var err error
	if cfg.NewAccount, err = parseBool(lookup, EnvNewAccount); err != nil {
		return Config{}, err
	}
	if cfg.Headless, err = parseBool(lookup, EnvHeadless); err != nil {
		return Config{}, err
	}
	if v, ok := lookup(EnvNotificationTimeout); ok && v != "" {
		cfg.NotificationTimeout, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", EnvNotificationTimeout, err)
		}
	}

	return cfg, nil
}

func parseBool(lookup func(string) (string, bool), key string) (bool, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}

// OnboardingRequest builds the wallet import request
func (c Config) OnboardingRequest() (keplrflow.OnboardingRequest, error) {
	if c.SecretWordsOrPrivateKey == "" {
		return keplrflow.OnboardingRequest{}, ErrMissingSecret
	}
	return keplrflow.OnboardingRequest{
		Secret:     keplrflow.ParseSecretMaterial(c.SecretWordsOrPrivateKey),
		Password:   c.Password,
		NewAccount: c.NewAccount,
	}, nil
}

// DriverOptions returns playwright driver options for the configured extension
func (c Config) DriverOptions() pwdriver.Options {
	return pwdriver.Options{
		ExtensionPath:       c.ExtensionPath,
		Headless:            c.Headless,
		NotificationTimeout: c.NotificationTimeout,
	}
}

// SessionOptions returns session options with the configured version constraint
func (c Config) SessionOptions() keplrflow.Options {
	return keplrflow.Options{
		VersionConstraint: c.VersionConstraint,
	}
}
