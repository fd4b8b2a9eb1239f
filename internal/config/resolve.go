package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"

	"github.com/mottu/mottu-cli/internal/api"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	BaseURL    string
	Token      string
	APIVersion string
	Paths      api.PathSet
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment. Variables
// already exported win, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ResolveClientConfig combines the stored session, the environment and the
// --base-url override, in increasing order of precedence. A non-empty profile
// selects that stored profile instead of the current one.
func ResolveClientConfig(profile, baseURLOverride string) (ClientConfig, error) {
	var cfg ClientConfig

	account, err := LoadAccountFor(profile)
	if err != nil && !errors.Is(err, ErrNotConfigured) {
		return ClientConfig{}, err
	}
	cfg.BaseURL = account.BaseURL
	cfg.Token = account.Token

	if baseURLOverride != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURLOverride, "/")
	}
	if cfg.BaseURL == "" {
		return ClientConfig{}, fmt.Errorf("base URL not configured (set %s, run 'mottu auth login --base-url', or pass --base-url)", EnvBaseURL)
	}

	cfg.APIVersion, err = ResolveAPIVersion()
	if err != nil {
		return ClientConfig{}, err
	}

	cfg.Paths, err = LoadPaths()
	if err != nil {
		return ClientConfig{}, err
	}

	return cfg, nil
}

// ResolveAPIVersion returns MOTTU_API_VERSION, or the default. The value must be
// a version such as "1.0" or "2".
func ResolveAPIVersion() (string, error) {
	version := envValue(EnvAPIVersion)
	if version == "" {
		return api.DefaultAPIVersion, nil
	}
	if !semver.IsValid("v" + strings.TrimPrefix(version, "v")) {
		return "", fmt.Errorf("invalid %s %q: expected a version like 1.0", EnvAPIVersion, version)
	}
	return strings.TrimPrefix(version, "v"), nil
}
