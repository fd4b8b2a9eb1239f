package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "mottu-cli"

// Environment variables read by this package.
const (
	EnvBaseURL    = "MOTTU_BASE_URL"
	EnvToken      = "MOTTU_TOKEN"
	EnvProfile    = "MOTTU_PROFILE"
	EnvAPIVersion = "MOTTU_API_VERSION"
	EnvPathsFile  = "MOTTU_PATHS_FILE"

	envKeyringBackend  = "MOTTU_KEYRING_BACKEND"
	envKeyringPassword = "MOTTU_KEYRING_PASSWORD"
	envCredentialsDir  = "MOTTU_CREDENTIALS_DIR"
)

// backendMode selects where sessions are kept.
type backendMode string

const (
	keyringBackendAuto   backendMode = "auto"
	keyringBackendFile   backendMode = "file"
	keyringBackendSystem backendMode = "system"
)

var openKeyring = keyring.Open

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// SetOpenKeyring replaces the keyring opener and returns a func restoring
// the previous one. Tests use it to install an in-memory keyring.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	previous := openKeyring
	openKeyring = fn
	return func() { openKeyring = previous }
}

func parseBackendMode(raw string) backendMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "file":
		return keyringBackendFile
	case "system", "os", "native":
		return keyringBackendSystem
	default:
		return keyringBackendAuto
	}
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}

	mode := parseBackendMode(os.Getenv(envKeyringBackend))
	if mode == keyringBackendSystem {
		return cfg
	}

	// keyring.Open falls back to the file backend in auto mode.
	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword
	if shouldForceFileBackend(runtime.GOOS, mode, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

// shouldForceFileBackend is true for an explicit file mode, and for auto mode
// on a Linux host with no session bus (containers, CI, SSH sessions).
func shouldForceFileBackend(goos string, mode backendMode, dbusAddr string) bool {
	switch mode {
	case keyringBackendFile:
		return true
	case keyringBackendAuto:
		return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
	}
	return false
}

// Dir returns the directory holding mottu-cli's local state.
func Dir() string {
	if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
		return filepath.Join(dir, serviceName)
	}
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		return filepath.Join(home, ".config", serviceName)
	}
	return filepath.Join(os.TempDir(), serviceName)
}

func keyringFileDir() string {
	if base := envValue(envCredentialsDir); base != "" {
		return filepath.Join(base, "keyring")
	}
	return filepath.Join(Dir(), "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password := envValue(envKeyringPassword); password != "" {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s to unlock the file keyring in non-interactive sessions", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

// envValue returns the trimmed value of key, or "" when unset or blank.
func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
