package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"

	"github.com/mottu/mottu-cli/internal/api"
)

// withMockKeyring sets up a mock keyring for the duration of a test
func withMockKeyring(t *testing.T, ring keyring.Keyring) {
	t.Helper()
	t.Cleanup(SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	}))
}

// withFailingKeyring sets up a keyring that always fails to open
func withFailingKeyring(t *testing.T, err error) {
	t.Helper()
	t.Cleanup(SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return nil, err
	}))
}

// clearEnv unsets the variables LoadAccount consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvBaseURL, EnvToken, EnvProfile, EnvAPIVersion, EnvPathsFile} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestProfileKey(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		expected string
	}{
		{"empty profile is the default one", "", profilePrefix + "default"},
		{"blank profile is the default one", "  ", profilePrefix + "default"},
		{"named profile", "staging", profilePrefix + "staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := profileKey(tt.profile); got != tt.expected {
				t.Errorf("profileKey(%q) = %q, want %q", tt.profile, got, tt.expected)
			}
		})
	}
}

func TestSaveAndLoadProfile(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	want := Account{BaseURL: "https://mottu.example.com", Token: "jwt", Username: "ana"}
	if err := SaveProfile("staging", want); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := LoadProfile("staging")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got != want {
		t.Errorf("LoadProfile = %+v, want %+v", got, want)
	}

	current, err := CurrentProfile()
	if err != nil || current != "staging" {
		t.Errorf("CurrentProfile = %q, %v", current, err)
	}

	account, err := LoadAccount()
	if err != nil || account != want {
		t.Errorf("LoadAccount = %+v, %v", account, err)
	}
}

func TestLoadProfile_NotConfigured(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	_, err := LoadProfile("missing")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestLoadAccount_EnvOverride(t *testing.T) {
	clearEnv(t)
	withFailingKeyring(t, errors.New("keyring must not be opened"))
	t.Setenv(EnvBaseURL, "http://localhost:5000/")
	t.Setenv(EnvToken, "env-token")

	account, err := LoadAccount()
	if err != nil {
		t.Fatalf("LoadAccount: %v", err)
	}
	if account.BaseURL != "http://localhost:5000" || account.Token != "env-token" {
		t.Errorf("LoadAccount = %+v", account)
	}
}

func TestLoadAccount_ProfileEnv(t *testing.T) {
	clearEnv(t)
	ring := keyring.NewArrayKeyring(nil)
	withMockKeyring(t, ring)
	if err := SaveProfile("prod", Account{BaseURL: "https://prod"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveProfile("dev", Account{BaseURL: "https://dev"}); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvProfile, "prod")
	account, err := LoadAccount()
	if err != nil || account.BaseURL != "https://prod" {
		t.Errorf("LoadAccount = %+v, %v", account, err)
	}
}

func TestLoadAccount_KeyringFailure(t *testing.T) {
	clearEnv(t)
	withFailingKeyring(t, errors.New("locked"))

	if _, err := LoadAccount(); err == nil || !strings.Contains(err.Error(), "locked") {
		t.Errorf("Expected keyring error, got %v", err)
	}
}

func TestClearToken(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	if err := SaveProfile("", Account{BaseURL: "https://x", Token: "t", Username: "ana"}); err != nil {
		t.Fatal(err)
	}
	if err := ClearToken(""); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	account, err := LoadProfile("")
	if err != nil {
		t.Fatal(err)
	}
	if account.Token != "" || account.BaseURL != "https://x" {
		t.Errorf("account = %+v", account)
	}

	if err := ClearToken("never-saved"); err != nil {
		t.Errorf("ClearToken on a missing profile should be a no-op, got %v", err)
	}
}

func TestDeleteProfile(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	_ = SaveProfile("a", Account{BaseURL: "https://a"})
	_ = SaveProfile("b", Account{BaseURL: "https://b"})

	if err := DeleteProfile("b"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	profiles, err := ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 || profiles[0] != "a" {
		t.Errorf("profiles = %v", profiles)
	}
	if current, _ := CurrentProfile(); current != "a" {
		t.Errorf("CurrentProfile = %q, want a", current)
	}
}

func TestShouldForceFileBackend(t *testing.T) {
	tests := []struct {
		goos    string
		backend backendMode
		dbus    string
		want    bool
	}{
		{"linux", keyringBackendAuto, "", true},
		{"linux", keyringBackendAuto, "unix:path=/run/bus", false},
		{"darwin", keyringBackendAuto, "", false},
		{"darwin", keyringBackendFile, "", true},
		{"linux", keyringBackendSystem, "", false},
	}
	for _, tt := range tests {
		if got := shouldForceFileBackend(tt.goos, tt.backend, tt.dbus); got != tt.want {
			t.Errorf("shouldForceFileBackend(%q, %q, %q) = %v, want %v", tt.goos, tt.backend, tt.dbus, got, tt.want)
		}
	}
}

func TestParseBackendMode(t *testing.T) {
	tests := map[string]backendMode{
		"":        keyringBackendAuto,
		"auto":    keyringBackendAuto,
		"FILE":    keyringBackendFile,
		"native":  keyringBackendSystem,
		" os ":    keyringBackendSystem,
		"unknown": keyringBackendAuto,
	}
	for raw, want := range tests {
		if got := parseBackendMode(raw); got != want {
			t.Errorf("parseBackendMode(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestListProfiles_SortedAndUnique(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	for _, name := range []string{"prod", "dev", "prod"} {
		if err := SaveProfile(name, Account{BaseURL: "https://" + name}); err != nil {
			t.Fatal(err)
		}
	}
	profiles, err := ListProfiles()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(profiles, ",") != "dev,prod" {
		t.Errorf("profiles = %v", profiles)
	}
}

func TestKeyringFileDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envCredentialsDir, dir)
	if got := keyringFileDir(); got != filepath.Join(dir, "keyring") {
		t.Errorf("keyringFileDir = %q", got)
	}
}

func TestKeyringFilePassword_NonInteractive(t *testing.T) {
	t.Setenv(envKeyringPassword, "")
	original := stdinHasTTY
	stdinHasTTY = func() bool { return false }
	t.Cleanup(func() { stdinHasTTY = original })

	if _, err := keyringFilePassword("pw"); err == nil {
		t.Error("Expected an error without a TTY or password")
	}

	t.Setenv(envKeyringPassword, "s3cret")
	if pw, err := keyringFilePassword("pw"); err != nil || pw != "s3cret" {
		t.Errorf("keyringFilePassword = %q, %v", pw, err)
	}
}

func TestResolveClientConfig(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	t.Setenv(EnvPathsFile, "")
	original := userConfigDir
	userConfigDir = func() (string, error) { return t.TempDir(), nil }
	t.Cleanup(func() { userConfigDir = original })

	if _, err := ResolveClientConfig("", ""); err == nil {
		t.Error("Expected an error without a base URL")
	}

	if err := SaveProfile("", Account{BaseURL: "https://stored", Token: "tok"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := ResolveClientConfig("", "")
	if err != nil {
		t.Fatalf("ResolveClientConfig: %v", err)
	}
	if cfg.BaseURL != "https://stored" || cfg.Token != "tok" || cfg.APIVersion != api.DefaultAPIVersion {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg, err = ResolveClientConfig("", "https://flag/")
	if err != nil || cfg.BaseURL != "https://flag" {
		t.Errorf("override: cfg = %+v, %v", cfg, err)
	}

	if err := SaveProfile("staging", Account{BaseURL: "https://staging"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = ResolveClientConfig("default", "")
	if err != nil || cfg.BaseURL != "https://stored" {
		t.Errorf("explicit profile: cfg = %+v, %v", cfg, err)
	}
	if _, err := ResolveClientConfig("missing", ""); err == nil {
		t.Error("Expected an error for an unknown profile without a base URL")
	}
}

func TestResolveAPIVersion(t *testing.T) {
	tests := []struct {
		env     string
		want    string
		wantErr bool
	}{
		{"", api.DefaultAPIVersion, false},
		{"2.0", "2.0", false},
		{"v1.1", "1.1", false},
		{"3", "3", false},
		{"latest", "", true},
		{"1.x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(EnvAPIVersion, tt.env)
			got, err := ResolveAPIVersion()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveAPIVersion = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MOTTU_TEST_DOTENV=from-file\nMOTTU_TEST_EXPORTED=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOTTU_TEST_DOTENV", "")
	_ = os.Unsetenv("MOTTU_TEST_DOTENV")
	t.Setenv("MOTTU_TEST_EXPORTED", "exported")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("MOTTU_TEST_DOTENV"); got != "from-file" {
		t.Errorf("MOTTU_TEST_DOTENV = %q", got)
	}
	if got := os.Getenv("MOTTU_TEST_EXPORTED"); got != "exported" {
		t.Errorf("exported variable was overridden: %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
