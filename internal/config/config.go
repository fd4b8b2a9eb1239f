package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/99designs/keyring"
)

const (
	defaultProfile    = "default"
	profilePrefix     = "profile/"
	profileIndexKey   = "profiles"
	currentProfileKey = "current"
)

// Account is a persisted session: the backend it belongs to and the token
// issued at login.
type Account struct {
	BaseURL  string `json:"base_url"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

// ErrNotConfigured is returned when no session is stored for a profile.
var ErrNotConfigured = errors.New("mottu not configured - run 'mottu auth login' first")

func profileName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return defaultProfile
	}
	return name
}

func profileKey(name string) string {
	return profilePrefix + profileName(name)
}

// store is an opened keyring holding the profiles, the profile index and the
// current profile marker.
type store struct {
	ring keyring.Keyring
}

func openStore() (*store, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &store{ring: ring}, nil
}

func (s *store) account(name string) (Account, error) {
	item, err := s.ring.Get(profileKey(name))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return Account{}, ErrNotConfigured
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to read profile %q: %w", profileName(name), err)
	}
	var account Account
	if err := json.Unmarshal(item.Data, &account); err != nil {
		return Account{}, fmt.Errorf("profile %q is corrupt: %w", profileName(name), err)
	}
	return account, nil
}

func (s *store) putAccount(name string, account Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	if err := s.ring.Set(keyring.Item{Key: profileKey(name), Data: data}); err != nil {
		return fmt.Errorf("failed to save profile %q: %w", profileName(name), err)
	}
	return nil
}

// names returns the profile index, sorted and free of duplicates.
func (s *store) names() ([]string, error) {
	item, err := s.ring.Get(profileIndexKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile index: %w", err)
	}
	var names []string
	if err := json.Unmarshal(item.Data, &names); err != nil {
		return nil, fmt.Errorf("profile index is corrupt: %w", err)
	}
	return names, nil
}

func (s *store) putNames(names []string) error {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	slices.Sort(cleaned)
	data, err := json.Marshal(slices.Compact(cleaned))
	if err != nil {
		return err
	}
	return s.ring.Set(keyring.Item{Key: profileIndexKey, Data: data})
}

func (s *store) current() (string, error) {
	item, err := s.ring.Get(currentProfileKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return defaultProfile, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current profile: %w", err)
	}
	return profileName(string(item.Data)), nil
}

func (s *store) setCurrent(name string) error {
	return s.ring.Set(keyring.Item{Key: currentProfileKey, Data: []byte(profileName(name))})
}

// LoadAccount returns the active session. MOTTU_BASE_URL (with an optional
// MOTTU_TOKEN) bypasses the keychain entirely; otherwise MOTTU_PROFILE or the
// current profile is read.
func LoadAccount() (Account, error) {
	if baseURL := envValue(EnvBaseURL); baseURL != "" {
		return Account{
			BaseURL: strings.TrimSuffix(baseURL, "/"),
			Token:   envValue(EnvToken),
		}, nil
	}
	if profile := envValue(EnvProfile); profile != "" {
		return LoadProfile(profile)
	}

	s, err := openStore()
	if err != nil {
		return Account{}, err
	}
	current, err := s.current()
	if err != nil {
		return Account{}, err
	}
	return s.account(current)
}

// LoadAccountFor is LoadAccount with an explicit profile taking precedence
// over the environment.
func LoadAccountFor(profile string) (Account, error) {
	if profile != "" {
		return LoadProfile(profile)
	}
	return LoadAccount()
}

// LoadProfile returns the session stored under a named profile.
func LoadProfile(profile string) (Account, error) {
	s, err := openStore()
	if err != nil {
		return Account{}, err
	}
	return s.account(profile)
}

// SaveProfile stores the session under a named profile and makes it current.
func SaveProfile(profile string, account Account) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	if err := s.putAccount(profile, account); err != nil {
		return err
	}
	names, err := s.names()
	if err != nil {
		return err
	}
	if err := s.putNames(append(names, profileName(profile))); err != nil {
		return err
	}
	return s.setCurrent(profile)
}

// ClearToken forgets the token of a profile but keeps its base URL, so the
// next login needs no --base-url. A profile that was never saved is ignored.
func ClearToken(profile string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	account, err := s.account(profile)
	if errors.Is(err, ErrNotConfigured) {
		return nil
	}
	if err != nil {
		return err
	}
	account.Token = ""
	return s.putAccount(profile, account)
}

// DeleteProfile removes a stored profile. When it was current, the first
// remaining profile takes over.
func DeleteProfile(profile string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	name := profileName(profile)
	if err := s.ring.Remove(profileKey(name)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove profile %q: %w", name, err)
	}

	names, err := s.names()
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	if err := s.putNames(names); err != nil {
		return err
	}

	if current, err := s.current(); err == nil && current == name {
		next := defaultProfile
		if len(names) > 0 {
			next = names[0]
		}
		return s.setCurrent(next)
	}
	return nil
}

// ListProfiles returns the stored profile names in order.
func ListProfiles() ([]string, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	return s.names()
}

// CurrentProfile returns the active profile name, "default" when none was
// chosen.
func CurrentProfile() (string, error) {
	s, err := openStore()
	if err != nil {
		return "", err
	}
	return s.current()
}

// SetCurrentProfile marks profile as active.
func SetCurrentProfile(profile string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	return s.setCurrent(profile)
}
