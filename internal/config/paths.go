package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mottu/mottu-cli/internal/api"
)

// pathsFile mirrors api.PathSet with pointers so an explicitly empty list can
// be told apart from an omitted one.
type pathsFile struct {
	Login       *[]string `yaml:"login"`
	Register    *[]string `yaml:"register"`
	Motorcycles *[]string `yaml:"motorcycles"`
	Areas       *[]string `yaml:"areas"`
	Users       *string   `yaml:"users"`
}

// PathsFile returns the location of the candidate path overrides.
func PathsFile() string {
	if path := envValue(EnvPathsFile); path != "" {
		return path
	}
	return filepath.Join(Dir(), "paths.yaml")
}

// LoadPaths returns the default candidate paths with the overrides file applied.
// A missing file at the default location is not an error; a missing file named
// by MOTTU_PATHS_FILE is.
func LoadPaths() (api.PathSet, error) {
	path := PathsFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && envValue(EnvPathsFile) == "" {
			return api.DefaultPaths(), nil
		}
		return api.PathSet{}, fmt.Errorf("failed to read paths file: %w", err)
	}

	override, err := parsePaths(data)
	if err != nil {
		return api.PathSet{}, fmt.Errorf("invalid paths file %s: %w", path, err)
	}
	paths := api.DefaultPaths().Merge(override)
	if err := paths.Validate(); err != nil {
		return api.PathSet{}, fmt.Errorf("invalid paths file %s: %w", path, err)
	}
	return paths, nil
}

func parsePaths(data []byte) (api.PathSet, error) {
	var f pathsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return api.PathSet{}, err
	}

	var out api.PathSet
	lists := []struct {
		name string
		src  *[]string
		dst  *[]string
	}{
		{"login", f.Login, &out.Login},
		{"register", f.Register, &out.Register},
		{"motorcycles", f.Motorcycles, &out.Motorcycles},
		{"areas", f.Areas, &out.Areas},
	}
	for _, l := range lists {
		if l.src == nil {
			continue
		}
		if len(*l.src) == 0 {
			return api.PathSet{}, fmt.Errorf("%s: candidate list must not be empty", l.name)
		}
		*l.dst = *l.src
	}
	if f.Users != nil {
		if *f.Users == "" {
			return api.PathSet{}, fmt.Errorf("users: path must not be empty")
		}
		out.Users = *f.Users
	}
	return out, nil
}

// WritePaths stores paths as the overrides file, creating its directory.
func WritePaths(paths api.PathSet) (string, error) {
	if err := paths.Validate(); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(paths)
	if err != nil {
		return "", fmt.Errorf("failed to encode paths: %w", err)
	}
	path := PathsFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write paths file: %w", err)
	}
	return path, nil
}
