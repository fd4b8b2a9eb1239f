package cmd

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mottu/mottu-cli/internal/api"
	"github.com/mottu/mottu-cli/internal/config"
)

func TestPaths_ShowsDefaults(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "paths")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "motorcycles:\n  /api/v1/Motos\n  /api/Motos\n")
	assert.Contains(t, res.Stdout, "users:\n  /api/Usuarios\n")
}

func TestPaths_Override(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, os.WriteFile(config.PathsFile(), []byte("motorcycles:\n  - /v2/motos\n"), 0o600))

	res := runCLI(t, "paths", "-o", "json")
	require.NoError(t, res.Err, res.Stderr)

	var payload struct {
		File  string      `json:"file"`
		Paths api.PathSet `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &payload))
	assert.Equal(t, config.PathsFile(), payload.File)
	assert.Equal(t, []string{"/v2/motos"}, payload.Paths.Motorcycles)
	assert.Equal(t, api.DefaultPaths().Login, payload.Paths.Login)
}

func TestPaths_InvalidFile(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, os.WriteFile(config.PathsFile(), []byte("motos: []\n"), 0o600))

	res := runCLI(t, "paths")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "invalid paths file")
}

func TestPathsInit(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "paths", "init")
	require.Error(t, res.Err, "the paths file already exists")
	assert.Contains(t, res.Stderr, "--force")

	res = runCLI(t, "paths", "init", "--force")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "Wrote paths file")

	paths, err := config.LoadPaths()
	require.NoError(t, err)
	assert.Equal(t, api.DefaultPaths(), paths)
}

func TestPathsFile(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "paths", "file")
	require.NoError(t, res.Err)
	assert.Equal(t, config.PathsFile()+"\n", res.Stdout)
}
