package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownCommand_Suggests(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "motoss", "list")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, `Did you mean "motos"?`)
	assert.Equal(t, exitUsage, ExitCode(res.Err))
}

func TestUnknownFlag_Suggests(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "areas", "list", "--outptu", "json")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, `Did you mean "--output"?`)
	assert.Contains(t, res.Stderr, "mottu areas list --help")
}

func TestJSONConflictsWithOutput(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "paths", "--json", "--output", "text")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "--json conflicts with --output text")
}

func TestJQRequiresJSONOutput(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "paths", "--jq", ".file", "--output", "text")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "--jq requires")
}

func TestOutputFromEnv(t *testing.T) {
	setupBackend(t)
	t.Setenv(envOutput, "json")

	res := runCLI(t, "areas", "list")
	require.NoError(t, res.Err, res.Stderr)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &payload))
	assert.Contains(t, payload, "items")
}

func TestOutputJSONL(t *testing.T) {
	setupBackend(t)

	res := runCLI(t, "areas", "list", "-o", "jsonl")
	require.NoError(t, res.Err, res.Stderr)
	assert.Equal(t, "{\"id\":1,\"nome\":\"Pátio A\"}\n{\"id\":2,\"nome\":\"Oficina\"}\n", res.Stdout)
}

func TestQuietSuppressesMessages(t *testing.T) {
	setupBackend(t)

	res := runCLI(t, "motos", "create", "--placa", "ABC1234", "--modelo", "Pop", "--area", "1", "--quiet")
	require.NoError(t, res.Err, res.Stderr)
	assert.Empty(t, res.Stdout)
}

func TestNegativeTimeout(t *testing.T) {
	isolateEnv(t)

	res := runCLI(t, "paths", "--timeout=-1s")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "--timeout must be >= 0")
}

func TestEnhanceUnknownError_Passthrough(t *testing.T) {
	assert.Equal(t, "boom", enhanceUnknownError(errors.New("boom"), nil, nil))
}

func TestExtractHelpers(t *testing.T) {
	assert.Equal(t, "motoss", extractQuoted(`unknown command "motoss" for "mottu"`))
	assert.Empty(t, extractQuoted("no quotes"))
	assert.Equal(t, "--outptu", extractFlag("unknown flag: --outptu"))
	assert.Empty(t, extractFlag("nothing here"))
}
