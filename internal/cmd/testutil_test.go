package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/mottu/mottu-cli/internal/apitest"
	"github.com/mottu/mottu-cli/internal/config"
)

// backendOptions puts the login route last among the default candidates so a
// rejected login is the last attempt.
var backendOptions = apitest.Options{
	LoginPath:   "/api/Auth/login",
	AreasPath:   "/api/Area",
	RequireAuth: true,
}

func resetKeyring(t *testing.T) {
	t.Helper()
	testKeyring = keyring.NewArrayKeyring(nil)
}

// isolateEnv clears every variable the CLI reads and points the paths file at
// an empty file.
func isolateEnv(t *testing.T) {
	t.Helper()
	resetKeyring(t)
	for _, key := range []string{config.EnvBaseURL, config.EnvToken, config.EnvProfile, config.EnvAPIVersion} {
		t.Setenv(key, "")
	}
	t.Setenv(envOutput, "text")

	pathsFile := filepath.Join(t.TempDir(), "paths.yaml")
	require.NoError(t, os.WriteFile(pathsFile, nil, 0o600))
	t.Setenv(config.EnvPathsFile, pathsFile)
}

// setupBackend starts an in-memory backend and logs the CLI into it through
// the environment.
func setupBackend(t *testing.T) *apitest.Backend {
	t.Helper()
	isolateEnv(t)

	backend, srv := apitest.Start(t, backendOptions)
	token, err := backend.IssueToken("admin")
	require.NoError(t, err)

	t.Setenv(config.EnvBaseURL, srv.URL)
	t.Setenv(config.EnvToken, token)
	return backend
}

// serverURL returns the backend URL set by setupBackend.
func serverURL() string {
	return os.Getenv(config.EnvBaseURL)
}

type cliResult struct {
	Stdout string
	Stderr string
	Err    error
}

// runCLI executes the CLI with stdout and stderr captured.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

// runCLIWithInput is runCLI with stdin fed from input.
func runCLIWithInput(t *testing.T, input string, args ...string) cliResult {
	t.Helper()

	oldOut, oldErr, oldIn := os.Stdout, os.Stderr, os.Stdin
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)
	inR, inW, err := os.Pipe()
	require.NoError(t, err)

	_, _ = inW.WriteString(input)
	_ = inW.Close()

	os.Stdout, os.Stderr, os.Stdin = outW, errW, inR
	var stdout, stderr bytes.Buffer
	done := make(chan struct{}, 2)
	go func() { _, _ = io.Copy(&stdout, outR); done <- struct{}{} }()
	go func() { _, _ = io.Copy(&stderr, errR); done <- struct{}{} }()

	runErr := Execute(context.Background(), args)

	_ = outW.Close()
	_ = errW.Close()
	<-done
	<-done
	os.Stdout, os.Stderr, os.Stdin = oldOut, oldErr, oldIn
	_ = inR.Close()

	return cliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: runErr}
}

func countHits(hits []string, prefix string) int {
	n := 0
	for _, h := range hits {
		if strings.HasPrefix(h, prefix) {
			n++
		}
	}
	return n
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
