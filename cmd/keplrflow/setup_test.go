package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/keplrflow/config"
)

func runCommand(t *testing.T, env map[string]string, args ...string) error {
	t.Helper()
	envFile := filepath.Join(t.TempDir(), "empty.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))

	for _, key := range []string{config.EnvSecret, config.EnvExtensionPath} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--env-file", envFile))
	return cmd.ExecuteContext(context.Background())
}

func TestSetup_RequiresExtension(t *testing.T) {
	err := runCommand(t, nil, "setup")
	assert.ErrorContains(t, err, "no extension directory")
}

func TestSetup_ExtensionFromEnvironment(t *testing.T) {
	err := runCommand(t, map[string]string{config.EnvExtensionPath: t.TempDir()}, "setup")
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestSetup_RequiresSecret(t *testing.T) {
	err := runCommand(t, nil, "setup", "--extension", t.TempDir())
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestSetup_InvalidLogLevel(t *testing.T) {
	err := runCommand(t, map[string]string{config.EnvSecret: "0xkey"}, "setup", "--extension", t.TempDir(), "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}
