//go:build integration
// +build integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ryanmoran/dockline/internal"
	"github.com/ryanmoran/dockline/internal/docker"
	"github.com/stretchr/testify/require"
)

// runUpIntegration runs the up workflow against the local daemon with a
// pulled alpine image and returns what it printed.
func runUpIntegration(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	app := NewApp(env, stdout, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err := execute(ctx, app, append([]string{"up", "--pull", "--image", "alpine:latest"}, args...))
	return stdout.String(), err
}

// TestFullWorkflow validates the complete end-to-end workflow:
// 1. The image is pulled
// 2. A session network and a container on it are created
// 3. The container runs the command while its output is streamed
// 4. The exit status is reported
// 5. Cleanup removes the container and the network
func TestFullWorkflow(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("Integration tests skipped")
	}

	client, err := docker.NewDefaultClient(context.Background(), "")
	if err != nil {
		t.Skip("Docker not available:", err)
	}
	defer client.Close()

	t.Run("successful workflow with echo command", func(t *testing.T) {
		out, err := runUpIntegration(t, nil, "sh", "-c", "echo 'integration test'")
		require.NoError(t, err)
		require.Contains(t, out, "integration test")
		require.Contains(t, out, "Container exited with status: 0")
	})

	t.Run("environment variables are passed through", func(t *testing.T) {
		env := []string{"TERM=screen-256color"}

		_, err := runUpIntegration(t, env, "--env", "CUSTOM_VAR=test123", "sh", "-c", `test "$TERM" = 'screen-256color' && test "$CUSTOM_VAR" = 'test123'`)
		require.NoError(t, err)
	})

	t.Run("container can access working directory", func(t *testing.T) {
		_, err := runUpIntegration(t, nil, "--workdir", "/tmp", "sh", "-c", "pwd | grep -q /tmp")
		require.NoError(t, err)
	})

	t.Run("container exit code is returned", func(t *testing.T) {
		_, err := runUpIntegration(t, nil, "sh", "-c", "exit 42")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		require.Equal(t, 42, exitErr.Code)
	})
}

// TestWorkflowWithVolumes tests volume mounting
func TestWorkflowWithVolumes(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("Integration tests skipped")
	}

	tmpDir, err := os.MkdirTemp("", "dockline-volume-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	err = os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("integration test content"), 0644)
	require.NoError(t, err)

	volumeMount := fmt.Sprintf("%s:/mnt/test", tmpDir)
	_, err = runUpIntegration(t, nil, "--volume", volumeMount, "sh", "-c", "grep -q 'integration test' /mnt/test/test.txt")
	require.NoError(t, err)
}

// TestWorkflowCleanup verifies that the container is removed from a network
// it did not create, and that the network itself is left alone.
func TestWorkflowCleanup(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("Integration tests skipped")
	}

	ctx := context.Background()
	client, err := docker.NewDefaultClient(ctx, "")
	if err != nil {
		t.Skip("Docker not available:", err)
	}
	defer client.Close()

	session := internal.GenerateSession()
	network, err := client.CreateNetwork(ctx, session.Network(), docker.NetworkOptions{Labels: session.Labels()}, nil)
	require.NoError(t, err)
	defer network.Remove(ctx)

	_, err = runUpIntegration(t, nil, "--network", network.Name, "sh", "-c", "echo cleanup test")
	require.NoError(t, err)

	inspection, err := network.Inspect(ctx)
	require.NoError(t, err)
	require.Empty(t, inspection.Containers)
}

// TestWorkflowWithDockerNotRunning tests error handling when the daemon is unavailable
func TestWorkflowWithDockerNotRunning(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("Integration tests skipped")
	}

	_, err := runUpIntegration(t, nil, "--host", "unix:///nonexistent/docker.sock", "sh", "-c", "echo test")
	require.Error(t, err)
	require.Contains(t, err.Error(), "docker")
}
