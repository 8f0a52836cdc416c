package launch

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgs(t *testing.T) {
	t.Parallel()
	argv := []string{"myapp", "--sync-port={port}", "--listen=:{port}", "plain"}
	got := ExpandArgs(argv, "port", 4242)
	assert.Equal(t, []string{"myapp", "--sync-port=4242", "--listen=:4242", "plain"}, got)
}

func TestExpandArgsLeavesUnknownTags(t *testing.T) {
	t.Parallel()
	argv := []string{`{"config":{"port":1}}`, "{other}"}
	got := ExpandArgs(argv, "port", 9000)
	// Only the bare {port} tag expands; unrelated braces pass through.
	assert.Equal(t, `{"config":{"port":1}}`, got[0])
	assert.Equal(t, "{other}", got[1])
}

func TestExpandArgsNoTag(t *testing.T) {
	t.Parallel()
	argv := []string{"a", "{port}"}
	assert.Equal(t, argv, ExpandArgs(argv, "", 1234))
}

func TestStartEmptyCommand(t *testing.T) {
	t.Parallel()
	_, err := Start(context.Background(), Spec{})
	require.Error(t, err)
}

func TestStartMissingBinary(t *testing.T) {
	t.Parallel()
	_, err := Start(context.Background(), Spec{Argv: []string{"/nonexistent/patience-test-binary"}})
	require.Error(t, err)
}

func TestStartAndWait(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	c, err := Start(context.Background(), Spec{
		Argv:   []string{"sh", "-c", `test "$PATIENCE_PORT" = "5555"`},
		Port:   5555,
		EnvVar: "PATIENCE_PORT",
	})
	require.NoError(t, err)
	require.NoError(t, c.Wait(), "child did not see the injected port env var")
}

func TestShutdownTerminatesChild(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep")
	}
	c, err := Start(context.Background(), Spec{Argv: []string{"sleep", "30"}})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, c.Shutdown(2*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)
}
