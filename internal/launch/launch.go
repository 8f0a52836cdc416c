// Package launch starts the process under test with the rendezvous port
// injected into its environment and arguments.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/valyala/fasttemplate"
)

// Spec describes the child process and how the rendezvous port reaches it.
type Spec struct {
	// Argv is the child command line; Argv[0] is the program.
	Argv []string
	// Port is the rendezvous port assigned by the listener.
	Port uint16
	// EnvVar, when non-empty, is exported to the child as EnvVar=Port.
	EnvVar string
	// PortTag, when non-empty, makes every occurrence of {PortTag} in
	// Argv expand to the decimal port. Unknown tags are left untouched.
	PortTag string
	// ExtraEnv entries are appended to the inherited environment.
	ExtraEnv []string
}

// Child is a started process under test.
type Child struct {
	cmd *exec.Cmd
}

// ExpandArgs substitutes {tag} with the decimal port in each argument.
// Other brace-delimited text passes through unchanged, so JSON arguments
// and shell snippets survive expansion.
func ExpandArgs(argv []string, tag string, port uint16) []string {
	if tag == "" {
		return argv
	}
	vals := map[string]any{tag: strconv.Itoa(int(port))}
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = fasttemplate.ExecuteStringStd(a, "{", "}", vals)
	}
	return out
}

// Start launches the child with inherited stdio. The caller owns the
// returned Child and must settle it with Wait or Shutdown.
func Start(ctx context.Context, s Spec) (*Child, error) {
	if len(s.Argv) == 0 {
		return nil, errors.New("launch: empty command")
	}
	argv := ExpandArgs(s.Argv, s.PortTag, s.Port)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), s.ExtraEnv...)
	if s.EnvVar != "" {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%d", s.EnvVar, s.Port))
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch %s: %w", argv[0], err)
	}
	return &Child{cmd: cmd}, nil
}

// Pid returns the child's process id.
func (c *Child) Pid() int {
	return c.cmd.Process.Pid
}

// Wait blocks until the child exits. Use either Wait or Shutdown, not both.
func (c *Child) Wait() error {
	return c.cmd.Wait()
}

// Shutdown asks the child to exit with SIGTERM and kills it after grace.
// Used when the rendezvous times out so the child does not outlive the run.
func (c *Child) Shutdown(grace time.Duration) error {
	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Signal delivery is unsupported or the process is gone; make sure.
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- c.cmd.Wait() }()
	select {
	case <-done:
		return nil
	case <-time.After(grace):
		_ = c.cmd.Process.Kill()
		<-done
		return nil
	}
}
