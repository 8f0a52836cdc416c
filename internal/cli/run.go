package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/patience/internal/launch"
	"github.com/mithrel/patience/internal/report"
	"github.com/mithrel/patience/pkg/patience"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Launch a command and wait for its readiness signal",
		Long: `Run binds a loopback rendezvous port, launches the command with that port
injected (environment variable and {port} argument placeholder), and blocks
until the command signals readiness or the timeout elapses. The command is
left running after a successful rendezvous; on timeout it is shut down.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
	cmd.Flags().Duration("timeout", 0, "how long to wait for the readiness signal (default from config)")
	cmd.Flags().Duration("grace", 0, "SIGTERM-to-SIGKILL grace for a timed-out command (default from config)")
	cmd.Flags().Bool("json", false, "emit the run report as JSON")
	cmd.Flags().String("port-env", "", "environment variable carrying the port (default from config)")
	cmd.Flags().String("port-tag", "", "argv placeholder tag expanded to the port (default from config)")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	s := getSettings(cmd)

	// Flags override resolved config only when set on the command line.
	timeout := s.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	grace := s.Grace
	if cmd.Flags().Changed("grace") {
		grace, _ = cmd.Flags().GetDuration("grace")
	}
	asJSON := s.JSON
	if cmd.Flags().Changed("json") {
		asJSON, _ = cmd.Flags().GetBool("json")
	}
	portEnv := s.PortEnv
	if cmd.Flags().Changed("port-env") {
		portEnv, _ = cmd.Flags().GetString("port-env")
	}
	portTag := s.PortTag
	if cmd.Flags().Changed("port-tag") {
		portTag, _ = cmd.Flags().GetString("port-tag")
	}

	l, err := patience.New()
	if err != nil {
		return err
	}
	defer l.Close()

	child, err := launch.Start(cmd.Context(), launch.Spec{
		Argv:    args,
		Port:    l.Port(),
		EnvVar:  portEnv,
		PortTag: portTag,
	})
	if err != nil {
		return err
	}

	waited, err := l.Wait(timeout)
	switch {
	case err == nil:
		rep := report.New(report.OutcomeSignaled, l.Port(), timeout, waited)
		return writeReport(cmd, rep, asJSON)
	case errors.Is(err, patience.ErrTimedOut):
		// The child never became ready; reclaim it before reporting.
		_ = child.Shutdown(grace)
		rep := report.New(report.OutcomeTimedOut, l.Port(), timeout, waited)
		if werr := writeReport(cmd, rep, asJSON); werr != nil {
			return werr
		}
		return fmt.Errorf("command did not signal readiness within %v", timeout)
	default:
		_ = child.Shutdown(grace)
		return err
	}
}

func writeReport(cmd *cobra.Command, r report.Report, asJSON bool) error {
	if asJSON {
		return r.WriteJSON(cmd.OutOrStdout())
	}
	return r.WriteText(cmd.OutOrStdout())
}
