package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mithrel/patience/pkg/patience"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Signal the waiting test harness that this process is ready",
		Long: `Notify dials the rendezvous port once and returns. The port comes from
--port or, when absent, from the port environment variable the harness
exported into this process. There are no retries: call it only when the
application's readiness condition is actually true.`,
		Args: cobra.NoArgs,
		RunE: runNotify,
	}
	cmd.Flags().Uint16("port", 0, "rendezvous port (default: value of the port env var)")
	return cmd
}

func runNotify(cmd *cobra.Command, args []string) error {
	s := getSettings(cmd)

	port, _ := cmd.Flags().GetUint16("port")
	if port == 0 {
		raw := os.Getenv(s.PortEnv)
		if raw == "" {
			return fmt.Errorf("no rendezvous port: pass --port or set $%s", s.PortEnv)
		}
		n, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || n == 0 {
			return fmt.Errorf("invalid rendezvous port in $%s: %q", s.PortEnv, raw)
		}
		port = uint16(n)
	}
	return patience.Notify(port)
}
