package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/patience/internal/config"
)

type ctxKey string

const settingsKey ctxKey = "settings"

// Execute is the entrypoint: it builds the root cobra.Command
// and calls its Execute() method to run the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires configuration.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "patience",
		Short:         "Startup synchronization for integration tests",
		SilenceUsage:  true, // don't show usage on runtime errors
		SilenceErrors: true, // let main print errors once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Resolve config with Viper and stash the typed settings
			// in context for subcommands.
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(v); err != nil {
				return err
			}
			s, err := config.FromViper(v)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), settingsKey, s))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newNotifyCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getSettings(cmd *cobra.Command) config.Settings {
	v := cmd.Context().Value(settingsKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: settings not initialized")
		os.Exit(1)
	}
	return v.(config.Settings)
}
