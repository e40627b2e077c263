package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satoshitonakomito/happybomber/internal/app"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (app version %d)\n", app.Version, app.AppVersion)
			return err
		},
	}
}
