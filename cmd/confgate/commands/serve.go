package commands

import (
	"github.com/spf13/cobra"

	"confgate/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Resolve the schema and start the HTTP server",
		Long: `Resolve every schema key from the environment and serve the
configuration API until SIGINT or SIGTERM. Startup fails when any key
holds an invalid value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.NewApplication(newService())
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}
}
