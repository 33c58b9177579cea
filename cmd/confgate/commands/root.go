package commands

import (
	"context"

	"github.com/spf13/cobra"

	"confgate/internal/config"
)

// newService builds the configuration service the commands resolve against.
var newService = config.NewEnvService

// NewRootCmd builds the confgate command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "confgate - typed environment configuration gate",
		Long: `confgate resolves environment variables against a typed schema.
It validates and coerces every key, serves the result over HTTP and
reports missing or invalid keys before they reach the application.`,
		Version:      config.AppVersion,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newDescribeCmd())
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}
