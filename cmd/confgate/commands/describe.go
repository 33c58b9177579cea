package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	apierrors "confgate/internal/errors"
)

func newDescribeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the configuration schema",
		Long:  `Print every registered key with its type, constraints, default and description. Values are never printed.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptions := newService().Registry().Describe()

			var (
				out []byte
				err error
			)
			switch format {
			case "yaml":
				out, err = yaml.Marshal(descriptions)
			case "json":
				out, err = json.MarshalIndent(descriptions, "", "  ")
				out = append(out, '\n')
			default:
				return apierrors.NewAppValidationError(fmt.Sprintf("invalid format %q (must be one of: yaml, json)", format))
			}
			if err != nil {
				return apierrors.NewInternalAppError("failed to render schema", err)
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	return cmd
}
