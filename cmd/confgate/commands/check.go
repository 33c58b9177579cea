package commands

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"confgate/internal/services"
)

func newCheckCmd() *cobra.Command {
	var required []string

	cmd := &cobra.Command{
		Use:   "check [KEY...]",
		Short: "Resolve keys and report their state",
		Long: `Resolve the given keys, or every registered key, and print one line
per key. Keys passed to --required fail when absent; other keys only fail
when their value is invalid. Secret values are redacted.`,
		Example: `  confgate check
  confgate check PORT LOG_LEVEL
  confgate check --required DATABASE_URL,ADMIN_CLIENT_SECRET`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Keys named only by --required are checked too. Without positional
			// keys Check covers the registry plus every required key.
			var keys []string
			if len(args) > 0 {
				keys = slices.Clone(args)
				for _, key := range required {
					if !slices.Contains(keys, key) {
						keys = append(keys, key)
					}
				}
			}

			svc := services.NewConfigService(newService(), slog.New(slog.NewTextHandler(io.Discard, nil)))
			reports := svc.Check(cmd.Context(), keys, required, true)

			failed := printReports(cmd.OutOrStdout(), reports)
			if failed > 0 {
				return fmt.Errorf("%d of %d keys failed", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&required, "required", nil, "Keys that must be set (comma separated or repeated)")
	return cmd
}

// printReports writes one line per report and returns how many failed
func printReports(out io.Writer, reports []services.KeyReport) int {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	failed := 0
	for _, report := range reports {
		if report.Failed() {
			failed++
		}
		switch report.State {
		case services.StateInvalid:
			fmt.Fprintf(w, "%s\tinvalid: %s\n", report.Key, report.Reason)
		case services.StateUnset:
			fmt.Fprintf(w, "%s\tunset\n", report.Key)
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\n", report.Key, report.State, report.Value)
		}
	}
	w.Flush()
	return failed
}
