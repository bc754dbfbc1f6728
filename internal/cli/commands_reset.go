package cli

import (
	"github.com/spf13/cobra"

	"github.com/dayoung-oh/lunchspin/internal/service/output"
)

func newResetCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the last winner and the saved session state.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}

			if deps.Session != nil {
				deps.Session.ResetSelection()
				deps.Session.SelectAllCategories()
			}
			if deps.Snapshots != nil {
				if err := deps.Snapshots.Clear(cmd.Context()); err != nil {
					return emitError(cmd, format, "", 0, "LUNCHSPIN_STORAGE_ERROR", err.Error())
				}
			}

			if format == output.FormatTable {
				return writeTable(cmd, "Session cleared.")
			}
			env := output.BuildEnvelope("", 0, map[string]any{"cleared": true}, []string{}, nil)
			return writeMachinePayload(cmd, env, format)
		},
	}

	addOutputFlags(cmd, &flags)
	return cmd
}
