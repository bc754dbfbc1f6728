package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayoung-oh/lunchspin/internal/service/output"
)

func newLocateCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "locate <query...>",
		Short: "Resolve an address or place name to coordinates.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if deps.Geocode == nil {
				return emitError(cmd, format, query, 0, "LUNCHSPIN_LOCATION_ERROR", "Location resolver is not available.")
			}

			matches, err := deps.Geocode.Search(cmd.Context(), query)
			if err != nil {
				return emitError(cmd, format, query, 0, "LUNCHSPIN_LOCATION_ERROR", err.Error())
			}
			if len(matches) == 0 {
				return emitError(cmd, format, query, 0, "LUNCHSPIN_LOCATION_ERROR", fmt.Sprintf("no matches for %q", query))
			}

			if format == output.FormatTable {
				rows := make([][]string, 0, len(matches))
				for _, match := range matches {
					rows = append(rows, []string{
						match.Address,
						fmt.Sprintf("%.6f", match.Lat),
						fmt.Sprintf("%.6f", match.Lon),
					})
				}
				return writeTable(cmd, output.RenderTable("", []string{"ADDRESS", "LAT", "LON"}, rows))
			}

			env := output.BuildEnvelope(query, 0, map[string]any{"matches": matches}, []string{}, nil)
			return writeMachinePayload(cmd, env, format)
		},
	}

	addOutputFlags(cmd, &flags)
	return cmd
}
