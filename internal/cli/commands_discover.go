package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/service/output"
)

func newDiscoverCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List lunch candidates around the current center.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			if err := prepareSession(cmd, deps, flags, format); err != nil {
				return err
			}

			candidates := deps.Session.FilteredCandidates()
			center := deps.Session.Center()
			radius := deps.Session.RadiusMeters()

			if format == output.FormatTable {
				if len(candidates) == 0 {
					return writeTable(cmd, "No restaurants found. Try a wider radius or another center.")
				}
				header := fmt.Sprintf("%d spots within a %d-minute walk of %s",
					len(candidates), domain.WalkMinutes(float64(radius)), centerLabel(center))
				rows := make([][]string, 0, len(candidates))
				for _, candidate := range candidates {
					rows = append(rows, []string{
						candidate.Name,
						candidate.FormatCategory(),
						candidate.FormatRating(),
						candidate.FormatWalk(),
					})
				}
				body := output.RenderTable(header, []string{"NAME", "CATEGORY", "RATING", "WALK"}, rows)
				body += "\ncategories: " + strings.Join(deps.Session.Categories(), ", ")
				return writeTable(cmd, body)
			}

			env := output.BuildEnvelope(center.Address, radius, map[string]any{
				"candidates": candidates,
				"categories": deps.Session.Categories(),
				"selected":   deps.Session.SelectedCategories(),
			}, []string{}, nil)
			return writeMachinePayload(cmd, env, format)
		},
	}

	addGlobalFlags(cmd, &flags)
	return cmd
}

func centerLabel(center domain.Location) string {
	if strings.TrimSpace(center.Address) != "" {
		return center.Address
	}
	return fmt.Sprintf("%.4f, %.4f", center.Lat, center.Lon)
}
