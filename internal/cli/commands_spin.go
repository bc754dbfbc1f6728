package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/service/output"
)

const spinSettleTimeout = 15 * time.Second

func newSpinCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var quiet bool

	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Spin the roulette over the filtered candidates and pick a winner.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			if err := prepareSession(cmd, deps, flags, format); err != nil {
				return err
			}

			center := deps.Session.Center()
			radius := deps.Session.RadiusMeters()
			subset := deps.Session.FilteredCandidates()
			if len(subset) == 0 {
				if format == output.FormatTable {
					return writeTable(cmd, "Nothing to spin: no candidates match the current filters.")
				}
				env := output.BuildEnvelope(center.Address, radius, nil,
					[]string{"no candidates match the current filters"}, nil)
				return writeMachinePayload(cmd, env, format)
			}

			engine := deps.Session.Engine()
			settled := make(chan domain.Candidate, 1)
			engine.SetSettleFunc(func(winner domain.Candidate) {
				select {
				case settled <- winner:
				default:
				}
			})
			if format == output.FormatTable && !quiet {
				out := cmd.OutOrStdout()
				engine.SetHighlightFunc(func(candidate domain.Candidate) {
					_, _ = fmt.Fprintf(out, "  … %s\n", candidate.Name)
				})
			}

			if !deps.Session.Spin() {
				return emitError(cmd, format, center.Address, radius, "LUNCHSPIN_SPIN_BUSY", "a spin is already in progress")
			}

			var winner domain.Candidate
			select {
			case winner = <-settled:
			case <-time.After(spinSettleTimeout):
				return emitError(cmd, format, center.Address, radius, "LUNCHSPIN_SPIN_TIMEOUT", "spin did not settle in time")
			}

			warnings := []string{}
			if err := deps.Session.Save(cmd.Context()); err != nil {
				warnings = append(warnings, "failed to persist session state")
			}

			if format == output.FormatTable {
				body := fmt.Sprintf("🎯 %s\n   category: %s\n   rating:   %s\n   walk:     %s",
					winner.Name, winner.FormatCategory(), winner.FormatRating(), winner.FormatWalk())
				for _, warning := range warnings {
					body += "\nwarning: " + warning
				}
				return writeTable(cmd, body)
			}

			env := output.BuildEnvelope(center.Address, radius, map[string]any{
				"winner":      winner,
				"subset_size": len(subset),
			}, warnings, nil)
			return writeMachinePayload(cmd, env, format)
		},
	}

	addGlobalFlags(cmd, &flags)
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress the shuffle animation and print only the winner.")
	return cmd
}
