package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayoung-oh/lunchspin/internal/domain"
	"github.com/dayoung-oh/lunchspin/internal/service/output"
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

type globalFlags struct {
	Format   string
	Address  string
	Lat      float64
	Lon      float64
	Minutes  int
	Category []string
	Verbose  bool
}

const sharedGlobalFlagAnnotation = "lunchspin_cli_shared_global"

func addOutputFlags(cmd *cobra.Command, flags *globalFlags) {
	addSharedGlobalFlag(cmd, "format", func() {
		cmd.Flags().StringVar(&flags.Format, "format", "table", "Output format: table, json, or yaml.")
	})
	addSharedGlobalFlag(cmd, "verbose", func() {
		cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose output (prints detailed error diagnostics).")
	})
}

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	addOutputFlags(cmd, flags)
	addSharedGlobalFlag(cmd, "address", func() {
		cmd.Flags().StringVar(&flags.Address, "address", "", "Search center as a free-form address. Geocoded to coordinates. Cannot be combined with --lat/--lon.")
	})
	addSharedGlobalFlag(cmd, "lat", func() {
		cmd.Flags().Float64Var(&flags.Lat, "lat", 0, "Search center latitude. Requires --lon.")
	})
	addSharedGlobalFlag(cmd, "lon", func() {
		cmd.Flags().Float64Var(&flags.Lon, "lon", 0, "Search center longitude. Requires --lat.")
	})
	addSharedGlobalFlag(cmd, "minutes", func() {
		cmd.Flags().IntVar(&flags.Minutes, "minutes", 0, "Walking radius in minutes: 5, 10, or 15.")
	})
	addSharedGlobalFlag(cmd, "category", func() {
		cmd.Flags().StringArrayVar(&flags.Category, "category", nil, "Restrict to a cuisine category (repeatable). Defaults to all categories found.")
	})
}

func addSharedGlobalFlag(cmd *cobra.Command, name string, register func()) {
	if cmd.Flags().Lookup(name) != nil {
		return
	}
	register()
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		return
	}
	if flag.Annotations == nil {
		flag.Annotations = map[string][]string{}
	}
	flag.Annotations[sharedGlobalFlagAnnotation] = []string{"true"}
}

func parseOutputFormat(format string) (output.Format, error) {
	return output.ParseFormat(format)
}

func writeTable(cmd *cobra.Command, text string) error {
	return output.WriteOutput(cmd.OutOrStdout(), text)
}

func writeMachinePayload(cmd *cobra.Command, env output.Envelope, format output.Format) error {
	rendered, err := output.RenderPayload(env, format)
	if err != nil {
		return err
	}
	return output.WriteOutput(cmd.OutOrStdout(), rendered)
}

func emitError(
	cmd *cobra.Command,
	format output.Format,
	address string,
	radiusMeters int,
	code string,
	message string,
) error {
	if format == output.FormatTable {
		if err := output.WriteOutput(cmd.OutOrStdout(), message); err != nil {
			return err
		}
		return &exitError{code: 1}
	}
	env := output.BuildEnvelope(address, radiusMeters, nil, []string{}, map[string]any{
		"code":    code,
		"message": message,
	})
	if err := writeMachinePayload(cmd, env, format); err != nil {
		return err
	}
	return &exitError{code: 1}
}

func validWalkMinutes(minutes int) bool {
	switch minutes {
	case 5, 10, 15:
		return true
	}
	return false
}

// resolveOverrideCenter turns the location flags into an optional center
// override. A nil result means the session keeps its current center.
func resolveOverrideCenter(cmd *cobra.Command, deps Dependencies, flags globalFlags, format output.Format) (*domain.Location, error) {
	address := strings.TrimSpace(flags.Address)
	latSet := cmd.Flags().Changed("lat")
	lonSet := cmd.Flags().Changed("lon")

	if address != "" {
		if latSet || lonSet {
			return nil, emitError(
				cmd,
				format,
				address,
				0,
				"LUNCHSPIN_INVALID_ARGUMENT",
				"Do not combine --address with --lat/--lon. Use either --address or both --lat and --lon.",
			)
		}
		if deps.Geocode == nil {
			return nil, emitError(cmd, format, address, 0, "LUNCHSPIN_LOCATION_ERROR", "Location resolver is not available.")
		}
		location, err := deps.Geocode.Get(cmd.Context(), address)
		if err != nil {
			return nil, emitError(cmd, format, address, 0, "LUNCHSPIN_LOCATION_ERROR", err.Error())
		}
		return &location, nil
	}

	if latSet != lonSet {
		return nil, emitError(
			cmd,
			format,
			"",
			0,
			"LUNCHSPIN_INVALID_ARGUMENT",
			"Both --lat and --lon must be provided together, or omit both to keep the current center.",
		)
	}
	if latSet && lonSet {
		return &domain.Location{Lat: flags.Lat, Lon: flags.Lon}, nil
	}
	return nil, nil
}

// prepareSession restores the persisted session, applies flag overrides
// and ensures candidates are loaded for the effective parameters.
func prepareSession(cmd *cobra.Command, deps Dependencies, flags globalFlags, format output.Format) error {
	ctx := cmd.Context()
	if deps.Session == nil {
		return fmt.Errorf("session is not available")
	}
	if err := deps.Session.Restore(ctx); err != nil && flags.Verbose {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "[verbose] session restore failed: %v\n", err)
	}

	center, err := resolveOverrideCenter(cmd, deps, flags, format)
	if err != nil {
		return err
	}

	radius := 0
	if cmd.Flags().Changed("minutes") {
		if !validWalkMinutes(flags.Minutes) {
			return emitError(cmd, format, "", 0, "LUNCHSPIN_INVALID_ARGUMENT", "--minutes must be 5, 10, or 15.")
		}
		radius = domain.RadiusForWalkMinutes(flags.Minutes)
	}

	if center != nil || radius != 0 {
		if err := deps.Session.Configure(ctx, center, radius); err != nil {
			return emitError(cmd, format, flags.Address, radius, "LUNCHSPIN_INVALID_ARGUMENT", err.Error())
		}
	} else if len(deps.Session.Candidates()) == 0 {
		deps.Session.Reload(ctx)
	}

	return applyCategoryFlags(cmd, deps, flags, format)
}

func applyCategoryFlags(cmd *cobra.Command, deps Dependencies, flags globalFlags, format output.Format) error {
	if len(flags.Category) == 0 {
		return nil
	}
	deps.Session.DeselectAllCategories()
	for _, category := range flags.Category {
		if err := deps.Session.ToggleCategory(strings.TrimSpace(category)); err != nil {
			available := strings.Join(deps.Session.Categories(), ", ")
			message := fmt.Sprintf("unknown category %q; available: %s", category, available)
			return emitError(cmd, format, flags.Address, deps.Session.RadiusMeters(), "LUNCHSPIN_UNKNOWN_CATEGORY", message)
		}
	}
	return nil
}
