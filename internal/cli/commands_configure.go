package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayoung-oh/lunchspin/internal/config"
	"github.com/dayoung-oh/lunchspin/internal/domain"
)

func newConfigureCommand(deps Dependencies) *cobra.Command {
	var address string
	var lat float64
	var lon float64
	var minutes int
	var dataDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save default center, walking radius, and data directory.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			latSet := cmd.Flags().Changed("lat")
			lonSet := cmd.Flags().Changed("lon")
			minutesSet := cmd.Flags().Changed("minutes")

			address = strings.TrimSpace(address)
			if address != "" && (latSet || lonSet) {
				return fmt.Errorf("do not combine --address with --lat/--lon")
			}
			if latSet != lonSet {
				return fmt.Errorf("both --lat and --lon must be provided together")
			}
			if minutesSet && !validWalkMinutes(minutes) {
				return fmt.Errorf("--minutes must be 5, 10, or 15")
			}

			var center *domain.Location
			if address != "" {
				if deps.Geocode == nil {
					return fmt.Errorf("location resolver is not available")
				}
				location, err := deps.Geocode.Get(cmd.Context(), address)
				if err != nil {
					return err
				}
				center = &location
			} else if latSet && lonSet {
				center = &domain.Location{Lat: lat, Lon: lon}
			}

			existing, loadErr := deps.Config.Load(cmd.Context())
			hasExisting := loadErr == nil
			if hasExisting && !overwrite {
				if center == nil && !minutesSet && dataDir == "" {
					return fmt.Errorf("provide --address, --lat/--lon, --minutes, or --data-dir to update defaults")
				}
				if center != nil {
					existing.Center = center
				}
				if minutesSet {
					existing.WalkMinutes = minutes
				}
				if dataDir != "" {
					existing.DataDir = dataDir
				}
				if err := deps.Config.Save(cmd.Context(), existing); err != nil {
					return err
				}
				return writeTable(cmd, "🏁 Defaults updated successfully!")
			}

			cfg := config.Config{
				DataDir: dataDir,
				Center:  center,
			}
			if minutesSet {
				cfg.WalkMinutes = minutes
			}
			if err := deps.Config.Save(cmd.Context(), cfg); err != nil {
				return err
			}
			return writeTable(cmd, "🏁 Config was created successfully!")
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Default search center as a free-form address, geocoded once and stored.")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Default center latitude. Requires --lon.")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Default center longitude. Requires --lat.")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Default walking radius in minutes: 5, 10, or 15.")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for the local cache and session database.")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing config")
	return cmd
}
