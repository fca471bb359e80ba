package cmd

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"vehicle-sync/feature/vehicle"
	vsync "vehicle-sync/feature/vehicle/sync"
)

// inspectCmd is the parent command of the read-only source diagnostics.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the Syscara catalog without writing to Webflow",
}

var inspectPublicCmd = &cobra.Command{
	Use:   "public",
	Short: "Count public listings and exclusion reasons",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVehicleService(cmd, func(svc *vehicle.Service) (any, error) {
			return svc.PublicStats(cmd.Context())
		})
	},
}

var inspectBedsCmd = &cobra.Command{
	Use:   "beds",
	Short: "List bed type tokens by frequency",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVehicleService(cmd, func(svc *vehicle.Service) (any, error) {
			return svc.ScanBeds(cmd.Context())
		})
	},
}

var inspectMappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Map the filtered catalog and report problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVehicleService(cmd, func(svc *vehicle.Service) (any, error) {
			return svc.MappingReport(cmd.Context())
		})
	},
}

var inspectMapCmd = &cobra.Command{
	Use:   "map <id>",
	Short: "Show one listing raw and mapped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVehicleService(cmd, func(svc *vehicle.Service) (any, error) {
			return svc.Inspect(cmd.Context(), args[0])
		})
	},
}

func init() {
	inspectCmd.AddCommand(inspectPublicCmd, inspectBedsCmd, inspectMappingCmd, inspectMapCmd)
	RootCmd.AddCommand(inspectCmd)
}

// withVehicleService runs fn against a source-only service and prints its result as JSON.
func withVehicleService(cmd *cobra.Command, fn func(svc *vehicle.Service) (any, error)) error {
	svc, err := loadServices(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer svc.Close()

	cfg := svc.cfg.Sync
	service := vehicle.NewService(svc.source, nil, nil, vsync.NewMapper(cfg), vsync.FilterFromConfig(cfg), svc.logger)
	out, err := fn(service)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
