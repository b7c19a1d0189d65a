package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitweek/internal/config"
	"github.com/mmynk/splitweek/internal/roster"
	"github.com/mmynk/splitweek/internal/service"
	"github.com/mmynk/splitweek/internal/storage/sqlite"
)

func init() {
	rootCmd.AddCommand(autocloseCmd)
}

var autocloseCmd = &cobra.Command{
	Use:   "autoclose",
	Short: "Sweep all spaces and settle periods whose schedule matches now",
	Long: `Check every space with a stored auto-close schedule and finalize the
matching period when the configured close time falls within the trigger
window. Intended to be run from cron every few minutes.`,
	RunE: runAutoClose,
}

func runAutoClose(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	svc := service.NewSettlementService(store,
		service.WithNotifier(&roster.LogNotifier{}),
	)

	results, err := svc.AutoClose(cmd.Context())
	if err != nil {
		return fmt.Errorf("auto-close sweep failed: %w", err)
	}

	for _, r := range results {
		switch r.Status {
		case service.AutoCloseSettled:
			fmt.Printf("%s: settled %s\n", r.SpaceID, r.PeriodID)
		case service.AutoCloseAlreadySettled:
			fmt.Printf("%s: %s already settled\n", r.SpaceID, r.PeriodID)
		case service.AutoCloseError:
			fmt.Printf("%s: error: %v\n", r.SpaceID, r.Err)
		}
	}
	return nil
}
