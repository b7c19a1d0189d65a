package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitweek/internal/config"
	"github.com/mmynk/splitweek/internal/period"
	"github.com/mmynk/splitweek/internal/roster"
	"github.com/mmynk/splitweek/internal/service"
	"github.com/mmynk/splitweek/internal/storage/sqlite"
)

var settlePeriodID string

func init() {
	rootCmd.AddCommand(settleCmd)
	settleCmd.Flags().StringVarP(&settlePeriodID, "period", "p", "", "Period to settle, e.g. 2025-W51 (default: current week)")
}

var settleCmd = &cobra.Command{
	Use:   "settle SPACE_ID",
	Short: "Finalize a settlement period for a space",
	Long: `Finalize a settlement period: recompute balances from the receipt set,
freeze the snapshot and notify participants. Settling is one-way; a settled
period never reopens. Settling an already-settled period is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettle,
}

func runSettle(cmd *cobra.Command, args []string) error {
	spaceID := args[0]
	periodID := settlePeriodID
	if periodID == "" {
		periodID = period.WeekID(time.Now())
	}

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

	res, err := svc.Finalize(cmd.Context(), spaceID, periodID)
	if err != nil {
		return fmt.Errorf("failed to settle %s/%s: %w", spaceID, periodID, err)
	}

	if res.AlreadySettled {
		fmt.Printf("Period %s was already settled; nothing changed.\n", periodID)
		return nil
	}

	p := res.Period
	fmt.Printf("Settled %s (%s to %s), total %d\n", p.ID, p.WeekStart, p.WeekEnd, p.TotalAmount)
	for _, b := range p.Participants {
		fmt.Printf("  %-20s paid %8d  owes %8d  balance %+d\n", b.DisplayName, b.TotalPaid, b.TotalOwed, b.Balance)
	}
	if res.NotifyErr != nil {
		fmt.Printf("Warning: notification failed: %v\n", res.NotifyErr)
	}
	return nil
}
