package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/splitweek/internal/models"
	"github.com/mmynk/splitweek/internal/period"
	"github.com/mmynk/splitweek/internal/schedule"
)

// AutoCloseStatus classifies one space's outcome in an auto-close sweep.
type AutoCloseStatus string

const (
	AutoCloseSettled        AutoCloseStatus = "settled"
	AutoCloseAlreadySettled AutoCloseStatus = "already_settled"
	AutoCloseDisabled       AutoCloseStatus = "disabled"
	AutoCloseNotTime        AutoCloseStatus = "not_time"
	AutoCloseNoData         AutoCloseStatus = "no_data"
	AutoCloseError          AutoCloseStatus = "error"
)

// AutoCloseResult is one space's outcome.
type AutoCloseResult struct {
	SpaceID  string
	PeriodID string
	Status   AutoCloseStatus
	Err      error
}

// AutoClose walks every space with a stored schedule and finalizes the
// period whose close time matches now. It is the trigger an external cron
// invokes; the engine makes no scheduling decisions of its own beyond
// reading the stored configuration.
func (s *SettlementService) AutoClose(ctx context.Context) ([]AutoCloseResult, error) {
	spaceIDs, err := s.store.ListScheduledSpaces(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var results []AutoCloseResult
	for _, spaceID := range spaceIDs {
		results = append(results, s.autoCloseSpace(ctx, spaceID, now))
	}

	var settled int
	for _, r := range results {
		if r.Status == AutoCloseSettled {
			settled++
		}
	}
	slog.Info("Auto-close sweep finished", "spaces", len(results), "settled", settled)
	return results, nil
}

func (s *SettlementService) autoCloseSpace(ctx context.Context, spaceID string, now time.Time) AutoCloseResult {
	cfg, err := s.store.GetSchedule(ctx, spaceID)
	if err != nil {
		return AutoCloseResult{SpaceID: spaceID, Status: AutoCloseError, Err: err}
	}
	if !cfg.Enabled {
		return AutoCloseResult{SpaceID: spaceID, Status: AutoCloseDisabled}
	}
	if !schedule.ShouldSettleNow(cfg, now) {
		return AutoCloseResult{SpaceID: spaceID, Status: AutoCloseNotTime}
	}

	periodID := period.WeekID(schedule.TargetDate(cfg, now))
	if _, err := s.store.GetPeriod(ctx, spaceID, periodID); err != nil {
		if errors.Is(err, models.ErrPeriodNotFound) {
			return AutoCloseResult{SpaceID: spaceID, PeriodID: periodID, Status: AutoCloseNoData}
		}
		return AutoCloseResult{SpaceID: spaceID, PeriodID: periodID, Status: AutoCloseError, Err: err}
	}

	res, err := s.Finalize(ctx, spaceID, periodID)
	if err != nil {
		return AutoCloseResult{SpaceID: spaceID, PeriodID: periodID, Status: AutoCloseError, Err: err}
	}
	if res.AlreadySettled {
		return AutoCloseResult{SpaceID: spaceID, PeriodID: periodID, Status: AutoCloseAlreadySettled}
	}
	return AutoCloseResult{SpaceID: spaceID, PeriodID: periodID, Status: AutoCloseSettled}
}
