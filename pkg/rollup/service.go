package rollup

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/harun/mnemo/pkg/archive"
)

// catchUpWindowDays bounds how far back a catch-up pass rescans. Two
// months covers any missed month boundary.
const catchUpWindowDays = 62

// Service runs periodic catch-up passes over the archive so that rollups
// missed while the process was down still get created.
type Service struct {
	scheduler *Scheduler
	archive   *archive.Store
	cron      *cron.Cron
	logger    zerolog.Logger
}

// NewService creates a cron-backed rollup service. cronExpr uses the
// standard five-field format.
func NewService(scheduler *Scheduler, archiveStore *archive.Store, cronExpr string, logger zerolog.Logger) (*Service, error) {
	s := &Service{
		scheduler: scheduler,
		archive:   archiveStore,
		cron:      cron.New(),
		logger:    logger.With().Str("component", "rollup-service").Logger(),
	}

	if _, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.CatchUp(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("Rollup catch-up pass failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid rollup cron expression %q: %w", cronExpr, err)
	}

	return s, nil
}

// Start begins the cron schedule
func (s *Service) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Rollup service started")
}

// Stop halts the cron schedule and waits for a running pass to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Rollup service stopped")
}

// CatchUp walks the trailing window up to the most recent archived daily
// and fires the rollup checks for every date in it. Existence checks
// make re-scanning already-rolled-up periods free.
func (s *Service) CatchUp(ctx context.Context) error {
	latest, err := s.archive.LatestDailyDate()
	if errors.Is(err, archive.ErrNotFound) {
		s.logger.Debug().Msg("Archive is empty, nothing to roll up")
		return nil
	}
	if err != nil {
		return err
	}

	start := latest.AddDate(0, 0, -catchUpWindowDays)
	for d := start; !d.After(latest); d = d.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.scheduler.RunForDate(ctx, d)
	}

	return nil
}
