package infra

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"finai/internal/logger"
	"finai/internal/utils"
)

// QuoteWarmer refreshes cached quotes for held symbols
type QuoteWarmer interface {
	WarmQuotes(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	warmer   QuoteWarmer
	schedule string
	timeout  time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler running the quote warmer on schedule (standard 5-field cron expression)
func NewScheduler(warmer QuoteWarmer, schedule string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		warmer:   warmer,
		schedule: schedule,
		timeout:  2 * time.Minute,
		logger:   log,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the cron scheduler
func (s *Scheduler) Start() error {
	s.logger.Info().Str("schedule", s.schedule).Msg("Starting scheduler...")

	_, err := s.cron.AddFunc(s.schedule, func() {
		// Quotes only move during the regular session
		if !utils.IsMarketHours(s.now()) {
			return
		}
		if err := s.RunNow(); err != nil {
			s.logger.Error().Err(err).Msg("Scheduled quote warm failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Msg("Scheduler started successfully")
	return nil
}

// RunNow warms quotes immediately
func (s *Scheduler) RunNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := s.now()
	count, err := s.warmer.WarmQuotes(ctx)
	if err != nil {
		return err
	}

	s.logger.Info().Int("symbols", count).Dur("elapsed", time.Since(start)).Msg("[CRON] Quotes warmed")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
