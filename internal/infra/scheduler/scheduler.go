package scheduler

import (
	"context"
	"time"

	"epi_notifier/internal/app" // For ExpirationNotifier interface

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds one scheduled pipeline run. The trigger interval is a
// month, so a run that is still going after this long is stuck, not busy.
const runTimeout = 5 * time.Minute

// ExpirationScheduler owns the recurring trigger: it fires the expiration
// pipeline on the configured cron schedule. The schedule is injected at
// construction, so tests can drive the pipeline directly through RunOnce
// without any timer involved.
type ExpirationScheduler struct {
	cronEngine *cron.Cron
	notifier   app.ExpirationNotifier
	logger     *logrus.Logger
	cronSpec   string
}

func NewExpirationScheduler(
	notifier app.ExpirationNotifier,
	logger *logrus.Logger,
	cronSpec string, // e.g. "0 8 1 * *" (08:00 on the 1st of the month)
) *ExpirationScheduler {
	return &ExpirationScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		notifier:   notifier,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

func (s *ExpirationScheduler) Start() error {
	s.logger.Info("Starting expiration scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for monthly expiration check.")
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		// A failed run is logged and the scheduler returns to idle; the next
		// scheduled fire re-scans from current state.
		if err := s.notifier.RunOnce(ctx, app.TriggerCron); err != nil {
			s.logger.WithError(err).Error("Scheduled expiration check failed")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Expiration scheduler started.")
	return nil
}

func (s *ExpirationScheduler) Stop() {
	s.logger.Info("Stopping expiration scheduler...")
	ctx := s.cronEngine.Stop() // Stops new fires, waits for a running job.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Expiration scheduler gracefully stopped.")
}
