// internal/app/notifier_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"epi_notifier/internal/domain/equipment"
	"epi_notifier/internal/domain/mail"
	"epi_notifier/internal/domain/recipient"
	"epi_notifier/internal/domain/report"
	"epi_notifier/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Trigger labels for run observability. Both entry points run the identical
// pipeline; the label only records who asked.
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// ExpirationNotifier defines the operations of the compliance-expiration
// pipeline: scan the current period, aggregate a report, dispatch it.
type ExpirationNotifier interface {
	// RunOnce executes one full scan-aggregate-dispatch run using the current
	// clock. A data-source failure aborts the run and is returned; individual
	// delivery failures are contained and logged.
	RunOnce(ctx context.Context, trigger string) error
}

// DeliveryResult is the per-recipient outcome of one dispatch attempt. It is
// used for logging and metrics only, never persisted.
type DeliveryResult struct {
	Recipient recipient.Recipient
	Err       error
}

func (d DeliveryResult) Succeeded() bool {
	return d.Err == nil
}

// ExpirationNotifierImpl implements the ExpirationNotifier interface.
type ExpirationNotifierImpl struct {
	equipmentRepo equipment.Repository
	recipientRepo recipient.Repository
	sender        mail.Sender
	logger        *logrus.Logger

	clock         func() time.Time
	sendTimeout   time.Duration
	maxConcurrent int
	subjectPrefix string
}

func NewExpirationNotifier(
	er equipment.Repository,
	rr recipient.Repository,
	sender mail.Sender,
	logger *logrus.Logger,
	sendTimeout time.Duration,
	maxConcurrent int,
	subjectPrefix string,
) *ExpirationNotifierImpl {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ExpirationNotifierImpl{
		equipmentRepo: er,
		recipientRepo: rr,
		sender:        sender,
		logger:        logger,
		clock:         time.Now,
		sendTimeout:   sendTimeout,
		maxConcurrent: maxConcurrent,
		subjectPrefix: subjectPrefix,
	}
}

func (s *ExpirationNotifierImpl) RunOnce(ctx context.Context, trigger string) error {
	start := time.Now()
	metrics.RunsStarted.WithLabelValues(trigger).Inc()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.clock()
	log := s.logger.WithFields(logrus.Fields{
		"trigger": trigger,
		"period":  report.PeriodLabel(now),
	})
	log.Info("Starting expiration-check run")

	winStart, winEnd := monthWindow(now)
	records, err := s.equipmentRepo.ListExpiringWithin(ctx, winStart, winEnd)
	if err != nil {
		metrics.RunsFailed.WithLabelValues(trigger).Inc()
		log.WithError(err).Error("Run aborted: could not read equipment assignments")
		return fmt.Errorf("failed to list expiring assignments: %w", err)
	}

	rep := report.Build(records, now)
	metrics.ReportItems.Observe(float64(len(rep.Items)))
	if rep.Empty() {
		log.Info("No equipment expired or expiring this month. Nothing to send.")
		return nil
	}
	log.WithField("items", len(rep.Items)).Info("Period report built")

	recipients, err := s.recipientRepo.ListNotifiable(ctx)
	if err != nil {
		metrics.RunsFailed.WithLabelValues(trigger).Inc()
		log.WithError(err).Error("Run aborted: could not read recipient list")
		return fmt.Errorf("failed to list recipients: %w", err)
	}

	eligible := make([]recipient.Recipient, 0, len(recipients))
	for _, r := range recipients {
		if !r.ValidEmail() {
			log.WithFields(logrus.Fields{"recipient": r.Name, "email": r.Email}).Warn("Skipping recipient with malformed email address")
			continue
		}
		eligible = append(eligible, r)
	}
	if len(eligible) == 0 {
		log.Warn("No recipients with a usable email address. Nothing to send.")
		return nil
	}

	results, err := s.dispatch(ctx, rep, eligible)
	if err != nil {
		metrics.RunsFailed.WithLabelValues(trigger).Inc()
		log.WithError(err).Error("Run aborted: could not render report")
		return err
	}

	sent, failed := 0, 0
	for _, res := range results {
		entry := log.WithFields(logrus.Fields{"recipient": res.Recipient.Name, "email": res.Recipient.Email})
		if res.Succeeded() {
			sent++
			metrics.MailSendSuccess.Inc()
			entry.Info("Report mail sent")
		} else {
			failed++
			metrics.MailSendFailure.Inc()
			entry.WithError(res.Err).Error("Report mail failed")
		}
	}

	// Individual delivery failures do not fail the run; the next scheduled
	// run re-derives the report from current state anyway.
	log.WithFields(logrus.Fields{"sent": sent, "failed": failed}).Info("Expiration-check run finished")
	return nil
}

// dispatch renders the shared notification once and sends it to every
// recipient independently, with bounded concurrency and a per-send timeout.
// A failure for one recipient never prevents the attempts for the others.
func (s *ExpirationNotifierImpl) dispatch(ctx context.Context, rep report.Report, recipients []recipient.Recipient) ([]DeliveryResult, error) {
	body, err := rep.RenderHTML()
	if err != nil {
		return nil, fmt.Errorf("failed to render report body: %w", err)
	}
	subject := strings.TrimSpace(s.subjectPrefix + " " + rep.Subject())

	results := make([]DeliveryResult, len(recipients))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for i, rcp := range recipients {
		wg.Add(1)
		go func(i int, rcp recipient.Recipient) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
			defer cancel()
			results[i] = DeliveryResult{Recipient: rcp, Err: s.sender.Send(sendCtx, rcp.Email, subject, body)}
		}(i, rcp)
	}
	wg.Wait()
	return results, nil
}

// monthWindow returns the first and last calendar day of now's month, the
// inclusive bounds of one run's scan.
func monthWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}
