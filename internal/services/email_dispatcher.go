package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/metrics"
)

const dispatchBatchSize = 100

// DispatchReport counts the outcome of one dispatch pass.
type DispatchReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// EmailDispatcher drains pending email notification logs through a Mailer.
type EmailDispatcher struct {
	logs   *EmailLogService
	mailer Mailer
	now    func() time.Time

	// serialises passes so an overrunning cron tick cannot double-send
	mu   sync.Mutex
	cron *cron.Cron
}

func NewEmailDispatcher(logs *EmailLogService, mailer Mailer) *EmailDispatcher {
	return &EmailDispatcher{logs: logs, mailer: mailer, now: utcNow}
}

// DispatchPending sends one batch of pending emails. A failed send leaves the
// log pending but queues it behind logs that have not been tried yet.
func (d *EmailDispatcher) DispatchPending(ctx context.Context) (DispatchReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var report DispatchReport
	pending, err := d.logs.ListPending(dispatchBatchSize)
	if err != nil {
		return report, err
	}

	log := logger.Component("email_dispatcher")
	for _, entry := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if entry.Receiver == nil || entry.Receiver.Email == "" {
			log.WithField("log_id", entry.ID).Warn("email notification has no receiver address")
			if err := d.fail(&report, entry.ID); err != nil {
				return report, err
			}
			continue
		}

		subject, body, err := RenderNotificationEmail(entry)
		if err == nil {
			err = d.mailer.SendEmail(entry.Receiver.Email, subject, body)
		}
		if err != nil {
			log.WithError(err).WithField("log_id", entry.ID).Warn("failed to send email notification")
			if err := d.fail(&report, entry.ID); err != nil {
				return report, err
			}
			continue
		}

		if err := d.logs.MarkSent(entry.ID, d.now()); err != nil {
			return report, fmt.Errorf("mark %s sent: %w", entry.ID, err)
		}
		report.Sent++
		metrics.IncEmailSent(true)
	}

	if report.Sent > 0 || report.Failed > 0 {
		log.WithField("sent", report.Sent).WithField("failed", report.Failed).Info("dispatched email notifications")
	}
	return report, nil
}

func (d *EmailDispatcher) fail(report *DispatchReport, id string) error {
	report.Failed++
	metrics.IncEmailSent(false)
	if err := d.logs.MarkFailed(id, d.now()); err != nil {
		return fmt.Errorf("mark %s failed: %w", id, err)
	}
	return nil
}

// Start schedules DispatchPending on the given cron spec (for example "@every 1m").
func (d *EmailDispatcher) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := d.DispatchPending(context.Background()); err != nil {
			logger.Component("email_dispatcher").WithError(err).Error("email dispatch failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule email dispatch %q: %w", spec, err)
	}
	c.Start()
	d.cron = c
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (d *EmailDispatcher) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
}
