package failurereport

import (
	"context"
	"fmt"
	"log/slog"

	"anomonus-bot/internal/telegram/messages"

	"github.com/robfig/cron/v3"
)

const batchSize = 50

// Worker reports unactivated payments to the operators so they can grant the
// subscription by hand. A failure is marked reported once at least one admin
// received it.
type Worker struct {
	failures Failures
	telegram TelegramNotifier
	adminIDs []int64
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
}

func NewWorker(
	failures Failures,
	telegram TelegramNotifier,
	adminIDs []int64,
	schedule string,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		failures: failures,
		telegram: telegram,
		adminIDs: adminIDs,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

func (w *Worker) Name() string {
	return "failure_report"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		if err := w.run(context.Background()); err != nil {
			w.logger.Error("Failure report worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule failure report worker: %w", err)
	}

	w.logger.Info("Failure report worker scheduled",
		"schedule", w.schedule,
		"admin_count", len(w.adminIDs))

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping failure report worker")
	<-w.cron.Stop().Done()
}

func (w *Worker) run(ctx context.Context) error {
	pending, err := w.failures.Unreported(ctx, batchSize)
	if err != nil {
		return fmt.Errorf("list unreported failures: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	if len(w.adminIDs) == 0 {
		w.logger.Warn("Unactivated payments pending but no admins configured", "count", len(pending))
		return nil
	}

	reported := make([]string, 0, len(pending))
	for _, f := range pending {
		text := messages.AdminActivationFailure(f.ChargeID, f.TelegramID, f.TierID, string(f.Reason), f.AmountStars)

		delivered := false
		for _, adminID := range w.adminIDs {
			if err := w.telegram.SendMessage(adminID, text); err != nil {
				w.logger.Error("Failed to notify admin",
					"admin_id", adminID,
					"charge_id", f.ChargeID,
					"error", err)
				continue
			}
			delivered = true
		}

		if delivered {
			reported = append(reported, f.ChargeID)
		}
	}

	if len(reported) == 0 {
		return nil
	}

	if err := w.failures.MarkReported(ctx, reported); err != nil {
		return fmt.Errorf("mark failures reported: %w", err)
	}

	w.logger.Info("Unactivated payments reported", "count", len(reported), "pending", len(pending))
	return nil
}
