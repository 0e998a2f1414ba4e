package cron

import (
	"context"
	"time"

	ierr "insurepay/errors"
	"insurepay/services/tasks"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderSender delivers the reminder for one invoice.
type ReminderSender interface {
	SendInvoiceReminder(ctx context.Context, invoiceID string) error
}

// ReminderWorker consumes invoice reminder tasks from the asynq queue.
type ReminderWorker struct {
	server *asynq.Server
	sender ReminderSender
	logger *zap.Logger
}

func NewReminderWorker(redisOpts asynq.RedisClientOpt, sender ReminderSender, logger *zap.Logger) *ReminderWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	return &ReminderWorker{server: srv, sender: sender, logger: logger}
}

// Start runs the worker in the background, retrying the Redis connection
// with a growing delay. Reminders are best effort, so giving up only logs.
func (w *ReminderWorker) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeInvoiceReminder, w.handleInvoiceReminder)

	go func() {
		w.logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Start(mux)
			if err == nil {
				return
			}
			w.logger.Warn("Reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("Reminder worker disabled after max retry attempts")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func (w *ReminderWorker) Shutdown() {
	w.server.Shutdown()
}

func (w *ReminderWorker) handleInvoiceReminder(ctx context.Context, task *asynq.Task) error {
	p, err := tasks.ParseInvoiceReminder(task)
	if err != nil {
		w.logger.Error("Invalid reminder payload", zap.Error(err))
		return errors.Wrap(asynq.SkipRetry, err.Error())
	}

	if err := w.sender.SendInvoiceReminder(ctx, p.InvoiceID); err != nil {
		if ierr.IsNotFound(err) {
			w.logger.Warn("Reminder for missing invoice dropped", zap.String("invoiceId", p.InvoiceID))
			return errors.Wrap(asynq.SkipRetry, err.Error())
		}
		w.logger.Error("Failed to send invoice reminder", zap.String("invoiceId", p.InvoiceID), zap.Error(err))
		return err
	}
	w.logger.Info("Invoice reminder sent", zap.String("invoiceId", p.InvoiceID), zap.String("customerId", p.CustomerID))
	return nil
}
