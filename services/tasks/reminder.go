package tasks

import (
	"context"
	"encoding/json"
	"time"

	ierr "insurepay/errors"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
)

const TypeInvoiceReminder = "invoice:reminder"

type InvoiceReminderPayload struct {
	InvoiceID  string `json:"invoiceId"`
	CustomerID string `json:"customerId"`
}

// NewInvoiceReminderTask builds a reminder task due at fireAt. The task id is
// derived from the invoice so an invoice is never reminded twice.
func NewInvoiceReminderTask(payload InvoiceReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeInvoiceReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(TypeInvoiceReminder + ":" + payload.InvoiceID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

func ParseInvoiceReminder(task *asynq.Task) (InvoiceReminderPayload, error) {
	var p InvoiceReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, ierr.WithError(err).WithHint("Malformed reminder payload").Mark(ierr.ErrValidation)
	}
	if p.InvoiceID == "" {
		return p, ierr.NewError("reminder without invoice id").Mark(ierr.ErrValidation)
	}
	return p, nil
}

// AsynqScheduler queues invoice reminders on the asynq Redis queue.
type AsynqScheduler struct {
	Client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{Client: client}
}

func (s *AsynqScheduler) ScheduleInvoiceReminder(ctx context.Context, invoiceID, customerID string, at time.Time) error {
	task, opts, err := NewInvoiceReminderTask(InvoiceReminderPayload{InvoiceID: invoiceID, CustomerID: customerID}, at)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return ierr.WithError(err).WithMessage("enqueue invoice reminder").Mark(ierr.ErrSystem)
	}
	return nil
}
