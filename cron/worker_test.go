package cron

import (
	"context"
	"testing"
	"time"

	ierr "insurepay/errors"
	"insurepay/services/tasks"

	"github.com/cockroachdb/errors"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) SendInvoiceReminder(_ context.Context, invoiceID string) error {
	s.sent = append(s.sent, invoiceID)
	return s.err
}

func reminderTask(t *testing.T, invoiceID string) *asynq.Task {
	task, _, err := tasks.NewInvoiceReminderTask(tasks.InvoiceReminderPayload{InvoiceID: invoiceID, CustomerID: "cust_1"}, time.Now())
	require.NoError(t, err)
	return task
}

func TestHandleInvoiceReminder(t *testing.T) {
	sender := &stubSender{}
	w := &ReminderWorker{sender: sender, logger: zap.NewNop()}

	require.NoError(t, w.handleInvoiceReminder(context.Background(), reminderTask(t, "inv_1")))
	assert.Equal(t, []string{"inv_1"}, sender.sent)
}

func TestHandleInvoiceReminderSkipsRetryOnBadPayload(t *testing.T) {
	sender := &stubSender{}
	w := &ReminderWorker{sender: sender, logger: zap.NewNop()}

	err := w.handleInvoiceReminder(context.Background(), asynq.NewTask(tasks.TypeInvoiceReminder, []byte("nope")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, sender.sent)
}

func TestHandleInvoiceReminderSkipsRetryForMissingInvoice(t *testing.T) {
	sender := &stubSender{err: ierr.NewError("invoice gone").Mark(ierr.ErrNotFound)}
	w := &ReminderWorker{sender: sender, logger: zap.NewNop()}

	err := w.handleInvoiceReminder(context.Background(), reminderTask(t, "inv_gone"))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleInvoiceReminderRetriesDeliveryFailure(t *testing.T) {
	sender := &stubSender{err: ierr.NewError("smtp down").Mark(ierr.ErrSystem)}
	w := &ReminderWorker{sender: sender, logger: zap.NewNop()}

	err := w.handleInvoiceReminder(context.Background(), reminderTask(t, "inv_1"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}
