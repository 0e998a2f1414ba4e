package tasks

import (
	"testing"
	"time"

	ierr "insurepay/errors"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceReminderTaskRoundTrip(t *testing.T) {
	fireAt := time.Date(2026, 1, 17, 10, 0, 0, 0, time.UTC)
	task, opts, err := NewInvoiceReminderTask(InvoiceReminderPayload{InvoiceID: "inv_1", CustomerID: "cust_1"}, fireAt)
	require.NoError(t, err)
	assert.Equal(t, TypeInvoiceReminder, task.Type())
	assert.Len(t, opts, 3)

	p, err := ParseInvoiceReminder(task)
	require.NoError(t, err)
	assert.Equal(t, "inv_1", p.InvoiceID)
	assert.Equal(t, "cust_1", p.CustomerID)
}

func TestParseInvoiceReminderRejectsBadPayload(t *testing.T) {
	_, err := ParseInvoiceReminder(asynq.NewTask(TypeInvoiceReminder, []byte("{not json")))
	assert.True(t, ierr.IsValidation(err))

	_, err = ParseInvoiceReminder(asynq.NewTask(TypeInvoiceReminder, []byte(`{"customerId":"cust_1"}`)))
	assert.True(t, ierr.IsValidation(err))
}
