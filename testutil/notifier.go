package testutil

import (
	"context"
	"sync"
	"time"

	"insurepay/models"
	"insurepay/services/notification"
)

// RecordingNotifier captures notifications. Err, when set, is returned from
// every call after recording it.
type RecordingNotifier struct {
	mu        sync.Mutex
	Payments  []notification.PaymentNotice
	AutoPays  []notification.AutoPayNotice
	Reminders []notification.InvoiceReminderNotice
	OTPs      map[string]string
	Emails    []models.SendEmailRequest
	Err       error
}

var _ notification.Notifier = (*RecordingNotifier)(nil)

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{OTPs: make(map[string]string)}
}

func (n *RecordingNotifier) NotifyPayment(_ context.Context, notice notification.PaymentNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Payments = append(n.Payments, notice)
	return n.Err
}

func (n *RecordingNotifier) NotifyAutoPay(_ context.Context, notice notification.AutoPayNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.AutoPays = append(n.AutoPays, notice)
	return n.Err
}

func (n *RecordingNotifier) NotifyInvoiceReminder(_ context.Context, notice notification.InvoiceReminderNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Reminders = append(n.Reminders, notice)
	return n.Err
}

func (n *RecordingNotifier) NotifyOTP(_ context.Context, to, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.OTPs[to] = code
	return n.Err
}

func (n *RecordingNotifier) SendEmail(_ context.Context, req models.SendEmailRequest) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Emails = append(n.Emails, req)
	return "msg_test", n.Err
}
