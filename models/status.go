package models

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusPaidByCash    InvoiceStatus = "paidByCash"
	InvoiceStatusPaidByAutopay InvoiceStatus = "paidByAutopay"
	InvoiceStatusFailed        InvoiceStatus = "failed"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusPaidByCash,
		InvoiceStatusPaidByAutopay, InvoiceStatusFailed:
		return true
	}
	return false
}

// Settled reports whether the invoice has been paid by any means.
// Settled invoices never move back to an unpaid or failed state.
func (s InvoiceStatus) Settled() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusPaidByCash || s == InvoiceStatusPaidByAutopay
}

// PaymentStatus is the outcome recorded on a payment row.
type PaymentStatus string

const (
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusPaidByCash    PaymentStatus = "paidByCash"
	PaymentStatusPaidByAutopay PaymentStatus = "paidByAutopay"
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusPaidByCash,
		PaymentStatusPaidByAutopay, PaymentStatusUnpaid:
		return true
	}
	return false
}

// Succeeded reports whether the status is one of the "paid" variants.
func (s PaymentStatus) Succeeded() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPaidByCash || s == PaymentStatusPaidByAutopay
}

// HistoryStatus is the per-policy billing state kept on a customer.
type HistoryStatus string

const (
	HistoryStatusPendingInvoice      HistoryStatus = "pending invoice"
	HistoryStatusUnpaid              HistoryStatus = "unpaid"
	HistoryStatusPaid                HistoryStatus = "paid"
	HistoryStatusPaidByCash          HistoryStatus = "paidByCash"
	HistoryStatusPaidByAutopay       HistoryStatus = "paidByAutopay"
	HistoryStatusPaidByAutopayActive HistoryStatus = "paidByAutopayActive"
	HistoryStatusAutopayInactive     HistoryStatus = "paidByAutoPayInactive"
	HistoryStatusFailed              HistoryStatus = "failed"
)

func (s HistoryStatus) Valid() bool {
	switch s {
	case HistoryStatusPendingInvoice, HistoryStatusUnpaid, HistoryStatusPaid,
		HistoryStatusPaidByCash, HistoryStatusPaidByAutopay, HistoryStatusPaidByAutopayActive,
		HistoryStatusAutopayInactive, HistoryStatusFailed:
		return true
	}
	return false
}

// PaymentMethod records how a payment was collected.
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodStripe   PaymentMethod = "stripe"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodAutopaid PaymentMethod = "autopaid"
)

// ParseInvoiceStatus validates a status string received from a caller or gateway.
func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	s := InvoiceStatus(raw)
	return s, s.Valid()
}
