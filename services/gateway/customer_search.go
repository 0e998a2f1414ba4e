package gateway

import (
	"context"
	"strings"
	"unicode"
)

const customerPageSize = 100

// NormalizePhone keeps the digits of phone and drops a leading country code,
// so "+91 98765-43210" and "9876543210" compare equal.
func NormalizePhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// Matches reports whether c is the same person as req by email or phone.
func (c Customer) Matches(req CustomerRequest) bool {
	if req.Email != "" && strings.EqualFold(strings.TrimSpace(c.Email), strings.TrimSpace(req.Email)) {
		return true
	}
	phone := NormalizePhone(req.Phone)
	return phone != "" && NormalizePhone(c.Phone) == phone
}

// FindCustomer pages through the gateway's customers looking for one that
// matches req. It returns nil when no page contains a match.
func FindCustomer(ctx context.Context, gw Gateway, req CustomerRequest) (*Customer, error) {
	for skip := 0; ; skip += customerPageSize {
		page, err := gw.ListCustomers(ctx, customerPageSize, skip)
		if err != nil {
			return nil, err
		}
		for i := range page {
			if page[i].Matches(req) {
				return &page[i], nil
			}
		}
		if len(page) < customerPageSize {
			return nil, nil
		}
	}
}
