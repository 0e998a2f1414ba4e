package gateway

import (
	"strings"

	ierr "insurepay/errors"

	"github.com/cockroachdb/errors"
)

// ErrCustomerExists marks a CreateCustomer failure caused by a duplicate.
var ErrCustomerExists = errors.New("gateway customer already exists")

// ErrInvalidSignature marks a webhook whose signature did not verify.
var ErrInvalidSignature = errors.New("invalid webhook signature")

func gatewayError(err error, op string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["error"] = err.Error()
	return ierr.WithError(err).
		WithMessage(op).
		WithHintf("payment gateway failed to %s", op).
		WithReportableDetails(details).
		Mark(ierr.ErrGateway)
}

func customerExistsError(err error) error {
	return errors.Mark(ierr.WithError(err).
		WithMessage("create customer").
		WithHint("customer already exists at the payment gateway").
		Mark(ierr.ErrGateway), ErrCustomerExists)
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// IsCustomerExists reports whether err came from a duplicate customer.
func IsCustomerExists(err error) bool {
	return errors.Is(err, ErrCustomerExists)
}

func invalidSignature(provider string) error {
	return errors.Mark(ierr.NewErrorf("%s webhook signature verification failed", provider).
		WithHint("Invalid webhook signature").
		Mark(ierr.ErrValidation), ErrInvalidSignature)
}
