package billing

import (
	ierr "insurepay/errors"
)

func validationError(hint string) error {
	return ierr.NewError(hint).WithHint(hint).Mark(ierr.ErrValidation)
}

func notFound(entity, key string) error {
	return ierr.NewErrorf("%s %s not found", entity, key).
		WithHintf("%s %s not found", entity, key).
		Mark(ierr.ErrNotFound)
}

var errNoValidPolicies = ierr.NewError("no valid policies").
	WithHint("No valid policies to invoice: every requested policy is already paid through the current period").
	Mark(ierr.ErrValidation)
