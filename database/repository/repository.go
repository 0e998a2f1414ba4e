package repository

import (
	"context"
	"errors"
	"time"

	ierr "insurepay/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultTimeout bounds a single repository call when the caller's context
// has no deadline of its own.
const DefaultTimeout = 5 * time.Second

// WithTimeout derives a bounded context from ctx. A ctx that already carries a
// deadline (or is a transaction session) is returned unchanged.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Classify marks a driver error with the matching sentinel so callers can
// distinguish missing documents and duplicates from storage failures.
func Classify(err error, op, entity, key string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ierr.WithError(err).
			WithMessage(op).
			WithHintf("%s %s not found", entity, key).
			Mark(ierr.ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return ierr.WithError(err).
			WithMessage(op).
			WithHintf("%s %s already exists", entity, key).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithMessage(op).
		WithHintf("failed to %s", op).
		Mark(ierr.ErrDatabase)
}

// NotFound builds a not-found error for an update that matched nothing.
func NotFound(entity, key string) error {
	return ierr.NewErrorf("%s %s not found", entity, key).
		WithHintf("%s %s not found", entity, key).
		Mark(ierr.ErrNotFound)
}
