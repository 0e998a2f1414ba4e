package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxRunner runs fn so that all repository writes issued with the ctx it
// receives become visible together or not at all.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxRunner wraps fn in a multi-document transaction. Transactions need a
// replica set; when disabled fn runs directly on the caller's context.
type MongoTxRunner struct {
	Client  *mongo.Client
	Enabled bool
}

func NewMongoTxRunner(client *mongo.Client, enabled bool) *MongoTxRunner {
	return &MongoTxRunner{Client: client, Enabled: enabled}
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.Enabled || r.Client == nil {
		return fn(ctx)
	}

	sess, err := r.Client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// NoopTxRunner runs fn directly.
type NoopTxRunner struct{}

func (NoopTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
