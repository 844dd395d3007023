package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn in a snapshot/majority transaction. The driver
// retries fn on transient transaction errors, so fn must be idempotent
// against the session. Errors returned by fn are passed through unwrapped.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	var fnErr error
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		fnErr = fn(sessCtx)
		return nil, fnErr
	}, txnOpts)

	if err != nil {
		if fnErr != nil {
			return fnErr
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// WithTimeout bounds ctx by d unless ctx belongs to a session, in which case
// the transaction owns the deadline.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
