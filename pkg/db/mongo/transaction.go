package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	apperrors "printhub/pkg/errors"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactionManager runs transactions with snapshot reads and majority
// writes, so slot capacity checks and the booking rows they guard commit
// against the same view.
func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts: options.Transaction().
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()),
	}
}

// ExecuteTransaction runs fn inside a session transaction. The driver retries
// fn on transient transaction errors, so fn must be safe to re-run.
// AppErrors raised by fn are returned unwrapped.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, m.opts)
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return fmt.Errorf("transaction aborted: %w", err)
}
