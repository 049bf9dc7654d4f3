package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoTransactor struct {
	client *mongo.Client
}

// NewMongoTransactor needs a replica set or sharded cluster.
func NewMongoTransactor(db *mongo.Database) Transactor {
	return &mongoTransactor{client: db.Client()}
}

func (t *mongoTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

type sequentialTransactor struct{}

// NewSequentialTransactor runs fn without a transaction; writes that succeed
// before a failure are kept.
func NewSequentialTransactor() Transactor {
	return sequentialTransactor{}
}

func (sequentialTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
