package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUnitOfWork implements the unit-of-work port with a mongo session
// transaction: every read and write inside fn shares one session context and
// commits atomically. Requires a replica-set deployment.
type MongoUnitOfWork struct {
	client *mongo.Client
}

func NewMongoUnitOfWork(client *mongo.Client) *MongoUnitOfWork {
	return &MongoUnitOfWork{client: client}
}

func (u *MongoUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	// Abort before any write when the request was already cancelled.
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
