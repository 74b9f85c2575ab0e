package mongo

import (
	"context"

	mongolib "go.mongodb.org/mongo-driver/mongo"

	"github.com/fastygo/taskdesk/repository"
)

type transactor struct {
	client  *mongolib.Client
	enabled bool
}

// NewTransactor returns a Transactor backed by multi-document transactions when enabled.
// Transactions need a replica set; with enabled=false fn runs directly and each write commits on its own.
func NewTransactor(client *mongolib.Client, enabled bool) repository.Transactor {
	return &transactor{client: client, enabled: enabled}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || t.client == nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongolib.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
