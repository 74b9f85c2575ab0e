package repository

import "context"

// Transactor runs fn as one unit when the backing store supports it.
// Repositories must use the ctx handed to fn so their writes join the unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
