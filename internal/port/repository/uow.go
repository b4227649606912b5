package repository

import "context"

// UnitOfWork runs fn inside a single atomic commit. Every read feeding a
// decision and every resulting write of one operation happen inside one
// Execute call; when fn returns an error nothing is persisted.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
