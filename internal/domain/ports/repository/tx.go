package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories accept nil for the plain pool path.
type Tx interface{}

// NoTx marks a repository call that runs outside any transaction.
var NoTx Tx

// TransactionManager executes fn inside one database transaction. Every
// repository call inside fn must be given the same tx handle; if fn
// returns an error the whole unit rolls back, otherwise it commits.
// Commit is the only point at which the unit's writes become visible.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
