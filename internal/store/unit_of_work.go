package store

import (
	"context"
	"database/sql"
)

// Stores groups the repositories a unit of work hands to its callback.
type Stores struct {
	Users      UserStore
	Books      BookStore
	Categories CategoryStore
	Reviews    ReviewStore
}

// WithTx binds every store to tx.
func (s Stores) WithTx(tx *sql.Tx) Stores {
	return Stores{
		Users:      s.Users.WithTx(tx),
		Books:      s.Books.WithTx(tx),
		Categories: s.Categories.WithTx(tx),
		Reviews:    s.Reviews.WithTx(tx),
	}
}

// UnitOfWork runs a sequence of store operations that commit or roll back together.
type UnitOfWork interface {
	// Do calls fn with transaction-bound stores. The transaction commits when
	// fn returns nil and rolls back otherwise.
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// TxUnitOfWork implements UnitOfWork on top of RunInTransaction.
type TxUnitOfWork struct {
	db     TxBeginner
	stores Stores
}

// NewTxUnitOfWork creates a UnitOfWork that opens transactions on db and binds
// stores to them.
func NewTxUnitOfWork(db TxBeginner, stores Stores) *TxUnitOfWork {
	return &TxUnitOfWork{db: db, stores: stores}
}

var _ UnitOfWork = (*TxUnitOfWork)(nil)

// Do implements UnitOfWork.
func (u *TxUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, u.stores.WithTx(tx))
	})
}
