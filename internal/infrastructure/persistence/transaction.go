package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/shared"
)

type txKey struct{}

// TxManager implements shared.TxManager on GORM. The open transaction
// travels in the context; repositories pick it up through conn.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTransaction implements shared.TxManager. Nested calls join the
// outer transaction. shared.AfterCommit callbacks registered inside run
// after the outermost commit and are discarded on rollback.
func (m *TxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	ctx, runHooks := shared.WithCommitHooks(ctx)
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil {
		return err
	}
	runHooks()
	return nil
}

// conn returns the transaction stored in ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

var _ shared.TxManager = (*TxManager)(nil)
