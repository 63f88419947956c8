// internal/app/system/txn/txn.go
package txn

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey struct{}

// Runner wraps service-level units of work in a single database transaction.
//
// The closure receives a context carrying the transaction handle; stores
// resolve it with From, so every store call inside the closure joins the
// same transaction. If the closure returns an error the transaction rolls
// back and nothing it did is visible anywhere, including to event handlers:
// callers publish collected domain events only after InTx returns nil.
type Runner struct {
	db *gorm.DB
}

// NewRunner creates a Runner over the given database handle.
func NewRunner(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// InTx executes fn inside a transaction. The returned error is the closure's
// error or the commit error; on nil the transaction has durably committed.
func (r *Runner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxKey{}, tx))
	})
}

// From returns the transaction handle carried by ctx, or fallback when the
// caller is not inside an InTx closure.
func From(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
