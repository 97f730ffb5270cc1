package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// Ledger mutates product stock inside a caller-owned transaction. Every
// change goes through a single conditional UPDATE so concurrent mutations
// can never drive stock below zero.
type Ledger interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error
}

type ledger struct{}

// NewLedger exposes the default stock ledger implementation.
func NewLedger() Ledger {
	return ledger{}
}

// ApplyDelta adjusts stock by delta. Negative deltas reserve stock and fail
// with INSUFFICIENT_STOCK when the floor would be crossed; positive deltas
// release stock. A zero delta is a no-op.
func (ledger) ApplyDelta(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock mutation")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock + ? >= 0
	`, delta, productID, delta)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "apply stock delta")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM products WHERE id = ?`, productID,
	).Scan(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product existence")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": productID.String()})
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product").
		WithDetails(map[string]any{"product_id": productID.String()})
}
