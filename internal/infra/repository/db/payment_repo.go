package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm/clause"
)

type PaymentRepo struct {
	db *DbDao
}

func NewPaymentRepo(db *DbDao) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func (r *PaymentRepo) GetPaymentByOrder(ctx context.Context, orderID uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, translateErr(err, "payment")
	}
	return &payment, nil
}

func (r *PaymentRepo) GetPaymentByPidx(ctx context.Context, pidx, provider string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("pidx = ? AND provider = ?", pidx, provider).First(&payment).Error
	if err != nil {
		return nil, translateErr(err, "payment")
	}
	return &payment, nil
}

func (r *PaymentRepo) GetPaymentByTransactionUUID(ctx context.Context, transactionUUID, provider string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Where("transaction_uuid = ? AND provider = ?", transactionUUID, provider).First(&payment).Error
	if err != nil {
		return nil, translateErr(err, "payment")
	}
	return &payment, nil
}

// Upsert - one payment per order, columns lists what a conflicting row gets overwritten with
func (r *PaymentRepo) UpsertPayment(ctx context.Context, payment *model.Payment, columns ...string) error {
	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}}
	if len(columns) == 0 {
		onConflict.UpdateAll = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	}
	return r.db.WithContext(ctx).Clauses(onConflict).Create(payment).Error
}

// GetPaymentForUpdate holds a row lock until the surrounding transaction ends.
func (r *PaymentRepo) GetPaymentForUpdate(ctx context.Context, paymentID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", paymentID).
		First(&payment).Error
	if err != nil {
		return nil, translateErr(err, "payment")
	}
	return &payment, nil
}

// UpdatePayment writes only the given columns of payment, the rest of the row is left untouched.
func (r *PaymentRepo) UpdatePayment(ctx context.Context, payment *model.Payment, columns ...string) error {
	if len(columns) == 0 {
		return errors.New("update payment: no columns")
	}
	return r.db.WithContext(ctx).Model(payment).Select(append(columns, "updated_at")).Updates(payment).Error
}
