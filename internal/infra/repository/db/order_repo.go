package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// orders are only created by the checkout transaction, see CheckoutStore
type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Variant")
}

// Read - order owned by userID
func (r *OrderRepo) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.preloaded(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		return nil, translateErr(err, "order")
	}
	return &order, nil
}

func (r *OrderRepo) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloaded(ctx).First(&order, orderID).Error; err != nil {
		return nil, translateErr(err, "order")
	}
	return &order, nil
}

// Read - user's orders, newest first
func (r *OrderRepo) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloaded(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&orders).Error
	return orders, err
}

// Update - status only, transition rules are enforced by the caller
func (r *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID uint, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translateErr(gorm.ErrRecordNotFound, "order")
	}
	return nil
}
