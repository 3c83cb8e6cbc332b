package db

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ICheckoutStore is the narrow port the checkout engine runs against.
type ICheckoutStore interface {
	// InCheckoutTx commits when fn returns nil and rolls back everything otherwise.
	InCheckoutTx(ctx context.Context, fn func(tx ICheckoutTx) error) error
}

// ICheckoutTx is only valid inside InCheckoutTx.
type ICheckoutTx interface {
	// LoadUserCart returns the user's cart with items, nil when the user has no cart.
	LoadUserCart(ctx context.Context, userID uint) (*model.Cart, error)
	// LockVariants takes row locks on the variants in ascending id order.
	LockVariants(ctx context.Context, variantIDs []uint) (map[uint]*model.Variant, error)
	CreateOrder(ctx context.Context, order *model.Order) error
	// DecrementStock fails with ErrStockNotEnough instead of driving stock negative.
	DecrementStock(ctx context.Context, variantID uint, quantity int) error
	ClearCart(ctx context.Context, cartID uint) error
}

type CheckoutStore struct {
	db *DbDao
}

func NewCheckoutStore(db *DbDao) *CheckoutStore {
	return &CheckoutStore{db: db}
}

func (s *CheckoutStore) InCheckoutTx(ctx context.Context, fn func(tx ICheckoutTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkoutTx{tx: tx})
	})
}

type checkoutTx struct {
	tx *gorm.DB
}

func (c *checkoutTx) LoadUserCart(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := c.tx.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.ID == 0 {
		return nil, nil
	}
	return &cart, nil
}

// SELECT ... FOR UPDATE ordered by id so concurrent checkouts acquire locks in the same order
func (c *checkoutTx) LockVariants(ctx context.Context, variantIDs []uint) (map[uint]*model.Variant, error) {
	var variants []model.Variant
	err := c.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", variantIDs).
		Order("id").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}

	// products are read after the locks, price is snapshotted from here
	productIDs := make([]uint, 0, len(variants))
	for _, v := range variants {
		productIDs = append(productIDs, v.ProductID)
	}
	var products []model.Product
	if err := c.tx.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	locked := make(map[uint]*model.Variant, len(variants))
	for i := range variants {
		v := &variants[i]
		v.Product = byID[v.ProductID]
		if v.Product == nil {
			return nil, fmt.Errorf("variant %d has no product", v.ID)
		}
		locked[v.ID] = v
	}
	return locked, nil
}

// Create - order header and item snapshots, items must carry VariantID only
func (c *checkoutTx) CreateOrder(ctx context.Context, order *model.Order) error {
	return c.tx.WithContext(ctx).Omit("Payment").Create(order).Error
}

func (c *checkoutTx) DecrementStock(ctx context.Context, variantID uint, quantity int) error {
	res := c.tx.WithContext(ctx).Model(&model.Variant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockNotEnough
	}
	return nil
}

// Delete - items only, the cart row is reused
func (c *checkoutTx) ClearCart(ctx context.Context, cartID uint) error {
	return c.tx.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

var (
	_ ICheckoutStore = (*CheckoutStore)(nil)
	_ ICheckoutTx    = (*checkoutTx)(nil)
)
