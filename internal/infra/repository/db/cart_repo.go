package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) GetCartByUser(ctx context.Context, userID uint) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, translateErr(err, "cart")
	}
	return &cart, nil
}

func (r *CartRepo) GetCartBySession(ctx context.Context, sessionID string) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&cart).Error; err != nil {
		return nil, translateErr(err, "cart")
	}
	return &cart, nil
}

// GetOrCreateUserCart - insert ... on conflict do nothing, then read back; safe under concurrent first use
func (r *CartRepo) GetOrCreateUserCart(ctx context.Context, userID uint) (*model.Cart, error) {
	cart := model.Cart{UserID: &userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit("Items").
		Create(&cart).Error
	if err != nil {
		return nil, err
	}
	return r.GetCartByUser(ctx, userID)
}

func (r *CartRepo) GetOrCreateSessionCart(ctx context.Context, sessionID string) (*model.Cart, error) {
	cart := model.Cart{SessionID: &sessionID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Omit("Items").
		Create(&cart).Error
	if err != nil {
		return nil, err
	}
	return r.GetCartBySession(ctx, sessionID)
}

func (r *CartRepo) LoadCart(ctx context.Context, cartID uint) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Variant.Product").
		First(&cart, cartID).Error
	if err != nil {
		return nil, translateErr(err, "cart")
	}
	return &cart, nil
}

// Read - item scoped to its cart, variant and product preloaded
func (r *CartRepo) GetCartItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Variant.Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, translateErr(err, "cart item")
	}
	return &item, nil
}

func (r *CartRepo) GetCartItemByVariant(ctx context.Context, cartID, variantID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		First(&item).Error
	if err != nil {
		return nil, translateErr(err, "cart item")
	}
	return &item, nil
}

func (r *CartRepo) CreateCartItem(ctx context.Context, item *model.CartItem) error {
	return translateErr(r.db.WithContext(ctx).Omit("Variant").Create(item).Error, "cart item")
}

func (r *CartRepo) UpdateCartItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error
}

func (r *CartRepo) DeleteCartItem(ctx context.Context, cartID, itemID uint) error {
	return r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&model.CartItem{}).Error
}

// Delete - cart row and its items
func (r *CartRepo) DeleteCart(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Cart{}, cartID).Error
	})
}
