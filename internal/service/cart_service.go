package service

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

// CartOwner identifies whose cart a request operates on.
// UserID wins over SessionID, zero UserID means anonymous.
type CartOwner struct {
	UserID    uint
	SessionID string
}

func (o CartOwner) IsAnonymous() bool {
	return o.UserID == 0 && o.SessionID == ""
}

type ICartService interface {
	// GetCart returns the owner's cart, creating it on first use.
	//
	// Errors:
	//   - apperr.BadRequestCode 400: neither a user nor an X-Session-Id was supplied
	GetCart(ctx context.Context, owner CartOwner) (*model.Cart, error)
	// AddItem adds quantity (floored at 1) of a variant, merging with an existing line.
	//
	// Errors:
	//   - apperr.NotFoundCode 404: unknown variant
	//   - apperr.BadRequestCode 400: quantity exceeds stock, alone or together with what is already in the cart
	AddItem(ctx context.Context, owner CartOwner, variantID uint, quantity int) (*model.Cart, error)
	// UpdateQuantity sets the quantity (floored at 1) of a line in the owner's cart.
	//
	// Errors:
	//   - apperr.NotFoundCode 404: the item is not in this cart
	//   - apperr.BadRequestCode 400: quantity exceeds stock
	UpdateQuantity(ctx context.Context, owner CartOwner, itemID uint, quantity int) (*model.Cart, error)
	// RemoveItem is idempotent, removing a missing item returns the unchanged cart.
	RemoveItem(ctx context.Context, owner CartOwner, itemID uint) (*model.Cart, error)
}

type CartService struct {
	store   db.IStore
	metrics metrics.IRecorder
}

func NewCartService(store db.IStore, recorder metrics.IRecorder) *CartService {
	mustNotNil(store, "cart service initialization failed: store cannot be nil")
	return &CartService{store: store, metrics: orNopRecorder(recorder)}
}

func (s *CartService) resolveCart(ctx context.Context, owner CartOwner) (*model.Cart, error) {
	switch {
	case owner.UserID != 0:
		return s.store.GetOrCreateUserCart(ctx, owner.UserID)
	case owner.SessionID != "":
		return s.store.GetOrCreateSessionCart(ctx, owner.SessionID)
	default:
		return nil, apperr.New(apperr.BadRequestCode, "Missing X-Session-Id header")
	}
}

func (s *CartService) GetCart(ctx context.Context, owner CartOwner) (*model.Cart, error) {
	cart, err := s.resolveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.store.LoadCart(ctx, cart.ID)
}

func (s *CartService) AddItem(ctx context.Context, owner CartOwner, variantID uint, quantity int) (cart *model.Cart, err error) {
	defer observe(s.metrics, "cart_add", time.Now(), &err)

	cart, err = s.resolveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	quantity = max(quantity, 1)

	variant, err := s.store.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if quantity > variant.Stock {
		return nil, apperr.New(apperr.BadRequestCode, "Only %d left for %s", variant.Stock, variant.Label())
	}

	existing, err := s.store.GetCartItemByVariant(ctx, cart.ID, variant.ID)
	switch {
	case err == nil:
		newQty := existing.Quantity + quantity
		if newQty > variant.Stock {
			return nil, apperr.New(apperr.BadRequestCode, "Only %d left; current in cart %d", variant.Stock, existing.Quantity)
		}
		if err := s.store.UpdateCartItemQuantity(ctx, existing.ID, newQty); err != nil {
			return nil, err
		}
	case errors.Is(err, apperr.ErrNotFound):
		if err := s.store.CreateCartItem(ctx, &model.CartItem{CartID: cart.ID, VariantID: variant.ID, Quantity: quantity}); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.store.LoadCart(ctx, cart.ID)
}

func (s *CartService) UpdateQuantity(ctx context.Context, owner CartOwner, itemID uint, quantity int) (cart *model.Cart, err error) {
	defer observe(s.metrics, "cart_update", time.Now(), &err)

	cart, err = s.resolveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	quantity = max(quantity, 1)

	item, err := s.store.GetCartItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Variant == nil {
		return nil, apperr.New(apperr.NotFoundCode, "variant not found")
	}
	if quantity > item.Variant.Stock {
		return nil, apperr.New(apperr.BadRequestCode, "Only %d left", item.Variant.Stock)
	}
	if err := s.store.UpdateCartItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	return s.store.LoadCart(ctx, cart.ID)
}

func (s *CartService) RemoveItem(ctx context.Context, owner CartOwner, itemID uint) (*model.Cart, error) {
	cart, err := s.resolveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteCartItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.store.LoadCart(ctx, cart.ID)
}

var _ ICartService = (*CartService)(nil)
