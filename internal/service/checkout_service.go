package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type IOrderService interface {
	/*
		Checkout converts the user's cart into a PENDING order in one transaction:
		variants are locked in ascending id order, stock is checked and decremented, prices are snapshotted
		and the cart is emptied. Any failure leaves stock, orders and cart untouched.

		Errors:
		  - apperr.NotFoundCode 404: address missing or owned by someone else
		  - apperr.BadRequestCode 400: cart empty, or an item exceeds the locked stock
	*/
	Checkout(ctx context.Context, userID, addressID uint) (*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
}

type OrderService struct {
	store     db.IStore
	checkout  db.ICheckoutStore
	publisher producer.IEventPublisher
	metrics   metrics.IRecorder
}

func NewOrderService(store db.IStore, checkout db.ICheckoutStore, publisher producer.IEventPublisher, recorder metrics.IRecorder) *OrderService {
	mustNotNil(store, "order service initialization failed: store cannot be nil")
	mustNotNil(checkout, "order service initialization failed: checkout store cannot be nil")
	if isNil(publisher) {
		publisher = producer.NoopPublisher{}
	}
	return &OrderService{store: store, checkout: checkout, publisher: publisher, metrics: orNopRecorder(recorder)}
}

func insufficientStock(v *model.Variant) error {
	return apperr.New(apperr.BadRequestCode, "Insufficient stock for %s. Left: %d", v.Label(), v.Stock)
}

func (s *OrderService) Checkout(ctx context.Context, userID, addressID uint) (order *model.Order, err error) {
	defer observe(s.metrics, "checkout", time.Now(), &err)

	if _, err := s.store.GetAddress(ctx, userID, addressID); err != nil {
		return nil, err
	}

	var locked map[uint]*model.Variant
	err = s.checkout.InCheckoutTx(ctx, func(tx db.ICheckoutTx) error {
		cart, err := tx.LoadUserCart(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return apperr.New(apperr.BadRequestCode, "Cart empty")
		}

		variantIDs := make([]uint, 0, len(cart.Items))
		for _, it := range cart.Items {
			variantIDs = append(variantIDs, it.VariantID)
		}
		slices.Sort(variantIDs)
		variantIDs = slices.Compact(variantIDs)

		locked, err = tx.LockVariants(ctx, variantIDs)
		if err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]model.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			v, ok := locked[it.VariantID]
			if !ok {
				return apperr.New(apperr.NotFoundCode, "variant %d not found", it.VariantID)
			}
			if it.Quantity > v.Stock {
				return insufficientStock(v)
			}
			total = total.Add(v.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, model.OrderItem{VariantID: v.ID, Price: v.Product.Price, Quantity: it.Quantity})
		}

		order = &model.Order{
			UserID:    userID,
			AddressID: &addressID,
			Total:     total,
			Status:    model.OrderStatusPending,
			Items:     items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, it := range cart.Items {
			if err := tx.DecrementStock(ctx, it.VariantID, it.Quantity); err != nil {
				if errors.Is(err, db.ErrStockNotEnough) {
					return insufficientStock(locked[it.VariantID])
				}
				return err
			}
		}
		return tx.ClearCart(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		if v, ok := locked[order.Items[i].VariantID]; ok {
			detail := *v
			detail.Stock -= order.Items[i].Quantity
			order.Items[i].Variant = &detail
		}
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().Uint("order_id", order.ID).Uint("user_id", userID).Str("total", order.Total.StringFixed(2)).Msg("order created")
	event := producer.NewOrderCreated(order.ID, producer.OrderCreated{
		UserID:    userID,
		AddressID: addressID,
		Total:     order.Total,
		ItemCount: len(order.Items),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Uint("order_id", order.ID).Msg("publish order.created failed")
	}
	return order, nil
}

// GetOrder 404s for orders of other users, it backs status polling after a gateway redirect.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	return s.store.GetOrder(ctx, userID, orderID)
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

var _ IOrderService = (*OrderService)(nil)
