package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IStore is the unified persistence surface handed to services.
type IStore interface {
	ICatalogRepository
	ICartRepository
	IUserRepository
	IAddressRepository
	IOrderRepository
	IPaymentRepository

	// ExecTx runs fn inside one database transaction, fn receives a store bound to it.
	ExecTx(ctx context.Context, fn func(tx IStore) error) error
}

type ICatalogRepository interface {
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetVariant(ctx context.Context, id uint) (*model.Variant, error)
	CreateLeague(ctx context.Context, league *model.League) error
	CreateTeam(ctx context.Context, team *model.Team) error
	CreateCategory(ctx context.Context, category *model.Category) error
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error
}

type ICartRepository interface {
	GetCartByUser(ctx context.Context, userID uint) (*model.Cart, error)
	GetCartBySession(ctx context.Context, sessionID string) (*model.Cart, error)
	GetOrCreateUserCart(ctx context.Context, userID uint) (*model.Cart, error)
	GetOrCreateSessionCart(ctx context.Context, sessionID string) (*model.Cart, error)
	// LoadCart returns the cart with items, variants and products, items ordered by id.
	LoadCart(ctx context.Context, cartID uint) (*model.Cart, error)
	GetCartItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error)
	GetCartItemByVariant(ctx context.Context, cartID, variantID uint) (*model.CartItem, error)
	CreateCartItem(ctx context.Context, item *model.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, itemID uint, quantity int) error
	// DeleteCartItem is idempotent, a missing item is not an error.
	DeleteCartItem(ctx context.Context, cartID, itemID uint) error
	DeleteCart(ctx context.Context, cartID uint) error
}

type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type IAddressRepository interface {
	ListAddresses(ctx context.Context, userID uint) ([]model.Address, error)
	CreateAddress(ctx context.Context, address *model.Address) error
	GetAddress(ctx context.Context, userID, addressID uint) (*model.Address, error)
}

type IOrderRepository interface {
	GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error)
	GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status model.OrderStatus) error
}

type IPaymentRepository interface {
	GetPaymentByOrder(ctx context.Context, orderID uint) (*model.Payment, error)
	GetPaymentByPidx(ctx context.Context, pidx, provider string) (*model.Payment, error)
	GetPaymentByTransactionUUID(ctx context.Context, transactionUUID, provider string) (*model.Payment, error)
	// UpsertPayment inserts or, on order_id conflict, overwrites only the given columns.
	UpsertPayment(ctx context.Context, payment *model.Payment, columns ...string) error
	GetPaymentForUpdate(ctx context.Context, paymentID uint) (*model.Payment, error)
	// UpdatePayment writes only the given columns.
	UpdatePayment(ctx context.Context, payment *model.Payment, columns ...string) error
}

type Store struct {
	dbDao *DbDao
	*CatalogRepo
	*CartRepo
	*UserRepo
	*AddressRepo
	*OrderRepo
	*PaymentRepo
}

func NewStore(conn *gorm.DB) *Store {
	dbDao := NewDbDao(conn)
	return &Store{
		dbDao:       dbDao,
		CatalogRepo: NewCatalogRepo(dbDao),
		CartRepo:    NewCartRepo(dbDao),
		UserRepo:    NewUserRepo(dbDao),
		AddressRepo: NewAddressRepo(dbDao),
		OrderRepo:   NewOrderRepo(dbDao),
		PaymentRepo: NewPaymentRepo(dbDao),
	}
}

func (s *Store) ExecTx(ctx context.Context, fn func(tx IStore) error) error {
	return s.dbDao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// GetDB exposes the underlying session for health checks and tests.
func (s *Store) GetDB() *gorm.DB {
	return s.dbDao.DB
}

var (
	_ IStore             = (*Store)(nil)
	_ ICatalogRepository = (*CatalogRepo)(nil)
	_ ICartRepository    = (*CartRepo)(nil)
	_ IUserRepository    = (*UserRepo)(nil)
	_ IAddressRepository = (*AddressRepo)(nil)
	_ IOrderRepository   = (*OrderRepo)(nil)
	_ IPaymentRepository = (*PaymentRepo)(nil)
)
