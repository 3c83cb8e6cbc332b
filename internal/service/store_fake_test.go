package service

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/shopspring/decimal"
)

// memData holds rows without their associations, hydration happens on read.
type memData struct {
	nextID     uint
	leagues    map[uint]model.League
	teams      map[uint]model.Team
	categories map[uint]model.Category
	products   map[uint]model.Product
	variants   map[uint]model.Variant
	users      map[uint]model.User
	addresses  map[uint]model.Address
	carts      map[uint]model.Cart
	cartItems  map[uint]model.CartItem
	orders     map[uint]model.Order
	orderItems map[uint]model.OrderItem
	payments   map[uint]model.Payment
}

func newMemData() *memData {
	return &memData{
		leagues:    map[uint]model.League{},
		teams:      map[uint]model.Team{},
		categories: map[uint]model.Category{},
		products:   map[uint]model.Product{},
		variants:   map[uint]model.Variant{},
		users:      map[uint]model.User{},
		addresses:  map[uint]model.Address{},
		carts:      map[uint]model.Cart{},
		cartItems:  map[uint]model.CartItem{},
		orders:     map[uint]model.Order{},
		orderItems: map[uint]model.OrderItem{},
		payments:   map[uint]model.Payment{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		nextID:     d.nextID,
		leagues:    maps.Clone(d.leagues),
		teams:      maps.Clone(d.teams),
		categories: maps.Clone(d.categories),
		products:   maps.Clone(d.products),
		variants:   maps.Clone(d.variants),
		users:      maps.Clone(d.users),
		addresses:  maps.Clone(d.addresses),
		carts:      maps.Clone(d.carts),
		cartItems:  maps.Clone(d.cartItems),
		orders:     maps.Clone(d.orders),
		orderItems: maps.Clone(d.orderItems),
		payments:   maps.Clone(d.payments),
	}
}

func (d *memData) id() uint {
	d.nextID++
	return d.nextID
}

func notFound(what string) error {
	return apperr.New(apperr.NotFoundCode, "%s not found", what)
}

func conflict(what string) error {
	return apperr.New(apperr.ConflictCode, "%s already exists", what)
}

func sortedKeys[V any](m map[uint]V) []uint {
	return slices.Sorted(maps.Keys(m))
}

/*
memStore implements db.IStore and db.ICheckoutStore in memory.
Transactions are serialized by txMu and roll back by restoring a snapshot.
failOn makes the named operation return the given error once.
*/
type memStore struct {
	mu     *sync.Mutex
	txMu   *sync.Mutex
	d      **memData
	failOn map[string]error
}

func newMemStore() *memStore {
	d := newMemData()
	return &memStore{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, d: &d, failOn: map[string]error{}}
}

func (s *memStore) data() *memData {
	return *s.d
}

// fail must be called with mu held.
func (s *memStore) fail(op string) error {
	if err, ok := s.failOn[op]; ok {
		delete(s.failOn, op)
		return err
	}
	return nil
}

func (s *memStore) failNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = err
}

func (s *memStore) withTx(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data().clone()
	s.mu.Unlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		*s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) ExecTx(ctx context.Context, fn func(tx db.IStore) error) error {
	return s.withTx(func() error { return fn(s) })
}

func (s *memStore) InCheckoutTx(ctx context.Context, fn func(tx db.ICheckoutTx) error) error {
	return s.withTx(func() error { return fn(memCheckoutTx{s}) })
}

// hydration, mu held

func (s *memStore) variantDetail(id uint) *model.Variant {
	v, ok := s.data().variants[id]
	if !ok {
		return nil
	}
	if p, ok := s.data().products[v.ProductID]; ok {
		v.Product = &p
	}
	return &v
}

func (s *memStore) productDetail(p model.Product) model.Product {
	d := s.data()
	if c, ok := d.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	if p.TeamID != nil {
		if t, ok := d.teams[*p.TeamID]; ok {
			if l, ok := d.leagues[t.LeagueID]; ok {
				t.League = &l
			}
			p.Team = &t
		}
	}
	p.Variants = []model.Variant{}
	for _, id := range sortedKeys(d.variants) {
		if v := d.variants[id]; v.ProductID == p.ID {
			p.Variants = append(p.Variants, v)
		}
	}
	return p
}

func (s *memStore) cartDetail(c model.Cart) *model.Cart {
	c.Items = []model.CartItem{}
	for _, id := range sortedKeys(s.data().cartItems) {
		it := s.data().cartItems[id]
		if it.CartID != c.ID {
			continue
		}
		it.Variant = s.variantDetail(it.VariantID)
		c.Items = append(c.Items, it)
	}
	return &c
}

func (s *memStore) orderDetail(o model.Order) *model.Order {
	o.Items = []model.OrderItem{}
	for _, id := range sortedKeys(s.data().orderItems) {
		it := s.data().orderItems[id]
		if it.OrderID != o.ID {
			continue
		}
		if v, ok := s.data().variants[it.VariantID]; ok {
			it.Variant = &v
		}
		o.Items = append(o.Items, it)
	}
	return &o
}

// catalog

func (s *memStore) ListProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data()

	var matched []model.Product
	for _, id := range sortedKeys(d.products) {
		p := s.productDetail(d.products[id])
		if !p.IsActive {
			continue
		}
		if f.CategorySlug != "" && (p.Category == nil || p.Category.Slug != f.CategorySlug) {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" &&
			!strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Slug), q) {
			continue
		}
		if f.TeamID != nil && (p.TeamID == nil || *p.TeamID != *f.TeamID) {
			continue
		}
		if f.PriceMin != nil && p.Price.LessThan(*f.PriceMin) {
			continue
		}
		if f.PriceMax != nil && p.Price.GreaterThan(*f.PriceMax) {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	start := min(f.Offset(), len(matched))
	end := min(start+f.PageSize, len(matched))
	return matched[start:end], total, nil
}

func (s *memStore) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data().products {
		if p.Slug == slug && p.IsActive {
			p = s.productDetail(p)
			return &p, nil
		}
	}
	return nil, notFound("product")
}

func (s *memStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	categories := slices.Collect(maps.Values(s.data().categories))
	slices.SortFunc(categories, func(a, b model.Category) int { return strings.Compare(a.Name, b.Name) })
	return categories, nil
}

func (s *memStore) GetVariant(ctx context.Context, id uint) (*model.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.variantDetail(id); v != nil {
		return v, nil
	}
	return nil, notFound("variant")
}

func (s *memStore) CreateLeague(ctx context.Context, league *model.League) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	league.ID = s.data().id()
	s.data().leagues[league.ID] = *league
	return nil
}

func (s *memStore) CreateTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team.ID = s.data().id()
	row := *team
	row.League = nil
	s.data().teams[team.ID] = row
	return nil
}

func (s *memStore) CreateCategory(ctx context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data().categories {
		if c.Slug == category.Slug {
			return conflict("category")
		}
	}
	category.ID = s.data().id()
	s.data().categories[category.ID] = *category
	return nil
}

func (s *memStore) CreateProduct(ctx context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data()
	product.ID = d.id()
	for i := range product.Variants {
		product.Variants[i].ID = d.id()
		product.Variants[i].ProductID = product.ID
		v := product.Variants[i]
		v.Product = nil
		d.variants[v.ID] = v
	}
	row := *product
	row.Variants, row.Category, row.Team = nil, nil, nil
	d.products[product.ID] = row
	return nil
}

func (s *memStore) UpdateProductPrice(ctx context.Context, productID uint, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data().products[productID]
	if !ok {
		return notFound("product")
	}
	p.Price = price
	s.data().products[productID] = p
	return nil
}

// carts

func (s *memStore) findCart(match func(model.Cart) bool) (*model.Cart, bool) {
	for _, c := range s.data().carts {
		if match(c) {
			return &c, true
		}
	}
	return nil, false
}

func byUser(userID uint) func(model.Cart) bool {
	return func(c model.Cart) bool { return c.UserID != nil && *c.UserID == userID }
}

func bySession(sessionID string) func(model.Cart) bool {
	return func(c model.Cart) bool { return c.SessionID != nil && *c.SessionID == sessionID }
}

func (s *memStore) GetCartByUser(ctx context.Context, userID uint) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findCart(byUser(userID)); ok {
		return c, nil
	}
	return nil, notFound("cart")
}

func (s *memStore) GetCartBySession(ctx context.Context, sessionID string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findCart(bySession(sessionID)); ok {
		return c, nil
	}
	return nil, notFound("cart")
}

func (s *memStore) GetOrCreateUserCart(ctx context.Context, userID uint) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findCart(byUser(userID)); ok {
		return c, nil
	}
	c := model.Cart{ID: s.data().id(), UserID: &userID}
	s.data().carts[c.ID] = c
	return &c, nil
}

func (s *memStore) GetOrCreateSessionCart(ctx context.Context, sessionID string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.findCart(bySession(sessionID)); ok {
		return c, nil
	}
	c := model.Cart{ID: s.data().id(), SessionID: &sessionID}
	s.data().carts[c.ID] = c
	return &c, nil
}

func (s *memStore) LoadCart(ctx context.Context, cartID uint) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data().carts[cartID]
	if !ok {
		return nil, notFound("cart")
	}
	return s.cartDetail(c), nil
}

func (s *memStore) GetCartItem(ctx context.Context, cartID, itemID uint) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.data().cartItems[itemID]
	if !ok || it.CartID != cartID {
		return nil, notFound("cart item")
	}
	it.Variant = s.variantDetail(it.VariantID)
	return &it, nil
}

func (s *memStore) GetCartItemByVariant(ctx context.Context, cartID, variantID uint) (*model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.data().cartItems {
		if it.CartID == cartID && it.VariantID == variantID {
			return &it, nil
		}
	}
	return nil, notFound("cart item")
}

func (s *memStore) CreateCartItem(ctx context.Context, item *model.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateCartItem"); err != nil {
		return err
	}
	for _, it := range s.data().cartItems {
		if it.CartID == item.CartID && it.VariantID == item.VariantID {
			return conflict("cart item")
		}
	}
	item.ID = s.data().id()
	row := *item
	row.Variant = nil
	s.data().cartItems[item.ID] = row
	return nil
}

func (s *memStore) UpdateCartItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.data().cartItems[itemID]; ok {
		it.Quantity = quantity
		s.data().cartItems[itemID] = it
	}
	return nil
}

func (s *memStore) DeleteCartItem(ctx context.Context, cartID, itemID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.data().cartItems[itemID]; ok && it.CartID == cartID {
		delete(s.data().cartItems, itemID)
	}
	return nil
}

func (s *memStore) DeleteCart(ctx context.Context, cartID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteCart"); err != nil {
		return err
	}
	maps.DeleteFunc(s.data().cartItems, func(_ uint, it model.CartItem) bool { return it.CartID == cartID })
	delete(s.data().carts, cartID)
	return nil
}

// users and addresses

func (s *memStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data().users {
		if u.Username == user.Username {
			return conflict("user")
		}
	}
	user.ID = s.data().id()
	s.data().users[user.ID] = *user
	return nil
}

func (s *memStore) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.data().users[id]; ok {
		return &u, nil
	}
	return nil, notFound("user")
}

func (s *memStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data().users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (s *memStore) ListAddresses(ctx context.Context, userID uint) ([]model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var addresses []model.Address
	for _, id := range sortedKeys(s.data().addresses) {
		if a := s.data().addresses[id]; a.UserID == userID {
			addresses = append(addresses, a)
		}
	}
	return addresses, nil
}

func (s *memStore) CreateAddress(ctx context.Context, address *model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	address.ID = s.data().id()
	s.data().addresses[address.ID] = *address
	return nil
}

func (s *memStore) GetAddress(ctx context.Context, userID, addressID uint) (*model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.data().addresses[addressID]; ok && a.UserID == userID {
		return &a, nil
	}
	return nil, notFound("address")
}

// orders

func (s *memStore) GetOrder(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.data().orders[orderID]; ok && o.UserID == userID {
		return s.orderDetail(o), nil
	}
	return nil, notFound("order")
}

func (s *memStore) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.data().orders[orderID]; ok {
		return s.orderDetail(o), nil
	}
	return nil, notFound("order")
}

func (s *memStore) ListOrders(ctx context.Context, userID uint) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	ids := sortedKeys(s.data().orders)
	slices.Reverse(ids)
	for _, id := range ids {
		if o := s.data().orders[id]; o.UserID == userID {
			orders = append(orders, *s.orderDetail(o))
		}
	}
	return orders, nil
}

func (s *memStore) UpdateOrderStatus(ctx context.Context, orderID uint, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data().orders[orderID]
	if !ok {
		return notFound("order")
	}
	o.Status = status
	s.data().orders[orderID] = o
	return nil
}

// payments

func (s *memStore) findPayment(match func(model.Payment) bool) (*model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data().payments {
		if match(p) {
			return &p, nil
		}
	}
	return nil, notFound("payment")
}

func (s *memStore) GetPaymentByOrder(ctx context.Context, orderID uint) (*model.Payment, error) {
	return s.findPayment(func(p model.Payment) bool { return p.OrderID == orderID })
}

func (s *memStore) GetPaymentByPidx(ctx context.Context, pidx, provider string) (*model.Payment, error) {
	return s.findPayment(func(p model.Payment) bool { return p.Pidx == pidx && p.Provider == provider })
}

func (s *memStore) GetPaymentByTransactionUUID(ctx context.Context, transactionUUID, provider string) (*model.Payment, error) {
	return s.findPayment(func(p model.Payment) bool {
		return p.TransactionUUID == transactionUUID && p.Provider == provider
	})
}

func (s *memStore) UpsertPayment(ctx context.Context, payment *model.Payment, columns ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data()
	for id, existing := range d.payments {
		if existing.OrderID != payment.OrderID {
			continue
		}
		if len(columns) == 0 {
			columns = []string{"provider", "reference", "amount", "is_verified", "pidx", "transaction_uuid", "meta"}
		}
		assignPayment(&existing, payment, columns)
		d.payments[id] = existing
		payment.ID = id
		return nil
	}
	payment.ID = d.id()
	d.payments[payment.ID] = *payment
	return nil
}

func (s *memStore) GetPaymentForUpdate(ctx context.Context, paymentID uint) (*model.Payment, error) {
	return s.findPayment(func(p model.Payment) bool { return p.ID == paymentID })
}

func (s *memStore) UpdatePayment(ctx context.Context, payment *model.Payment, columns ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdatePayment"); err != nil {
		return err
	}
	existing, ok := s.data().payments[payment.ID]
	if !ok {
		return notFound("payment")
	}
	assignPayment(&existing, payment, columns)
	s.data().payments[payment.ID] = existing
	return nil
}

func assignPayment(dst, src *model.Payment, columns []string) {
	for _, c := range columns {
		switch c {
		case "provider":
			dst.Provider = src.Provider
		case "reference":
			dst.Reference = src.Reference
		case "amount":
			dst.Amount = src.Amount
		case "is_verified":
			dst.IsVerified = src.IsVerified
		case "pidx":
			dst.Pidx = src.Pidx
		case "transaction_uuid":
			dst.TransactionUUID = src.TransactionUUID
		case "meta":
			dst.Meta = src.Meta
		}
	}
}

// checkout port

type memCheckoutTx struct {
	s *memStore
}

func (t memCheckoutTx) LoadUserCart(ctx context.Context, userID uint) (*model.Cart, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.findCart(byUser(userID))
	if !ok {
		return nil, nil
	}
	return t.s.cartDetail(*c), nil
}

func (t memCheckoutTx) LockVariants(ctx context.Context, variantIDs []uint) (map[uint]*model.Variant, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	locked := make(map[uint]*model.Variant, len(variantIDs))
	for _, id := range variantIDs {
		if v := t.s.variantDetail(id); v != nil {
			locked[id] = v
		}
	}
	return locked, nil
}

func (t memCheckoutTx) CreateOrder(ctx context.Context, order *model.Order) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	d := t.s.data()
	order.ID = d.id()
	for i := range order.Items {
		order.Items[i].ID = d.id()
		order.Items[i].OrderID = order.ID
		it := order.Items[i]
		it.Variant = nil
		d.orderItems[it.ID] = it
	}
	row := *order
	row.Items = nil
	d.orders[order.ID] = row
	return nil
}

func (t memCheckoutTx) DecrementStock(ctx context.Context, variantID uint, quantity int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.fail("DecrementStock"); err != nil {
		return err
	}
	v, ok := t.s.data().variants[variantID]
	if !ok || v.Stock < quantity {
		return db.ErrStockNotEnough
	}
	v.Stock -= quantity
	t.s.data().variants[variantID] = v
	return nil
}

func (t memCheckoutTx) ClearCart(ctx context.Context, cartID uint) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	maps.DeleteFunc(t.s.data().cartItems, func(_ uint, it model.CartItem) bool { return it.CartID == cartID })
	return nil
}

var (
	_ db.IStore         = (*memStore)(nil)
	_ db.ICheckoutStore = (*memStore)(nil)
	_ db.ICheckoutTx    = memCheckoutTx{}
)

// fixtures

type fixture struct {
	store    *memStore
	category model.Category
	user     model.User
	address  model.Address
}

func newFixture() *fixture {
	ctx := context.Background()
	st := newMemStore()
	f := &fixture{store: st}
	f.category = model.Category{Name: "Club", Slug: "club"}
	_ = st.CreateCategory(ctx, &f.category)
	f.user = model.User{Username: "ram", Email: "ram@example.com"}
	_ = st.CreateUser(ctx, &f.user)
	f.address = model.Address{UserID: f.user.ID, Street: "Thamel", City: "Kathmandu", State: "Bagmati", ZipCode: "44600", Country: "Nepal"}
	_ = st.CreateAddress(ctx, &f.address)
	return f
}

// product creates an active product with one variant per entry of stocks, sizes S, M, L, XL in order.
func (f *fixture) product(title, price string, stocks ...int) *model.Product {
	sizes := []model.Size{model.SizeS, model.SizeM, model.SizeL, model.SizeXL}
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	p := &model.Product{
		Title:      title,
		Slug:       slug,
		Price:      decimal.RequireFromString(price),
		CategoryID: f.category.ID,
		IsActive:   true,
	}
	for i, stock := range stocks {
		p.Variants = append(p.Variants, model.Variant{
			Size:  sizes[i],
			Stock: stock,
			SKU:   slug + "-" + string(sizes[i]),
		})
	}
	_ = f.store.CreateProduct(context.Background(), p)
	return p
}

func (f *fixture) stock(variantID uint) int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return f.store.data().variants[variantID].Stock
}

func (f *fixture) newUser(username string) model.User {
	u := model.User{Username: username}
	_ = f.store.CreateUser(context.Background(), &u)
	return u
}

func (f *fixture) addressFor(userID uint) model.Address {
	a := model.Address{UserID: userID, Street: "Lakeside", City: "Pokhara", State: "Gandaki", ZipCode: "33700", Country: "Nepal"}
	_ = f.store.CreateAddress(context.Background(), &a)
	return a
}
