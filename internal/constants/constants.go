package constants

const (
	// paging
	DefaultPagingSize int = 12
	DefaultPaging     int = 1
)

// catalog ordering keys accepted by GET /products
type ProductOrdering string

const (
	DefaultProductOrdering ProductOrdering = "-created"
	OrderingPriceAsc       ProductOrdering = "price"
	OrderingPriceDesc      ProductOrdering = "-price"
	OrderingCreatedAsc     ProductOrdering = "created"
	OrderingCreatedDesc    ProductOrdering = "-created"
	OrderingTitleAsc       ProductOrdering = "title"
	OrderingTitleDesc      ProductOrdering = "-title"
)

var productOrderingColumns = map[ProductOrdering]string{
	OrderingPriceAsc:    "products.price asc",
	OrderingPriceDesc:   "products.price desc",
	OrderingCreatedAsc:  "products.created_at asc",
	OrderingCreatedDesc: "products.created_at desc",
	OrderingTitleAsc:    "products.title asc",
	OrderingTitleDesc:   "products.title desc",
}

// OrderClause maps an ordering key to a fixed sql order clause, unknown keys fall back to newest first.
func OrderClause(ordering string) string {
	if c, ok := productOrderingColumns[ProductOrdering(ordering)]; ok {
		return c
	}
	return productOrderingColumns[DefaultProductOrdering]
}

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
	SessionIDHeaderKey      ContextKey = "X-Session-Id"
	SessionIDKey            ContextKey = "session_id"
)

type TokenDurationHour int

const (
	AccessTokenDuration  TokenDurationHour = 4
	RefreshTokenDuration TokenDurationHour = 24 * 7
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-Id"
)

// payment providers
const (
	ProviderKhalti = "khalti"
	ProviderEsewa  = "esewa"
)
