package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	CatalogHandler *handler.CatalogHandler
	CartHandler    *handler.CartHandler
	AddressHandler *handler.AddressHandler
	OrderHandler   *handler.OrderHandler
	AuthHandler    *handler.AuthHandler
	PaymentHandler *handler.PaymentHandler
	HealthHandler  *handler.HealthHandler
}

func NewServer(
	catalogHandler *handler.CatalogHandler,
	cartHandler *handler.CartHandler,
	addressHandler *handler.AddressHandler,
	orderHandler *handler.OrderHandler,
	authHandler *handler.AuthHandler,
	paymentHandler *handler.PaymentHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	return &Server{
		CatalogHandler: catalogHandler,
		CartHandler:    cartHandler,
		AddressHandler: addressHandler,
		OrderHandler:   orderHandler,
		AuthHandler:    authHandler,
		PaymentHandler: paymentHandler,
		HealthHandler:  healthHandler,
	}
}
