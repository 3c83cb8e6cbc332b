package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"golang.org/x/sync/errgroup"
)

// @title storefront
// @version 1.0
// @description Football jersey storefront: catalog, carts, checkout and Khalti/eSewa payments.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @host      localhost:8000
// @BasePath  /api

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token. Example: "Bearer {token}"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := appcontext.NewApplicationContext(ctx, config.GetConfig())
	if err != nil {
		log.Fatal(err)
	}
	logger := app.Logger

	// handlers
	server := api.NewServer(
		handler.NewCatalogHandler(app.CatalogService),
		handler.NewCartHandler(app.CartService),
		handler.NewAddressHandler(app.AddressService),
		handler.NewOrderHandler(app.OrderService, app.PaymentService),
		handler.NewAuthHandler(app.AuthService),
		handler.NewPaymentHandler(app.PaymentService, app.Cf.EsewaSecretKey),
		handler.NewHealthHandler(app.HealthDependencies()),
	)

	r := router.SetupRouter(server, app.TokenMaker, app.Limiter, app.Metrics, app.Metrics.Handler(), logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown error")
		}
		return app.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Printf("closed completed")
}
