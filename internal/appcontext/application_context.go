package appcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway/esewa"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway/khalti"
	"github.com/RoyceAzure/lab/storefront/internal/infra/logger"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ApplicationContext struct {
	Cf     *config.Config
	Logger *zerolog.Logger

	DbConn        *pgxpool.Pool
	DbDao         db.IStore
	CheckoutStore db.ICheckoutStore
	CatalogRepo   db.ICatalogRepository
	RedisClient   *redis.Client
	Cache         redis_repo.ICache

	kafkaLogger    *logger.KafkaLogger
	EventPublisher producer.IEventPublisher
	Metrics        *metrics.Metrics
	Limiter        ratelimit.Limiter
	TokenMaker     token.Maker
	Khalti         *khalti.Client
	Esewa          *esewa.Client

	CatalogService service.ICatalogService
	CartService    service.ICartService
	OrderService   service.IOrderService
	PaymentService service.IPaymentService
	AuthService    service.IAuthService
	AddressService service.IAddressService
}

func NewApplicationContext(ctx context.Context, cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	app.setUpLogger()
	app.setUpMetrics()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"database connection", app.setUpDbConn},
		{"database DAO", app.setUpDbDao},
		{"redis cache", app.setUpRedis},
		{"event publisher", app.setUpEventPublisher},
		{"token maker", app.setUpTokenMaker},
		{"payment gateways", app.setUpGateways},
		{"rate limiter", app.setUpLimiter},
		{"services", app.setUpServices},
	}
	for _, step := range steps {
		app.Logger.Info().Msgf("Start setup %s", step.name)
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
		app.Logger.Info().Msgf("Finish setup %s", step.name)
	}
	return nil
}

// setUpLogger tees every entry to kafka when brokers are configured.
func (app *ApplicationContext) setUpLogger() {
	if brokers := app.Cf.KafkaBrokerList(); len(brokers) > 0 {
		app.kafkaLogger = logger.NewKafkaLogger(producer.NewKafkaWriter(brokers, app.Cf.KafkaLogTopic))
		l := logger.New(app.Cf.ModulerName, app.Cf.Env, app.kafkaLogger)
		app.Logger = &l
		return
	}
	l := logger.New(app.Cf.ModulerName, app.Cf.Env)
	app.Logger = &l
}

func (app *ApplicationContext) setUpMetrics() {
	app.Metrics = metrics.New(app.Cf.ModulerName)
}

func (app *ApplicationContext) setUpDbConn(ctx context.Context) error {
	dsn := app.Cf.PostgresDSN()
	pool, err := db.NewPgxPool(ctx, dsn)
	if err != nil {
		return err
	}
	app.DbConn = pool

	if err := db.RunMigrations(dsn); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (app *ApplicationContext) setUpDbDao(context.Context) error {
	conn, err := db.GetDbConn(app.DbConn)
	if err != nil {
		return err
	}
	app.DbDao = db.NewStore(conn)
	app.CheckoutStore = db.NewCheckoutStore(db.NewDbDao(conn))
	app.CatalogRepo = app.DbDao
	return nil
}

// setUpRedis is optional, an unreachable redis only disables the catalog cache and shared rate limiting.
func (app *ApplicationContext) setUpRedis(ctx context.Context) error {
	if app.Cf.RedisAddr == "" {
		app.Logger.Info().Msg("REDIS_ADDR not set, catalog cache disabled")
		return nil
	}
	client, err := redis_repo.Connect(ctx, app.Cf.RedisAddr, redis_repo.WithPassword(app.Cf.RedisPassword))
	if err != nil {
		app.Logger.Warn().Err(err).Msg("redis unreachable, catalog cache disabled")
		return nil
	}
	cache := redis_repo.NewRedisCache(client)
	app.RedisClient = client
	app.Cache = cache

	ttl := time.Duration(app.Cf.CatalogCacheTTL) * time.Second
	app.CatalogRepo = redis_repo.NewCacheAsideCatalogRepo(app.DbDao, cache, ttl, app.Logger)
	return nil
}

func (app *ApplicationContext) setUpEventPublisher(context.Context) error {
	brokers := app.Cf.KafkaBrokerList()
	if len(brokers) == 0 || app.Cf.KafkaEventTopic == "" {
		app.EventPublisher = producer.NoopPublisher{}
		return nil
	}
	app.EventPublisher = producer.NewKafkaEventPublisher(producer.NewKafkaWriter(brokers, app.Cf.KafkaEventTopic))
	return nil
}

func (app *ApplicationContext) setUpTokenMaker(context.Context) error {
	tokenMaker, err := token.NewPasetoMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = tokenMaker
	return nil
}

func (app *ApplicationContext) setUpGateways(context.Context) error {
	httpClient := gateway.NewHTTPClient(gateway.DefaultTimeout)
	app.Khalti = khalti.NewClient(app.Cf.KhaltiBaseURL, app.Cf.KhaltiSecretKey, khalti.WithHTTPClient(httpClient))
	app.Esewa = esewa.NewClient(esewa.Config{
		FormURL:     app.Cf.EsewaFormURL,
		StatusURL:   app.Cf.EsewaStatusURL,
		ProductCode: app.Cf.EsewaProductCode,
		SecretKey:   app.Cf.EsewaSecretKey,
		SuccessURL:  app.Cf.EsewaSuccessURL,
		FailureURL:  app.Cf.EsewaFailureURL,
	}, esewa.WithHTTPClient(httpClient))
	return nil
}

// setUpLimiter shares buckets through redis when available so every replica enforces one budget.
func (app *ApplicationContext) setUpLimiter(context.Context) error {
	cfg := ratelimit.LimiterConfig{
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   float64(app.Cf.RateLimitRatePS),
		IdleTTL:  10 * time.Minute,
	}
	if app.RedisClient != nil {
		app.Limiter = ratelimit.NewRedisTokenBucket(app.RedisClient, cfg, app.Logger)
		return nil
	}
	app.Limiter = ratelimit.NewTokenBucket(cfg)
	return nil
}

func (app *ApplicationContext) setUpServices(context.Context) error {
	app.CatalogService = service.NewCatalogService(app.CatalogRepo, app.Cf.PageSize)
	app.CartService = service.NewCartService(app.DbDao, app.Metrics)
	app.OrderService = service.NewOrderService(app.DbDao, app.CheckoutStore, app.EventPublisher, app.Metrics)
	app.PaymentService = service.NewPaymentService(
		app.DbDao,
		app.Khalti,
		app.Esewa,
		service.KhaltiSettings{ReturnURL: app.Cf.KhaltiReturnURL, WebsiteURL: app.Cf.KhaltiWebsite},
		service.PaymentRedirects{Success: app.Cf.PaymentSuccessRedirect(), Failure: app.Cf.PaymentFailureRedirect()},
		app.EventPublisher,
		app.Metrics,
	)
	app.AuthService = service.NewAuthService(
		app.DbDao,
		app.TokenMaker,
		time.Duration(app.Cf.AccessTokenHours)*time.Hour,
		time.Duration(app.Cf.RefreshTokenHours)*time.Hour,
		app.Metrics,
	)
	app.AddressService = service.NewAddressService(app.DbDao)
	return nil
}

// HealthDependencies are pinged by /healthz.
func (app *ApplicationContext) HealthDependencies() map[string]handler.Pinger {
	deps := map[string]handler.Pinger{}
	if app.DbConn != nil {
		deps["postgres"] = app.DbConn
	}
	if app.Cache != nil {
		deps["redis"] = app.Cache
	}
	return deps
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log := app.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	log.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		var errs []error
		if stopper, ok := app.Limiter.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		if app.EventPublisher != nil {
			if err := app.EventPublisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close event publisher: %w", err))
			}
		}
		if app.RedisClient != nil {
			log.Info().Msg("Closing redis connection...")
			if err := app.RedisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		if app.DbConn != nil {
			log.Info().Msg("Closing database connection...")
			app.DbConn.Close()
		}

		log.Info().Msg("Application shutdown complete")
		// the kafka sink goes last so the lines above still reach it
		if app.kafkaLogger != nil {
			if err := app.kafkaLogger.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close kafka logger: %w", err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
