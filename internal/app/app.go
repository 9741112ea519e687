package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/cart-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/port/rest"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/service"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/worker"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg           *config.Config
	log           logger.Logger
	server        *rest.Server
	metricsServer *http.Server
	sweeper       *worker.AbandonmentSweeper
	tracer        *sdktrace.TracerProvider
	mongoClient   *mongo.Client
	redisClient   *redis.Client
	natsConn      *nats.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logCfg := logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	appLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	tp := tracer.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint, appLogger)
	metricsManager := metrics.NewMetricsManager(cfg.Metrics.ServiceName)

	a := &App{cfg: cfg, log: appLogger, tracer: tp}

	appLogger.Info("Initializing MongoDB client...")
	a.mongoClient, err = mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		appLogger.Errorf("Failed to initialize MongoDB client: %v", err)
		return nil, a.abort(fmt.Errorf("failed to initialize MongoDB client: %w", err))
	}
	if err := mongoadapter.EnsureIndexes(ctx, a.mongoClient, cfg.MongoDB); err != nil {
		appLogger.Warnf("Failed to ensure MongoDB indexes: %v", err)
	}
	appLogger.Info("MongoDB client initialized successfully")

	appLogger.Info("Initializing Redis client...")
	a.redisClient, err = redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Errorf("Failed to initialize Redis client: %v", err)
		return nil, a.abort(fmt.Errorf("failed to initialize Redis client: %w", err))
	}
	appLogger.Info("Redis client initialized successfully")

	// Sweeper events are best effort; the service runs without NATS.
	var publisher worker.EventPublisher
	natsConn, err := natsadapter.NewConnection(cfg.NATS, appLogger)
	if err != nil {
		appLogger.Warnf("NATS unavailable, cart lifecycle events will not be published: %v", err)
	} else {
		a.natsConn = natsConn
		natsPublisher, err := natsadapter.NewNATSPublisher(natsConn)
		if err != nil {
			return nil, a.abort(fmt.Errorf("failed to create NATS publisher: %w", err))
		}
		publisher = natsPublisher
		appLogger.Info("NATS publisher initialized")
	}

	productRepo := mongoadapter.NewProductRepository(a.mongoClient, cfg.MongoDB)
	cartRepo := mongoadapter.NewCartRepository(a.mongoClient, cfg.MongoDB, productRepo)
	productCache := redisadapter.NewProductCacheRepository(a.redisClient)
	sessionRepo := redisadapter.NewSessionRepository(a.redisClient)
	appLogger.Info("Repositories initialized")

	productService := service.NewProductService(productRepo, productCache, metricsManager, appLogger, cfg.ProductCache.TTL)
	cartService := service.NewCartService(cartRepo, productService, metricsManager, appLogger)
	sessionResolver := service.NewSessionResolver(sessionRepo, cartRepo, appLogger, cfg.Session.TTL)

	sweeper := worker.NewAbandonmentSweeper(cartRepo, publisher, metricsManager, appLogger, cfg.Sweeper)

	router := rest.NewRouter(rest.RouterDeps{
		CartService:     cartService,
		ProductService:  productService,
		SessionResolver: sessionResolver,
		Session:         cfg.Session,
		Metrics:         metricsManager,
		Log:             appLogger,
	})

	a.server = rest.NewServer(cfg.HTTPServer, router, appLogger)
	a.metricsServer = metrics.NewServer(cfg.Metrics.Port, metricsManager.Registry)
	a.sweeper = sweeper
	return a, nil
}

// abort releases whatever New opened before failing.
func (a *App) abort(err error) error {
	a.closeConnections()
	return err
}

// Run serves until SIGINT/SIGTERM or until a component fails, then shuts down.
func (a *App) Run() error {
	a.log.Info("Starting application components...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.server.Start)
	g.Go(func() error {
		a.log.Infof("Metrics server listening on %s", a.metricsServer.Addr)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Shutting down application...")
		return a.shutdown()
	})

	err := g.Wait()
	a.closeConnections()
	if err != nil {
		a.log.Errorf("Application stopped with error: %v", err)
		return err
	}
	a.log.Info("Application shut down successfully")
	return nil
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful)
	defer cancel()

	var errs []error
	if err := a.server.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
	}
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
	}
	return errors.Join(errs...)
}

func (a *App) closeConnections() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.log.Info("Closing connections...")

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	_ = a.log.Sync()
}
