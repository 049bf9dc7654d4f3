package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/config"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	h "github.com/fjod/go_shop/internal/http"
	"github.com/fjod/go_shop/internal/logger"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	mongoDB, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("database", cfg.MongoDBName).Msg("connected to MongoDB")

	carts := repository.NewCartRepository(mongoDB)
	coupons := repository.NewCouponRepository(mongoDB)
	orders := repository.NewOrderRepository(mongoDB)
	products := repository.NewProductRepository(mongoDB)
	outbox := repository.NewOutboxRepository(mongoDB)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = repository.EnsureIndexes(indexCtx, carts, coupons, orders, products, outbox)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	var tx repository.Transactor
	if cfg.MongoTransactions {
		tx = repository.NewMongoTransactor(mongoDB)
	} else {
		log.Warn().Msg("MongoDB transactions disabled, order placement is not atomic")
		tx = repository.NewSequentialTransactor()
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// the cart cache degrades to repository reads
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	cartCache := cache.NewRedisCache(redisClient, cfg.CartCacheTTL)

	var writer events.MessageWriter
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		writer = events.NewKafkaWriter(cfg.KafkaOrderTopic, brokers...)
		log.Info().Strs("brokers", brokers).Str("topic", cfg.KafkaOrderTopic).Msg("relaying order events to Kafka")
	} else {
		writer = events.DiscardWriter{}
		log.Warn().Msg("no Kafka brokers configured, order events are discarded")
	}
	relay := events.NewRelay(outbox, writer, events.RelayConfig{Interval: cfg.OutboxInterval}, log)

	gateway := payment.NewBreakerGateway(
		payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.StripeSuccessURL,
			CancelURL:     cfg.StripeCancelURL,
		}),
		payment.BreakerSettings{ConsecutiveFailures: cfg.BreakerFailures, OpenTimeout: cfg.BreakerOpenTimeout},
		log,
	)

	cartService := service.NewCartService(carts, products, coupons, cartCache, log)
	couponService := service.NewCouponService(coupons, log)
	productService := service.NewProductService(products)
	orderService := service.NewOrderService(service.OrderDeps{
		Carts:    carts,
		Orders:   orders,
		Products: products,
		Tx:       tx,
		Cache:    cartCache,
		Events:   events.NewOutboxPublisher(outbox),
		Charges:  domain.Charges{Tax: cfg.TaxPrice, Shipping: cfg.ShippingPrice},
		Log:      log,
	})
	checkoutService := service.NewCheckoutService(orderService, gateway, cfg.Currency, log)

	handlerCfg := h.HandlerConfig{Timeout: cfg.RequestTimeout, Dev: !cfg.IsProduction(), Log: log}
	router := h.NewRouter(h.RouterDeps{
		Auth:     h.NewAuthenticator(cfg.JWTSecret, handlerCfg),
		Cart:     h.NewCartHandler(cartService, handlerCfg),
		Coupons:  h.NewCouponHandler(couponService, handlerCfg),
		Products: h.NewProductHandler(productService, handlerCfg),
		Orders:   h.NewOrdersHandler(orderService, handlerCfg),
		Stripe:   h.NewStripeHandler(checkoutService, handlerCfg),
		Config:   handlerCfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "shop-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(ctx)
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("shop API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	<-relayDone
	if err := relay.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close event writer")
	}
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close redis client")
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to disconnect from MongoDB")
	}

	log.Info().Msg("server exited")
}
