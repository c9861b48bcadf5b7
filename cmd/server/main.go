package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/httpapi"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/fjod/go_shop/internal/service"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RedisAddr       string
	KafkaBrokers    []string
	DB              repository.Credentials
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              dbPort,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "ecommerce"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Msg("database migrations completed")

	var productCache cache.ProductCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		productCache = cache.NewRedisCache(redisClient)
		log.Info().Str("addr", cfg.RedisAddr).Msg("product cache enabled")
	}

	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = events.NewBreakerPublisher(kafkaPublisher)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("order event publishing enabled")
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Orders:         service.NewOrderService(repo, publisher),
		Inventory:      service.NewInventoryService(repo),
		Catalog:        service.NewCatalogService(repo, productCache),
		Cart:           service.NewCartService(repo),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "go_shop"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
