/**
 * @description
 * This is the main entry point for the wallet-service. It is responsible for
 * initializing all components of the service, including configuration, database
 * connection, the Karma blacklist client, the message broker, repositories, the
 * ledger and auth services, and the HTTP server. It wires everything together
 * and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/karmaclient: Client for the Karma blacklist API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/transfa/wallet-service/internal/api"
	"github.com/transfa/wallet-service/internal/app"
	"github.com/transfa/wallet-service/internal/config"
	"github.com/transfa/wallet-service/internal/store"
	"github.com/transfa/wallet-service/pkg/karmaclient"
	rmrabbit "github.com/transfa/wallet-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"jwt secret must be configured\" env=JWT_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting wallet-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer. Audit events degrade to DB-only
	// persistence when the broker is unavailable.
	var rabbitProducer *rmrabbit.EventProducer
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; audit events disabled\" env=RABBITMQ_URL")
	} else if rabbitProducer, err = rmrabbit.NewEventProducer(cfg.RabbitMQURL); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; audit events disabled\" err=%v", err)
		rabbitProducer = nil
	} else {
		defer rabbitProducer.Close()
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize Redis for login throttling. Optional: a missing or
	// unreachable Redis only disables the throttle.
	var redisClient *redis.Client
	if cfg.LoginRatePerMinute > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; login rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; login rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient = redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; login rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
					redisClient = nil
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
				cancelPing()
			}
		}
	}

	// Initialize the Karma blacklist client used at registration time.
	var blacklist app.BlacklistChecker
	if strings.TrimSpace(cfg.KarmaAPIKey) == "" {
		log.Println("level=warn component=bootstrap msg=\"karma api key missing; blacklist check disabled\" env=KARMA_API_KEY")
	} else {
		blacklist = karmaclient.NewClient(cfg.KarmaAPIBaseURL, cfg.KarmaAPIKey)
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// The audit recorder drains transaction-log appends in the background.
	var producer rmrabbit.Publisher
	if rabbitProducer != nil {
		producer = rabbitProducer
	}
	auditRecorder := app.NewAuditRecorder(repository, producer, cfg.AuditQueueSize)

	// Initialize the ledger and auth services with their dependencies.
	ledgerService := app.NewService(repository, auditRecorder)
	authService := app.NewAuthService(repository, blacklist, cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	if redisClient != nil {
		authService.SetLoginRateLimiter(
			app.NewRedisLoginRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
			cfg.LoginRatePerMinute,
		)
	}

	// Initialize the API handlers and router.
	handlers := api.NewWalletHandlers(ledgerService, authService)
	router := api.WalletRoutes(handlers, cfg.JWTSecret)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	// Drain queued audit entries before the pool closes.
	auditRecorder.Close()

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
