package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/example/ec-client-core/internal/app"
	"github.com/example/ec-client-core/internal/auth"
	"github.com/example/ec-client-core/internal/domain/cart"
	"github.com/example/ec-client-core/internal/gateway"
	"github.com/example/ec-client-core/internal/infrastructure/cache"
	"github.com/example/ec-client-core/internal/infrastructure/kafka"
	"github.com/example/ec-client-core/internal/infrastructure/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		log.Println("[Client] No .env file, using process environment")
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	statusTopic := getEnv("ORDER_STATUS_TOPIC", "order-status-events")
	telemetryTopic := os.Getenv("TELEMETRY_TOPIC")
	backendURL := getEnv("BACKEND_URL", "http://localhost:8080")
	userID := getEnv("USER_ID", "demo-user")

	log.Println("[Client] ========================================")
	log.Println("[Client] Commerce client engine")
	log.Println("[Client] ========================================")
	log.Printf("[Client] Kafka: %v", kafkaBrokers)
	log.Printf("[Client] Status topic: %s", statusTopic)
	log.Printf("[Client] Backend: %s", backendURL)

	// Telemetry relay is optional; without it locally emitted cart
	// events stay in the journal only.
	var relay store.EventRelay
	if telemetryTopic != "" {
		producer := kafka.NewProducer(kafkaBrokers, telemetryTopic)
		defer producer.Close()
		relay = producer
		log.Printf("[Client] Relaying local events to %s", telemetryTopic)
	}

	// Journal backend: in-memory by default, PostgreSQL when configured.
	var eventStore store.EventStoreInterface = store.NewMemoryEventStore(relay)
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := store.ConnectPostgres(connStr)
		if err != nil {
			log.Fatalf("[Client] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()
		eventStore = store.NewPostgresEventStore(db, relay)
		log.Println("[Client] Journal: PostgreSQL")
	} else {
		log.Println("[Client] Journal: in-memory (session scope)")
	}

	var statusCache cache.StatusCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
		statusCache = cache.NewRedisStatusCache(rdb)
		log.Printf("[Client] Status cache: redis at %s", addr)
	}

	var tokens *auth.TokenKeeper
	if raw := os.Getenv("SESSION_TOKEN"); raw != "" {
		tokens = auth.NewTokenKeeper()
		if err := tokens.Set(raw); err != nil {
			log.Fatalf("[Client] Invalid SESSION_TOKEN: %v", err)
		}
		if uid, ok := tokens.UserID(); ok {
			userID = uid
		}
	}

	// Push channel: one consumer feeds every open tracking session.
	consumer := kafka.NewConsumer(kafkaBrokers, statusTopic, "client-"+userID)
	defer consumer.Close()
	feed := gateway.NewPushFeed(consumer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[Client] Push feed stopped: %v", err)
		}
	}()

	backend := gateway.NewHTTPGateway(backendURL, tokens)

	client := app.NewClient(userID, app.Deps{
		Carts:  cart.NewService(eventStore),
		Orders: backend,
		Notes:  backend,
		Feed:   feed,
		Cache:  statusCache,
		Tokens: tokens,
	}, app.Config{
		SimulatorInterval: envDuration("SIMULATOR_INTERVAL_SECONDS", 15*time.Second),
		DisableSimulator:  os.Getenv("DISABLE_SIMULATOR") == "true",
	})
	defer client.Close()

	log.Printf("[Client] Ready for user %s", userID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Client] Shutting down...")
	cancel()
	wg.Wait()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envDuration reads a whole-seconds env value as a duration.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}
