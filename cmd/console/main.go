package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/DanielAnoka/EMS-sub000/internal/http"
	"github.com/DanielAnoka/EMS-sub000/internal/notify"
	"github.com/DanielAnoka/EMS-sub000/internal/poller"
	"github.com/DanielAnoka/EMS-sub000/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	HTTPPort        string
	CartStore       string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	NotifyAPIURL    string
	KafkaBrokers    string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CartStore:       getEnv("CART_STORE", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "consoledb"),
		NotifyAPIURL:    getEnv("NOTIFY_API_URL", "http://localhost:9090"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// buildStore picks the configured backend. A backend that cannot be
// reached at startup falls back to in-memory storage; carts then live
// only for the process lifetime, the console stays usable.
func buildStore(ctx context.Context, cfg *Config) store.Store {
	switch cfg.CartStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("redis unreachable, falling back to memory store: %v", err)
			return store.NewMemoryStore()
		}
		log.Printf("connected to redis at %s", cfg.RedisAddr)
		return store.NewRedisStore(client)

	case "mongo":
		db, err := store.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Printf("mongodb unreachable, falling back to memory store: %v", err)
			return store.NewMemoryStore()
		}
		log.Printf("connected to mongodb at %s", cfg.MongoURI)
		return store.NewMongoStore(db)

	default:
		return store.NewMemoryStore()
	}
}

func main() {
	cfg := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := buildStore(ctx, cfg)

	source := notify.NewHTTPSource(cfg.NotifyAPIURL, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(st)
	notificationHandler := h.NewNotificationHandler(source)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{charge_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{charge_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Get("/unread-count", notificationHandler.UnreadCount)
			r.Post("/{id}/read", notificationHandler.MarkRead)
		})
	})

	// Payment confirmations clear persisted carts
	if cfg.KafkaBrokers != "" {
		p := poller.NewPoller(st, cfg.KafkaBrokers)
		defer p.Close()
		go p.Run(ctx)
		log.Printf("payment poller consuming from %s", cfg.KafkaBrokers)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "console"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("console API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
