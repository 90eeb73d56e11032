package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/todo-api/internal/auth"
	"github.com/ayush/todo-api/internal/config"
	"github.com/ayush/todo-api/internal/httpapi"
	"github.com/ayush/todo-api/internal/store"
	"github.com/ayush/todo-api/internal/todo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	var (
		users auth.UserStore
		todos store.TodoStore
	)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Println("Using in-memory stores; data is lost on exit")
		mem := store.NewMemoryStore()
		users, todos = mem, mem

	default:
		// ── PostgreSQL ────────────────────────────────────────────
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("postgres connect: %v", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatalf("postgres migrate: %v", err)
		}
		users = pgStore

		// ── MongoDB ──────────────────────────────────────────────
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer mongoClient.Disconnect(ctx)
		mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
		todos = mongoStore
	}

	// ── Redis ────────────────────────────────────────────────
	if cfg.CacheEnabled() {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		todos = store.NewCachedTodoStore(todos, rdb, cfg.CacheTTL)
	}

	// ── MinIO ────────────────────────────────────────────────
	var archive todo.Archive
	if cfg.ExportEnabled() {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			log.Fatalf("minio connect: %v", err)
		}
		archive = minioStore
	}

	// ── Auth ─────────────────────────────────────────────────
	tokens := auth.NewTokenService(cfg.JWTSecret)
	authSvc, err := auth.NewService(users, auth.NewBcryptHasher(auth.DefaultHashCost), tokens)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	// ── Router ───────────────────────────────────────────────
	router := httpapi.NewRouter(httpapi.Deps{
		Auth:           auth.NewHandler(authSvc),
		Todos:          todo.NewHandler(todo.NewService(todos, archive)),
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
		ExportEnabled:  archive != nil,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("Todo API listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
