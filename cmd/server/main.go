package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"twenty-one-go/internal/config"
	"twenty-one-go/internal/database"
	"twenty-one-go/internal/handlers"
	"twenty-one-go/internal/middleware"
	"twenty-one-go/internal/store"
	"twenty-one-go/internal/tracing"
	"twenty-one-go/pkg/websocket"
)

func main() {
	// a missing .env is fine; the real environment wins either way
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracer, err := tracing.InitTracer(context.Background(), tracing.Config{
		ServiceName: tracing.DefaultServiceName,
		Environment: cfg.AppEnv,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}()

	db, err := database.OpenAndMigrate(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("db open/migrate: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()

	games, closeStore, err := openGameStore(cfg, db)
	if err != nil {
		log.Fatalf("game store: %v", err)
	}
	defer closeStore()

	hubRef := websocket.NewHubRef(websocket.NewHub())
	go hubRef.Supervise(time.Second)

	handlers.SetWebSocketOriginPolicy(cfg.IsDevelopment(), cfg.DevWebSocketsAllowAll, cfg.WSAllowedOrigins)
	handlers.SetHubProvider(hubRef.Get)

	deps := &handlers.Deps{
		DB:     db,
		Games:  games,
		Config: cfg,
		Locks:  handlers.NewGameManager(),
	}

	r := gin.Default()
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))
	r.Use(middleware.CORS(cfg))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	api := r.Group("/api")
	handlers.RegisterAuthRoutes(api, db, cfg)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(cfg))
	handlers.RegisterGameRoutes(protected, deps)

	// WebSocket endpoint is auth-gated via cookie, Authorization header or (optionally) token query param.
	r.GET("/ws", handlers.WebSocketHandler(deps, cfg))

	addr := cfg.Addr
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s store=%s", addr, cfg.GameStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %v", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	if h, ok := hubRef.Get(); ok && h != nil {
		h.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}

func openGameStore(cfg config.Config, db *sql.DB) (store.GameStore, func(), error) {
	switch cfg.GameStore {
	case store.KindRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := store.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}
		return store.NewRedis(rdb, cfg.RedisPrefix), closeFn, nil
	default:
		return store.NewSQLite(db), func() {}, nil
	}
}
