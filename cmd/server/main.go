package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hzj010427/YACA/internal/config"
	"github.com/hzj010427/YACA/internal/fanout"
	"github.com/hzj010427/YACA/internal/handler"
	"github.com/hzj010427/YACA/internal/hub"
	"github.com/hzj010427/YACA/internal/repository"
	"github.com/hzj010427/YACA/internal/service"
	"github.com/hzj010427/YACA/pkg/database"
	"github.com/hzj010427/YACA/pkg/jwt"
	"github.com/hzj010427/YACA/pkg/log"
	"github.com/hzj010427/YACA/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()

	store, err := newStore(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to open storage backend")
	}
	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		l.Fatal().Err(err).Msg("failed to connect to storage backend")
	}
	if err := store.Init(ctx); err != nil {
		l.Fatal().Err(err).Msg("failed to initialize storage backend")
	}
	defer store.Close()

	tokens := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.TokenLifetime, cfg.Auth.Issuer)

	h := hub.NewHub(cfg.WebSocket)
	go h.Run()

	bus, err := newBus(cfg, h)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to start fan-out bus")
	}
	defer bus.Close()

	chatService := service.NewChatService(store, bus)
	userService := service.NewUserService(store, tokens, chatService)

	authMiddleware := middleware.NewAuthMiddleware(tokens)
	httpHandler := handler.NewHandler(userService, chatService, authMiddleware)
	wsHandler := handler.NewWSHandler(h, tokens, cfg.WebSocket)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(l))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		l.Info().Str("addr", addr).Str("db_driver", cfg.Database.Driver).
			Str("fanout_mode", cfg.Fanout.Mode).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}

// newStore opens the configured storage backend. Driver "memory" selects the
// volatile in-process store; everything else goes through GORM.
func newStore(cfg *config.Config) (repository.Store, error) {
	if cfg.Database.Driver == "memory" {
		return repository.NewMemoryStore(), nil
	}

	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

// newBus selects the fan-out transport.
func newBus(cfg *config.Config, h *hub.Hub) (fanout.Bus, error) {
	if cfg.Fanout.Mode == "redis" {
		return fanout.NewRedisBus(cfg.Fanout.Redis, cfg.Fanout.Channel, h)
	}
	return fanout.NewLocalBus(h), nil
}
