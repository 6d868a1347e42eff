package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pawpair/backend/internal/api/handler"
	"pawpair/backend/internal/chat"
	"pawpair/backend/internal/chathub"
	"pawpair/backend/internal/config"
	"pawpair/backend/internal/localization"
	"pawpair/backend/internal/match"
	"pawpair/backend/internal/notify"
	"pawpair/backend/internal/storage"
	"pawpair/backend/internal/swipe"
	"pawpair/backend/pkg/logger"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := storage.OpenPostgres(cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, nil, err
	}
	if err := storage.Migrate(db); err != nil {
		return nil, nil, err
	}

	if !cfg.Redis.Enabled {
		logger.Info("database ready, redis disabled")
		return db, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}
	logger.Info("database and redis ready", zap.String("redis", cfg.Redis.Addr))
	return db, rdb, nil
}

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb, err := setupDependencies(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to set up storage", zap.Error(err))
	}
	s := storage.NewStorageService(db, rdb)

	var ps storage.PubSub
	if rdb != nil {
		ps = s
	}
	hub := chathub.NewManagerService(ps, cfg.Chat.BrokerQueue)

	loc, err := localization.NewLocalizer(cfg.Localization.Path, cfg.Localization.DefaultLang)
	if err != nil {
		logger.Fatal("failed to load translations", zap.Error(err))
	}
	logger.Info("translations loaded", zap.Strings("languages", loc.Languages()))

	matches := match.NewRegistry(s)
	var notifier swipe.MatchNotifier
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, s, loc, cfg.Localization.DefaultLang)
		if err != nil {
			logger.Fatal("failed to start telegram notifier", zap.Error(err))
		}
		notifier = tg
	}
	swipes := swipe.NewService(s, s, matches, notifier)
	chatSvc := chat.NewService(s, s, hub, loc, chat.Options{
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		DefaultLang:      cfg.Localization.DefaultLang,
	})

	go hub.Run(ctx)

	gin.SetMode(cfg.Server.Mode)
	h := handler.NewHandler(swipes, matches, chatSvc, hub, s,
		handler.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.TTL),
		chathub.ClientOptions{
			SendBuffer: cfg.Chat.SendBuffer,
			RateLimit:  cfg.Chat.RateLimit,
			RateBurst:  cfg.Chat.RateBurst,
		})

	server := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        handler.NewRouter(h),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
