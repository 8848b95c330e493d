package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-city/config"
	"go-city/controller"
	"go-city/logger"
	"go-city/middleware"
	"go-city/repository"
	"go-city/router"
	"go-city/service"
	"go-city/utils"
	"go-city/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	mintToken := flag.Bool("mint-token", false, "print an access token for JWT_SECRET and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a minted token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	if *mintToken {
		if cfg.JWTSecret == "" {
			fmt.Fprintln(os.Stderr, "JWT_SECRET 未设置")
			os.Exit(1)
		}
		token, err := utils.GenerateAccessToken([]byte(cfg.JWTSecret), "admin", *tokenTTL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "签发令牌失败:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log, err := logger.New(cfg.LogLevel, cfg.GinMode == gin.DebugMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("服务异常退出", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	svc := service.NewGameService(store, service.Options{
		Mode:   cfg.PlacementMode,
		Logger: log.Named("game"),
	})
	if err := svc.Init(ctx); err != nil {
		return err
	}

	hub := ws.NewHub(svc.GetState, log.Named("ws"))
	svc.SetListener(hub)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Logger(log.Named("http")), gin.Recovery())
	router.InitRouter(r, cfg, controller.NewGameController(svc), hub)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("✅ 服务已启动",
			zap.String("addr", cfg.Addr()),
			zap.String("store", string(cfg.Store)),
			zap.String("placement", string(cfg.PlacementMode)),
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	stopHub()
	return err
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.StateStore, error) {
	switch cfg.Store {
	case config.StoreRedis:
		store, err := repository.NewRedisStore(ctx, repository.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
		if err != nil {
			return nil, err
		}
		log.Info("✅ Redis 连接成功", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return store, nil
	default:
		return repository.NewMemoryStore(), nil
	}
}
