package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/cache"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/router"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/services"
	"github.com/DavidPARK0417/draiger-sub002/cmd/internal/eventbus"
	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/db"
	"github.com/DavidPARK0417/draiger-sub002/repositories"
)

// @title           Draiger Content API
// @version         1.0
// @description     Paginated listing, search and category counts for posts and recipes
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(config.EnvLogLevel, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheOpts := []cache.Option{
		cache.WithFetchTimeout(config.ParseDuration(cfg.Cache.FetchTimeout, 30*time.Second)),
	}
	if uri := config.Secret(config.EnvMongoURI); uri != "" {
		if err := db.Init(ctx, uri, cfg.Snapshot.Database, cfg.Snapshot.Collection); err != nil {
			// 스냅샷은 선택 기능이다. 연결 실패 시 메모리 캐시만 사용한다.
			logger.ErrorWithFields("snapshot store disabled", logger.Fields{"error": err.Error()})
		} else {
			cacheOpts = append(cacheOpts, cache.WithStore(
				repositories.NewSnapshotRepository(db.Database(), cfg.Snapshot.Collection),
			))
			defer db.Close(context.Background())
		}
	}
	contentCache := cache.New(cacheOpts...)
	go contentCache.Run(ctx,
		config.ParseDuration(cfg.Cache.CleanupInterval, 5*time.Minute),
		cfg.Cache.Counts.TTL(),
	)

	source := notionclient.NewFromConfig(cfg)
	contentSvc := services.NewContentService(source, contentCache, cfg)
	categorySvc := services.NewCategoryService(source, contentCache, cfg)
	homeSvc := services.NewHomeService(contentSvc, cfg)

	if brokers := strings.TrimSpace(os.Getenv(config.EnvKafkaBrokers)); brokers != "" {
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			logger.ErrorWithFields("invalidation events disabled", logger.Fields{"error": err.Error()})
		} else {
			defer bus.Close()
			go func() {
				err := bus.Subscribe(ctx, cfg.Events.GroupID, eventbus.NewTopic(cfg.Events.Topic), contentSvc.HandleInvalidation)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.ErrorWithFields("invalidation subscriber stopped", logger.Fields{"error": err.Error()})
				}
			}()
		}
	}

	r := router.New(router.Deps{
		Content:        contentSvc,
		Categories:     categorySvc,
		Home:           homeSvc,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		SlowRequest:    config.ParseDuration(cfg.Server.SlowRequest, 0),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.InfoWithFields("api server listening", logger.Fields{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithFields("api server failed", logger.Fields{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("api server shutdown", logger.Fields{"error": err.Error()})
	}
	logger.Log.Info("api server stopped")
}
