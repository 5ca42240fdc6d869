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

	"go-shop-manager/internal/config"
	"go-shop-manager/internal/database"
	"go-shop-manager/internal/inventory"
	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/router"
	"go-shop-manager/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logger.Setup(cfg.Log)
	instanceID := utils.InstanceID()
	log.WithField("instance_id", instanceID).Info("starting shop manager")

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}

	locker, lockKind, closeLocker := newLocker(cfg.Redis, log)
	defer closeLocker()

	deps := router.NewDeps(cfg, db, locker)
	deps.InstanceID = instanceID
	deps.LockKind = lockKind
	r := router.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Server starting on " + cfg.Server.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// newLocker picks the Redis-backed product lock when an address is set, so
// several instances can share one database; otherwise an in-process lock.
func newLocker(cfg config.RedisConfig, log *logrus.Logger) (inventory.Locker, string, func()) {
	if cfg.Address == "" {
		return inventory.NewLocalLocker(), "local", func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("address", cfg.Address).Fatal("redis unavailable")
	}

	log.WithField("address", cfg.Address).Info("using redis product locks")
	ttl := time.Duration(cfg.LockTTL) * time.Second
	return inventory.NewRedisLocker(rdb, ttl), "redis", func() { _ = rdb.Close() }
}
