package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shopsync/internal/core/auth"
	"shopsync/internal/core/cache"
	"shopsync/internal/core/config"
	"shopsync/internal/core/database"
	"shopsync/internal/core/logger"
	"shopsync/internal/core/server"
	"shopsync/internal/domain"
	"shopsync/internal/notify"
	"shopsync/internal/query"
	"shopsync/internal/remote"
	"shopsync/internal/repo"
	syncsvc "shopsync/internal/sync"
	"shopsync/internal/transport/http/handler"
	"shopsync/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("local store connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{},
			&domain.Product{},
			&domain.CartItem{},
			&domain.Order{},
		); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// Redis is optional; without it Categories skips the cache and events go
	// to the log.
	var (
		c        *cache.Cache
		notifier notify.Notifier = notify.Log{L: log}
	)
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		notifier = notify.NewRedis(c.RDB, cfg.Notify.Channel, log)
	}

	rc := remote.New(cfg.Remote.BaseURL, time.Duration(cfg.Remote.TimeoutSec)*time.Second, log)
	remoteUsers := remote.NewUsers(rc)
	remoteProducts := remote.NewProducts(rc)
	remoteCart := remote.NewCart(rc)
	remoteOrders := remote.NewOrders(rc)

	ec := remote.New(cfg.Remote.ExternalURL, time.Duration(cfg.Remote.TimeoutSec)*time.Second, log)
	external := remote.NewExternal(ec)

	userRepo := repo.NewUserRepo(db)
	productRepo := repo.NewProductRepo(db)
	cartRepo := repo.NewCartRepo(db)
	orderRepo := repo.NewOrderRepo(db)

	users := syncsvc.NewUsers(userRepo, remoteUsers, log)
	products := syncsvc.NewProducts(productRepo, remoteProducts, external, c, notifier, log)
	cart := syncsvc.NewCart(cartRepo, remoteCart, log)
	orders := syncsvc.NewOrders(orderRepo, remoteOrders, cart, notifier, log)

	catalog := query.NewCatalog(productRepo, c)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	r := router.New(log, jwter, router.Handlers{
		Auth:    handler.NewAuth(users, jwter),
		Catalog: handler.NewCatalog(products, catalog),
		Cart:    handler.NewCart(cart),
		Orders:  handler.NewOrders(orders),
		Admin:   handler.NewAdmin(products, orders),
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("sync agent starting",
		zap.String("addr", addr),
		zap.String("remote", cfg.Remote.BaseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("sync agent start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("sync agent stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
