package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/config"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/database"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/handler"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/middleware"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/payment"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/queue"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/router"
)

func main() {
	// A local .env is a development convenience; in production the
	// variables come from the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and caching disabled, logout degraded")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	services := repository.NewServiceRepo(db)
	orders := repository.NewOrderRepo(db)
	sessions := repository.NewCheckoutRepo(db)
	events := repository.NewWebhookRepo(db)
	revocations := repository.NewRevocationStore(rdb)

	var gw payment.Gateway
	if cfg.GatewayURL != "" {
		gw = payment.NewHTTPGateway(cfg.GatewayURL, time.Duration(cfg.GatewayTimeoutMS)*time.Millisecond)
	} else {
		log.Printf("no payment gateway configured, using local intents")
		gw = payment.LocalGateway{}
	}

	authH := handler.NewAuthHandler(cfg, users, tokens, revocations)
	catalogH := handler.NewCatalogHandler(services)
	orderH := handler.NewOrderHandler(cfg, orders, services)
	checkoutH := handler.NewCheckoutHandler(cfg, orders, sessions, gw)
	webhookH := handler.NewWebhookHandler(cfg, orders, sessions, events)

	e := echo.New()
	e.HideBanner = true

	authMW := middleware.Authenticate(cfg.JWTSecret, revocations, users)

	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		rl := config.LoadRateLimitConfig()
		if rl.Enabled {
			e.Use(middleware.NewTokenBucket(rl, rdb))
		}
		cc := config.LoadCacheConfig()
		if cc.Enabled {
			cacheMW = middleware.NewRedisCache(cc, rdb)
		}
	}

	router.RegisterRoutes(e)
	router.RegisterPublic(e, catalogH, cacheMW)
	router.RegisterAuth(e, authH, authMW)
	router.RegisterOrders(e, orderH, checkoutH, authMW)
	router.RegisterStaff(e, orderH, catalogH, authMW)
	router.RegisterWebhooks(e, webhookH)

	// The consumer tails order.confirmed and writes an audit log; it runs
	// its own reconnect loop for the life of the process.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
