package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/devsahoo/auth-service/internal/config"
	"github.com/devsahoo/auth-service/internal/database"
	"github.com/devsahoo/auth-service/internal/handler"
	"github.com/devsahoo/auth-service/internal/httperr"
	"github.com/devsahoo/auth-service/internal/logger"
	"github.com/devsahoo/auth-service/internal/metrics"
	"github.com/devsahoo/auth-service/internal/middleware"
	"github.com/devsahoo/auth-service/internal/queue"
	"github.com/devsahoo/auth-service/internal/repository"
	"github.com/devsahoo/auth-service/internal/router"
	"github.com/devsahoo/auth-service/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	slogger := logger.Setup(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	// Token keys are a hard startup requirement: the service cannot issue or
	// verify anything without them.
	privateKey, err := token.LoadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		log.Fatalf("loading private key failed: %v", err)
	}
	publicKey, err := token.LoadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		log.Fatalf("loading public key failed: %v", err)
	}

	users := repository.NewUserRepo(db)
	tenants := repository.NewTenantRepo(db)
	sessions := repository.NewSessionRepo(db)

	issuer := token.NewIssuer(privateKey, []byte(cfg.RefreshSecret), cfg.Issuer, sessions)
	verifier := token.NewVerifier(publicKey, []byte(cfg.RefreshSecret), cfg.Issuer, sessions)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	var audit handler.AuditPublisher
	if cfg.AMQPURL != "" {
		audit = queue.NewPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartAuditConsumer(cfg.AMQPURL); err != nil {
				slogger.Error("audit consumer stopped", "error", err)
			}
		}()
	} else {
		slogger.Warn("RABBITMQ_URL not set, audit events disabled")
	}

	authHandler := handler.NewAuthHandler(users, issuer, slogger, collector, audit, cfg.CookieDomain, cfg.BcryptCost)
	tenantHandler := handler.NewTenantHandler(tenants, slogger)
	userHandler := handler.NewUserHandler(users, slogger, audit, cfg.BcryptCost)

	rdb := config.NewRedisClient()
	if rdb == nil {
		slogger.Warn("redis unavailable, rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httperr.NewHTTPErrorHandler(slogger)

	router.RegisterRoutes(e, registry)
	router.RegisterAuth(e, authHandler, verifier, collector, limiter)
	router.RegisterTenants(e, tenantHandler, verifier)
	router.RegisterUsers(e, userHandler, verifier)
	router.RegisterManagers(e, userHandler, verifier)

	addr := ":" + cfg.Port
	slogger.Info("server starting", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
