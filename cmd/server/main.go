package main // Entry point package

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wouldcart/Triplexa2-sub009/internal/config"
	"github.com/wouldcart/Triplexa2-sub009/internal/database"
	"github.com/wouldcart/Triplexa2-sub009/internal/errorlog"
	"github.com/wouldcart/Triplexa2-sub009/internal/handler"
	"github.com/wouldcart/Triplexa2-sub009/internal/middleware"
	"github.com/wouldcart/Triplexa2-sub009/internal/queue"
	"github.com/wouldcart/Triplexa2-sub009/internal/repository"
	"github.com/wouldcart/Triplexa2-sub009/internal/router"
	queue_publisher "github.com/wouldcart/Triplexa2-sub009/internal/service"
	"github.com/wouldcart/Triplexa2-sub009/internal/txn"
	"github.com/wouldcart/Triplexa2-sub009/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and the
	// error-log mirror but the service still runs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and error-log persistence disabled")
	}

	diag := zerolog.New(os.Stderr).With().Timestamp().Str("service", "route-integrity").Logger()

	logOpts := errorlog.Options{
		MaxPersisted: cfg.ErrorLogMaxPersist,
		Diag:         diag,
	}
	// Assign the persister only when Redis is up: a typed-nil
	// *RedisPersister would make the interface non-nil and the log would
	// marshal every snapshot just to throw it away.
	if rdb != nil {
		logOpts.Persister = errorlog.NewRedisPersister(rdb)
	}
	errLog := errorlog.New(logOpts)
	// Forward every user-facing feedback event to the broker so the
	// audit consumer picks it up.
	errLog.OnFeedback(queue_publisher.FeedbackBridge())

	engine := validation.NewEngine()
	engine.StaleAfter = time.Duration(cfg.SightseeingStaleDays) * 24 * time.Hour

	routeRepo := repository.NewRouteRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)
	coordinator := txn.NewCoordinator(routeRepo, catalogRepo, engine, errLog)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Handlers{
		Integrity:    handler.NewIntegrityHandler(engine, catalogRepo, errLog),
		Routes:       handler.NewRoutesHandler(coordinator, routeRepo, errLog),
		Errors:       handler.NewErrorsHandler(errLog),
		Transactions: handler.NewTransactionsHandler(coordinator),
	}, cfg.JWTSecret)

	// Background consumer writing the feedback audit trail. Runs its own
	// reconnect loop for the life of the process.
	go func() {
		if err := queue.StartFeedbackConsumer(); err != nil {
			log.Printf("feedback consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
