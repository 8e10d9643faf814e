package http

import (
	"context"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/outboundops/smartlead-sync/internal/config"
	"github.com/outboundops/smartlead-sync/internal/credential"
	"github.com/outboundops/smartlead-sync/internal/http/middleware"
	"github.com/outboundops/smartlead-sync/internal/logger"
	"github.com/outboundops/smartlead-sync/internal/metrics"
	"github.com/outboundops/smartlead-sync/internal/repository"
	"github.com/outboundops/smartlead-sync/internal/service/sync"
	"github.com/outboundops/smartlead-sync/internal/smartlead"
)

type Server struct{ e *echo.Echo }

// NewServer wires the operator dashboard API: mirror status and preview, run
// log, sync trigger, and bearer management. rds may be nil (disables rate
// limiting).
func NewServer(cfg config.Config, pg *sqlx.DB, rds *redis.Client) *Server {
	// repos
	accountsRepo := repository.NewAccountsRepository(pg)
	runsRepo := repository.NewSyncRunsRepository(pg)
	settingsRepo := repository.NewSettingsRepository(pg)

	// sync pipeline
	client := smartlead.NewClient(cfg.Smartlead.Endpoint, cfg.Smartlead.Limit, cfg.Smartlead.Timeout())
	syncSvc := sync.New(client, accountsRepo, runsRepo, logger.Log)
	chain := credential.Default(settingsRepo, cfg.Smartlead.Bearer)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(cfg.Auth.APIKey)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:     rds,
		RPS:       cfg.RateLimit.RPS,
		KeyPrefix: "rl:op:",
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.GET("/status", statusHandler(accountsRepo, runsRepo))
	v1.GET("/accounts", listAccountsHandler(accountsRepo))
	v1.GET("/runs", listRunsHandler(runsRepo))
	v1.POST("/sync", triggerSyncHandler(syncSvc, chain))
	v1.PUT("/bearer", setBearerHandler(settingsRepo))
	v1.DELETE("/bearer", clearBearerHandler(settingsRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
