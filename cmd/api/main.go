package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/D-ignite/webex-cdr/internal/audit"
	"github.com/D-ignite/webex-cdr/internal/auth"
	"github.com/D-ignite/webex-cdr/internal/config"
	"github.com/D-ignite/webex-cdr/internal/listen"
	"github.com/D-ignite/webex-cdr/internal/metrics"
	"github.com/D-ignite/webex-cdr/internal/telephony"
	"github.com/D-ignite/webex-cdr/pkg/logger"
	"github.com/D-ignite/webex-cdr/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// inflightSlotTTL bounds how long a crashed replica can hold a slot.
const inflightSlotTTL = 2 * time.Minute

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Error("metrics init failed", "err", err)
		os.Exit(1)
	}

	webex := telephony.NewWebexClient(telephony.WebexOptions{
		BaseURL: cfg.Webex.BaseURL,
		Token:   cfg.Webex.Token,
		Timeout: cfg.Webex.Timeout,
		Retry: telephony.RetryPolicy{
			MaxRetries:       cfg.Webex.MaxRetries,
			RateLimitDelay:   cfg.Webex.RateLimitDelay,
			ServerErrorDelay: cfg.Webex.ServerErrorDelay,
		},
	})
	if !webex.HasToken() {
		log.Warn("WEBEX_TOKEN is not set; /api/health will report it and data routes will return 503")
	}

	deps := routeDeps{
		Upstream:  webex,
		Metrics:   promhttp.Handler(),
		StaticDir: cfg.HTTP.StaticDir,
	}

	if cfg.AuthEnabled() {
		m, err := auth.NewManager(cfg.Auth)
		if err != nil {
			log.Error("auth init failed", "err", err)
			os.Exit(1)
		}
		deps.Auth = m
	}

	// Audit and the in-flight cap are optional: a dead backing store disables
	// the feature and the gateway keeps serving.
	if cfg.AuditEnabled() {
		db, err := utils.OpenPostgres(rootCtx, utils.PostgresConfig{DSN: cfg.DB.DSN})
		if err != nil {
			log.Warn("postgres unavailable, query audit disabled", "err", err)
		} else {
			defer db.Close()
			repo := audit.NewPostgresRepo(db)
			if err := repo.EnsureSchema(rootCtx); err != nil {
				log.Warn("audit schema init failed, query audit disabled", "err", err)
			} else {
				deps.Audit = audit.NewService(repo)
			}
		}
	}

	if cfg.InflightCapEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.Redis.Addr})
		if err != nil {
			log.Warn("redis unavailable, upstream in-flight cap disabled", "err", err)
		} else {
			defer rdb.Close()
			capper, err := utils.NewInflightCap(rdb, utils.DefaultInflightKey, cfg.Redis.MaxInflight, inflightSlotTTL)
			if err != nil {
				log.Error("inflight cap init failed", "err", err)
				os.Exit(1)
			}
			deps.Inflight = capper
		}
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, deps)

	var handler http.Handler = r
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		handler = cors.Handler(cors.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", logger.HeaderRequestID},
			ExposedHeaders: []string{logger.HeaderRequestID},
			MaxAge:         300,
		})(r)
	}

	ln, port, err := listen.Listen("", cfg.App.Port, cfg.App.PortProbeLimit)
	if err != nil {
		if errors.Is(err, listen.ErrInvalidPort) {
			log.Error("invalid PORT", "port", cfg.App.Port, "err", err)
		} else {
			log.Error("listen failed", "err", err)
		}
		os.Exit(1)
	}
	if port != cfg.App.Port {
		log.Warn("preferred port busy, using another", "preferred", cfg.App.Port, "port", port)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Upstream retries can take several seconds on top of the upstream timeout.
		WriteTimeout: cfg.Webex.Timeout*time.Duration(cfg.Webex.MaxRetries+1) + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "port", port, "env", cfg.App.Env,
			"audit", deps.Audit != nil, "inflight_cap", deps.Inflight != nil, "auth", deps.Auth != nil)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
