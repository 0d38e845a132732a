// Package app wires configuration, storage, domain services, and the HTTP
// server into a running process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/mizanhq/mizan/db"
	"github.com/mizanhq/mizan/internal/domain/ad"
	"github.com/mizanhq/mizan/internal/domain/auth"
	"github.com/mizanhq/mizan/internal/domain/blog"
	"github.com/mizanhq/mizan/internal/domain/user"
	"github.com/mizanhq/mizan/internal/handler"
	"github.com/mizanhq/mizan/internal/i18n"
	"github.com/mizanhq/mizan/internal/migrate"
	"github.com/mizanhq/mizan/internal/repository"
	"github.com/mizanhq/mizan/pkg/health"
	"github.com/mizanhq/mizan/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	migrations := migrate.NewRunner(pool, db.Migrations())
	applied, err := migrations.Up(ctx)
	if err != nil {
		return errors.Wrap(err, "run migrations")
	}
	if applied > 0 {
		lg.Info("Applied migrations", zap.Int("count", applied))
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.DatabasePingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	campaignRepo := repository.NewCampaignRepository(pool)
	calculationRepo := repository.NewCalculationRepository(pool)
	blocklistRepo := repository.NewBlocklistRepository(pool)

	// Domain services.
	userService := user.NewService(userRepo)
	tokenManager := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	blogService := blog.NewService(postRepo)
	adService := ad.NewService(campaignRepo, blocklistRepo)

	// HTTP handlers.
	h := handler.NewHandler(
		userService,
		tokenManager,
		blogService,
		adService,
		calculationRepo,
		userRepo,
		postRepo,
		campaignRepo,
		migrations,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "Accept-Language"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:          cfg.RateLimit.Max,
				Window:       cfg.RateLimit.Window,
				LimitHandler: rateLimited,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			instrument(m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// instrument wraps the handler with OpenTelemetry HTTP instrumentation
// bound to the application's telemetry providers.
func instrument(m *app.Telemetry) httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "mizan-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		)
	}
}

// rateLimited writes the 429 body in the request's language.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromRequest(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"code":429,"message":"` + i18n.T(lang, "error.rate_limited") + `"}`))
}
