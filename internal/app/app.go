// Package app wires the shop's dependencies together and runs the HTTP
// server with graceful shutdown.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lescrepesdenanou/shop/internal/domain/checkout"
	"github.com/lescrepesdenanou/shop/internal/domain/confirmation"
	"github.com/lescrepesdenanou/shop/internal/handler"
	"github.com/lescrepesdenanou/shop/internal/mailer"
	"github.com/lescrepesdenanou/shop/internal/payment/stripe"
	"github.com/lescrepesdenanou/shop/pkg/health"
	"github.com/lescrepesdenanou/shop/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	if _, err := os.Stat(cfg.FrontendDir); err != nil {
		// Page routes will all 404 but the API still works, so keep going.
		lg.Warn("Frontend directory not found", zap.String("dir", cfg.FrontendDir))
	}

	// Notification mailer. Credentials were validated at config load; the
	// account itself is probed by the readiness check below.
	mail, err := mailer.New(mailer.Config{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.Username,
		Password:  cfg.Mail.Password,
		AdminAddr: cfg.Mail.AdminAddr,
	})
	if err != nil {
		return errors.Wrap(err, "create mailer")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("smtp", 10*time.Second, mail.Ping)
	healthSvc.Start(ctx, 30*time.Second)
	healthSvc.SetReady(true)

	// Payment provider and domain services.
	provider := stripe.NewProvider(
		cfg.Stripe.SecretKey,
		cfg.BaseURL+"/success",
		cfg.BaseURL+"/concel",
	)
	verifier := stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret)
	checkoutSvc := checkout.NewService(provider)
	confirmationSvc := confirmation.NewService(mail)

	// HTTP surface: health endpoints + shop routes on one mux.
	h := handler.New(
		handler.Config{
			FrontendDir: cfg.FrontendDir,
			Meter:       m.MeterProvider().Meter("shop"),
		},
		checkoutSvc,
		confirmationSvc,
		verifier,
	)
	mux := buildMux(healthSvc, h)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type", "Stripe-Signature"},
				MaxAge:       86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("nanou-shop", m),
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

// buildMux mounts the health probes and the shop routes on one mux. The
// probe patterns are method-qualified so they stay strict subsets of the
// handler's "GET /{page}" route; "livez" and "readyz" are therefore never
// treated as page names.
func buildMux(healthSvc *health.Health, h *handler.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)
	return mux
}
