package triageservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiver-ai/email-triage/internal/api"
	"github.com/hiver-ai/email-triage/internal/config"
	"github.com/hiver-ai/email-triage/internal/factory"
	"github.com/hiver-ai/email-triage/internal/health"
	"github.com/hiver-ai/email-triage/internal/inbox"
	"github.com/hiver-ai/email-triage/internal/logger"
	"github.com/hiver-ai/email-triage/internal/oracle"
	"github.com/hiver-ai/email-triage/internal/services"
	"github.com/hiver-ai/email-triage/internal/store"
)

const serviceName = "triage-service"

// Run starts the triage service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New(serviceName)

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	log = logger.ForEnvironment(serviceName, string(cfg.Environment))

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("oracle_provider", cfg.OracleProvider).
		Str("oracle_model", cfg.OracleModel).
		Bool("imap_enabled", cfg.IMAPEnabled()).
		Msg("Triage service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	// Initialize dependencies (store, oracle)
	st, closeStore, orc, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeStore(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	svc := services.NewEmailService(st, orc, emailServiceOptions(cfg), log)

	// Start health checkers; the oracle is advisory so an outage never blocks ingestion
	svcHealth := startHealthCheckers(ctx, cfg, log, st, orc)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	startInboxPoller(ctx, cfg, log, svc)

	// HTTP server and serve
	server := newHTTPServer(ctx, cfg, api.NewRouter(svc, svcHealth, log))
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs required components and enforces fail-fast on missing deps.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, factory.CloseFunc, oracle.Oracle, error) {
	st, closeStore, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, nil, err
	}

	orc, err := factory.NewOracle(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Oracle client unavailable")
		_ = closeStore(context.Background())
		return nil, nil, nil, err
	}
	return st, closeStore, orc, nil
}

func emailServiceOptions(cfg *config.Config) services.EmailServiceOptions {
	opts := services.DefaultEmailServiceOptions()
	opts.OracleTimeout = cfg.OracleTimeout()
	return opts
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, orc oracle.Oracle) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := healthInterval(cfg)

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	oracleChecker := oracle.NewHealthChecker(orc, log, probeTimeout)
	go oracleChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker).WithAdvisory(oracleChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func healthInterval(cfg *config.Config) time.Duration {
	if cfg.HealthIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(cfg.HealthIntervalSeconds) * time.Second
}

// startInboxPoller runs the IMAP poller when a mailbox is configured.
func startInboxPoller(ctx context.Context, cfg *config.Config, log zerolog.Logger, svc *services.EmailService) {
	if !cfg.IMAPEnabled() {
		return
	}
	dial := inbox.IMAPDialer(cfg.IMAPAddr, cfg.IMAPUser, cfg.IMAPPassword, cfg.IMAPMailbox)
	poller := inbox.NewPoller(dial, svc, time.Duration(cfg.IMAPPollSeconds)*time.Second,
		log.With().Str("component", "inbox").Str("mailbox", cfg.IMAPMailbox).Logger())
	go poller.Start(ctx)
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Reply drafting holds the request open for up to one oracle call.
		WriteTimeout: cfg.OracleTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	// Component checkers start unhealthy until their first probe completes.
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
