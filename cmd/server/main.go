package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/adaptive-guess/internal/app"
	"github.com/danielpatrickdp/adaptive-guess/internal/config"
	"github.com/danielpatrickdp/adaptive-guess/internal/rpc"
)

// #region main
func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	configPath := flag.String("config", envOr("ADAPTIVE_GUESS_CONFIG", "adaptive_guess.yaml"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr).With().Str("component", "server").Logger()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(cfg config.Config, logger zerolog.Logger) error {
	a, err := app.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer a.Close()

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	gs := grpc.NewServer()
	srv := rpc.NewServer(a.Engine, logger)
	srv.Register(gs)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("db", cfg.DBPath).Msg("grpc listening")
		if err := gs.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc server")
		}
	}()
	if cfg.RoundIdleTTL > 0 {
		go srv.RunEviction(ctx, cfg.RoundIdleTTL, evictionInterval(cfg.RoundIdleTTL))
	}

	<-ctx.Done()

	logger.Info().Int("active_rounds", srv.Active()).Msg("shutting down")
	gs.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("metrics shutdown")
	}
	return nil
}

// evictionInterval sweeps the registry a few times per TTL, at most once a
// minute.
func evictionInterval(ttl time.Duration) time.Duration {
	return min(ttl/4+time.Second, time.Minute)
}

// #endregion run

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
