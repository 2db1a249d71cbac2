package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tradewatch/stockdash/internal/api"
	"github.com/tradewatch/stockdash/internal/config"
	"github.com/tradewatch/stockdash/internal/metrics"
	"github.com/tradewatch/stockdash/internal/model"
	"github.com/tradewatch/stockdash/internal/realtime"
	"github.com/tradewatch/stockdash/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	token := flag.String("token", os.Getenv("STOCKDASH_TOKEN"), "session token for the realtime endpoints")
	symbols := flag.String("symbols", "", "comma-separated watchlist symbols, e.g. 005930,AAPL")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Best effort: a missing .env file is not an error.
	_ = godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamwatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *token == "" {
		logger.Error("no session token; pass -token or set STOCKDASH_TOKEN")
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"ws_base", cfg.Realtime.WSBaseURL(),
		"probe_enabled", cfg.Probe.ProbeEnabled(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics.Register()

	prober := api.NewClient(
		cfg.Realtime.HTTPBaseURL(),
		api.WithStatusPath(cfg.Probe.Path),
		api.WithLogger(logger),
		api.WithTimeout(cfg.Probe.Timeout),
	)

	hub := realtime.NewHub(hubConfig(cfg), prober, logger)
	attachPrinters(hub, logger)

	hub.Initialize(ctx, *token)
	defer hub.DisconnectAll()

	if *symbols != "" {
		hub.UpdateWatchedSymbols(strings.Split(*symbols, ","))
	}

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createHandler(cfg.Metrics.Path, hub),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("streamwatch stopped")
}

// loadConfig reads the YAML file, or falls back to pure defaults when no
// path was given.
func loadConfig(path string) (*config.DashboardConfig, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	return config.LoadAndValidate(path)
}

// hubConfig maps the file configuration onto the realtime layer.
func hubConfig(cfg *config.DashboardConfig) realtime.HubConfig {
	return realtime.HubConfig{
		Channel: realtime.ChannelConfig{
			WSBaseURL:            cfg.Realtime.WSBaseURL(),
			HeartbeatInterval:    cfg.Realtime.HeartbeatInterval,
			ReadTimeout:          cfg.Realtime.ReadTimeout,
			WriteTimeout:         cfg.Realtime.WriteTimeout,
			BufferSize:           cfg.Realtime.BufferSize,
			ReconnectBaseDelay:   cfg.Realtime.Reconnect.BaseDelay,
			ReconnectMaxDelay:    cfg.Realtime.Reconnect.MaxDelay,
			ReconnectMultiplier:  cfg.Realtime.Reconnect.Multiplier,
			ReconnectMaxAttempts: cfg.Realtime.Reconnect.MaxAttempts,
		},
		ProbeEnabled:      cfg.Probe.ProbeEnabled(),
		ProbeTimeout:      cfg.Probe.Timeout,
		WatchlistInterval: cfg.Watchlist.PushInterval,
		Markets:           cfg.Watchlist.Markets,
	}
}

// attachPrinters subscribes log printers on all four concerns.
func attachPrinters(hub *realtime.Hub, logger *slog.Logger) {
	reg := hub.Registry()

	reg.Subscribe(realtime.ConcernPrice, func(data []byte) {
		update, err := model.DecodePriceUpdate(data)
		if err != nil {
			logger.Warn("undecodable price frame", "error", err)
			return
		}
		for symbol, quote := range update.Data {
			logger.Info("quote",
				"symbol", symbol,
				"market", quote.Market,
				"price", quote.Price,
				"change_pct", quote.ChangePercent,
			)
		}
	})

	reg.Subscribe(realtime.ConcernTrading, func(data []byte) {
		update, err := model.DecodeTradingUpdate(data)
		if err != nil {
			logger.Warn("undecodable trading frame", "error", err)
			return
		}
		logger.Info("trading event", "update_type", update.UpdateType)
	})

	reg.Subscribe(realtime.ConcernNotification, func(data []byte) {
		n, err := model.DecodeNotification(data)
		if err != nil {
			logger.Warn("undecodable notification frame", "error", err)
			return
		}
		logger.Info("notification", "kind", n.NotificationType, "message", n.Message)
	})

	reg.SubscribeStatus(func(s realtime.Status) {
		logger.Info("connection status",
			"price", s.Price.String(),
			"trading", s.Trading.String(),
			"notification", s.Notification.String(),
		)
	})
}

// createHandler serves the metrics endpoint and a health document that
// mirrors the hub's aggregate state.
func createHandler(metricsPath string, hub *realtime.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := hub.Status()

		health := struct {
			Status   string            `json:"status"`
			Channels map[string]string `json:"channels"`
		}{
			Status: "healthy",
			Channels: map[string]string{
				"price":        status.Price.String(),
				"trading":      status.Trading.String(),
				"notification": status.Notification.String(),
			},
		}

		if hub.Disabled() {
			health.Status = "disabled"
		} else if status.Price != realtime.StateConnected ||
			status.Trading != realtime.StateConnected ||
			status.Notification != realtime.StateConnected {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "disabled" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
