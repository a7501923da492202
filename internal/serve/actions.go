package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/termscan/models"
	"github.com/dtnitsch/termscan/pkg/analyzer"
	"github.com/dtnitsch/termscan/pkg/cache"
	"github.com/dtnitsch/termscan/pkg/gemini"
	"github.com/dtnitsch/termscan/pkg/netwatch"
)

func ServeAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("failed to open result cache: %w", err)
	}
	defer store.Close()

	client := gemini.New(cfg.Gemini.Endpoint, cfg.Gemini.Model, cfg.Gemini.APIKey(), cfg.Gemini.Timeout())

	monitor := netwatch.New(cfg.Network.ProbeURL, true)
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
	monitor.Probe(probeCtx)
	probeCancel()
	go monitor.Run(ctx, cfg.Network.ProbeInterval())
	monitor.Subscribe(func(online bool) {
		logger.Info("network state changed", "online", online)
	})

	srv := New(analyzer.New(client, store, monitor, logger), logger)

	addr := c.String("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("listening", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
