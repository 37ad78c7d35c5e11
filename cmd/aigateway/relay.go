package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/brightclass/aigateway/internal/config"
	"github.com/brightclass/aigateway/internal/logger"
	"github.com/brightclass/aigateway/internal/relay"
)

func runRelay() error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := relay.NewServer(logger.L, relay.Config{
		Addr:        cfg.Relay.Addr,
		UpstreamURL: cfg.Relay.Upstream(),
		CertFile:    cfg.Relay.CertFile,
		KeyFile:     cfg.Relay.KeyFile,
		AuthTimeout: cfg.Relay.AuthTimeout(),
	})
	return srv.ListenAndServe(ctx)
}
