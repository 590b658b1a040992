package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	fronius "github.com/JHOFER-Cloud/go-fronius"
	"github.com/JHOFER-Cloud/go-fronius/internal/bridge"
	"github.com/JHOFER-Cloud/go-fronius/internal/config"
	"github.com/JHOFER-Cloud/go-fronius/internal/logging"
)

var version = "dev"

const appName = "fronius-mqtt-bridge"

func main() {
	cfg, err := config.LoadBridge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, appName, version)
	slog.SetDefault(logger)

	logger.Info("starting Fronius MQTT bridge",
		"broker", cfg.MQTTBroker,
		"topic_prefix", cfg.TopicPrefix,
		"poll_interval", cfg.PollInterval,
		"devices", len(cfg.Targets),
	)

	targets := make([]bridge.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		logger.Info("polling device", "name", t.Name, "host", t.Host)
		targets = append(targets, bridge.Target{
			Name: t.Name,
			Client: fronius.NewClient(fronius.Config{
				Host:     t.Host,
				UseHTTPS: t.UseHTTPS,
				Timeout:  cfg.Timeout,
				Logger:   logger.With("device", t.Name),
			}),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bridge.New(cfg, targets, logger)
	if err := b.Connect(ctx); err != nil {
		logger.Error("mqtt connect failed", "error", err)
		os.Exit(1)
	}
	defer b.Disconnect()

	if err := b.Run(ctx, cfg.PollInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
}
