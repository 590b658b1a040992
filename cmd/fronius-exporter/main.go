package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	fronius "github.com/JHOFER-Cloud/go-fronius"
	"github.com/JHOFER-Cloud/go-fronius/internal/collector"
	"github.com/JHOFER-Cloud/go-fronius/internal/config"
	"github.com/JHOFER-Cloud/go-fronius/internal/logging"
)

var version = "dev"

const appName = "fronius-exporter"

func main() {
	cfg, err := config.LoadExporter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, appName, version)
	slog.SetDefault(logger)

	logger.Info("starting Fronius Prometheus exporter", "port", cfg.Port, "devices", len(cfg.Targets))

	targets := make([]collector.Target, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		logger.Info("monitoring device", "name", t.Name, "host", t.Host)
		targets = append(targets, collector.Target{
			Name: t.Name,
			Client: fronius.NewClient(fronius.Config{
				Host:     t.Host,
				UseHTTPS: t.UseHTTPS,
				Timeout:  cfg.Timeout,
				Logger:   logger.With("device", t.Name),
			}),
		})
	}

	prometheus.MustRegister(collector.New(targets, logger))

	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		html := `<!DOCTYPE html>
<html>
<head><title>Fronius Exporter</title></head>
<body>
<h1>Fronius Prometheus Exporter</h1>
<p>Monitoring %d device(s)</p>
<ul>
%s
</ul>
<p><a href="/metrics">Metrics</a></p>
</body>
</html>`
		var deviceList strings.Builder
		for _, t := range cfg.Targets {
			deviceList.WriteString(fmt.Sprintf("<li>%s: %s</li>\n", t.Name, t.Host))
		}
		fmt.Fprintf(w, html, len(cfg.Targets), deviceList.String())
	})

	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
