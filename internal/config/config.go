// Package config loads the exporter and bridge settings from the
// environment. An optional .env file is read first.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	defaultPort         = "9090"
	defaultTimeout      = 10 * time.Second
	defaultPollInterval = 30 * time.Second
)

// Target is one Fronius device to query.
type Target struct {
	Name     string
	Host     string
	UseHTTPS bool
}

// Config holds the settings shared by both binaries.
type Config struct {
	Targets  []Target
	Timeout  time.Duration
	LogLevel slog.Level
}

// Exporter holds the settings of the Prometheus exporter.
type Exporter struct {
	Config
	Port string
}

// Bridge holds the settings of the MQTT bridge.
type Bridge struct {
	Config
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	TopicPrefix  string
	PollInterval time.Duration
}

// Load reads the shared settings from the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config

	targets, err := parseTargets()
	if err != nil {
		return cfg, err
	}
	cfg.Targets = targets

	timeoutStr := strings.TrimSpace(os.Getenv("FRONIUS_TIMEOUT"))
	if timeoutStr == "" {
		cfg.Timeout = defaultTimeout
	} else {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid FRONIUS_TIMEOUT %q: %w", timeoutStr, err)
		}
		if timeout <= 0 {
			return cfg, fmt.Errorf("FRONIUS_TIMEOUT must be positive, got %v", timeout)
		}
		cfg.Timeout = timeout
	}

	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return cfg, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

// LoadExporter reads the exporter settings from the environment.
func LoadExporter() (Exporter, error) {
	cfg, err := Load()
	if err != nil {
		return Exporter{}, err
	}

	port := os.Getenv("EXPORTER_PORT")
	if port == "" {
		port = defaultPort
	}

	return Exporter{Config: cfg, Port: port}, nil
}

// LoadBridge reads the MQTT bridge settings from the environment.
func LoadBridge() (Bridge, error) {
	cfg, err := Load()
	if err != nil {
		return Bridge{}, err
	}

	b := Bridge{Config: cfg}

	b.MQTTBroker = strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if b.MQTTBroker == "" {
		b.MQTTBroker = "localhost"
	}

	portStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if portStr == "" {
		portStr = "1883"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return b, fmt.Errorf("invalid MQTT_PORT %q: %w", portStr, err)
	}
	b.MQTTPort = port

	b.MQTTClientID = strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if b.MQTTClientID == "" {
		// Random suffix so two bridges on one broker do not clash.
		b.MQTTClientID = "fronius-bridge-" + uuid.NewString()[:8]
	}

	b.TopicPrefix = strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX"))
	if b.TopicPrefix == "" {
		b.TopicPrefix = "fronius"
	}

	intervalStr := strings.TrimSpace(os.Getenv("POLL_INTERVAL"))
	if intervalStr == "" {
		b.PollInterval = defaultPollInterval
	} else {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			return b, fmt.Errorf("invalid POLL_INTERVAL %q: %w", intervalStr, err)
		}
		if interval <= 0 {
			return b, fmt.Errorf("POLL_INTERVAL must be positive, got %v", interval)
		}
		b.PollInterval = interval
	}

	return b, nil
}

// parseTargets builds the device list from FRONIUS_HOSTS and the
// optional FRONIUS_NAMES list. Names default to froniusN by position.
func parseTargets() ([]Target, error) {
	hosts := os.Getenv("FRONIUS_HOSTS")
	if hosts == "" {
		return nil, fmt.Errorf("FRONIUS_HOSTS must be set")
	}

	useHTTPS, err := parseBool(os.Getenv("FRONIUS_USE_HTTPS"))
	if err != nil {
		return nil, fmt.Errorf("invalid FRONIUS_USE_HTTPS: %w", err)
	}

	hostList := strings.Split(hosts, ",")
	names := strings.Split(os.Getenv("FRONIUS_NAMES"), ",")

	targets := make([]Target, 0, len(hostList))
	for i := range hostList {
		host := strings.TrimSpace(hostList[i])
		if host == "" {
			continue
		}

		name := "fronius" + strconv.Itoa(i)
		if i < len(names) && strings.TrimSpace(names[i]) != "" {
			name = strings.TrimSpace(names[i])
		}

		targets = append(targets, Target{
			Name:     name,
			Host:     host,
			UseHTTPS: useHTTPS,
		})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no valid hosts configured")
	}

	return targets, nil
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
