// Package bridge polls Fronius devices and publishes the normalized
// readings to MQTT.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	fronius "github.com/JHOFER-Cloud/go-fronius"
	"github.com/JHOFER-Cloud/go-fronius/internal/config"
)

// Target pairs a device name with its API client.
type Target struct {
	Name   string
	Client *fronius.Client
}

// Bridge publishes the realtime data of its targets on an interval.
// Topics follow <prefix>/<device>/<endpoint>.
type Bridge struct {
	client  mqtt.Client
	targets []Target
	prefix  string
	logger  *slog.Logger
}

// New creates a bridge connected to nothing yet; call Connect before Run.
func New(cfg config.Bridge, targets []Target, logger *slog.Logger) *Bridge {
	b := &Bridge{
		targets: targets,
		prefix:  cfg.TopicPrefix,
		logger:  logger,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	b.client = mqtt.NewClient(opts)
	return b
}

// Connect establishes the broker connection, waiting in a ctx-aware
// loop since paho keeps retrying internally with ConnectRetry set.
func (b *Bridge) Connect(ctx context.Context) error {
	token := b.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Run polls and publishes until ctx is cancelled. The first poll runs
// immediately.
func (b *Bridge) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	b.publishAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.publishAll()
		}
	}
}

// Disconnect closes the broker connection. Safe to call multiple times.
func (b *Bridge) Disconnect() {
	b.client.Disconnect(250)
	b.logger.Info("mqtt disconnected")
}

// publishAll queries every target once and publishes whatever succeeds.
// A failing endpoint is logged and skipped; the next tick retries.
func (b *Bridge) publishAll() {
	for _, target := range b.targets {
		if data, err := target.Client.CurrentPowerFlow(); err != nil {
			b.logger.Error("failed to fetch power flow data", "device", target.Name, "error", err)
		} else {
			b.publish(topic(b.prefix, target.Name, "power_flow"), data)
		}

		if data, err := target.Client.CurrentSystemInverterData(); err != nil {
			b.logger.Error("failed to fetch system inverter data", "device", target.Name, "error", err)
		} else {
			b.publish(topic(b.prefix, target.Name, "system_inverter"), data)
		}

		if data, err := target.Client.CurrentSystemMeterData(); err != nil {
			b.logger.Error("failed to fetch system meter data", "device", target.Name, "error", err)
		} else {
			b.publish(topic(b.prefix, target.Name, "system_meter"), data)
		}
	}
}

func (b *Bridge) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("failed to marshal payload", "topic", topic, "error", err)
		return
	}

	token := b.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		b.logger.Error("publish timeout", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		b.logger.Error("failed to publish", "topic", topic, "error", err)
		return
	}

	b.logger.Debug("published readings", "topic", topic, "bytes", len(payload))
}

func topic(prefix, device, endpoint string) string {
	return fmt.Sprintf("%s/%s/%s", prefix, device, endpoint)
}
