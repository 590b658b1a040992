package fronius

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// URL templates of the Solar API v1 realtime endpoints. Scheme and host
// are substituted first, then the device id where the template takes one.
const (
	urlPowerFlow                = "%s://%s/solar_api/v1/GetPowerFlowRealtimeData.fcgi"
	urlSystemMeter              = "%s://%s/solar_api/v1/GetMeterRealtimeData.cgi?Scope=System"
	urlSystemInverter           = "%s://%s/solar_api/v1/GetInverterRealtimeData.cgi?Scope=System"
	urlDeviceMeter              = "%s://%s/solar_api/v1/GetMeterRealtimeData.cgi?Scope=Device&DeviceId=%d"
	urlDeviceStorage            = "%s://%s/solar_api/v1/GetStorageRealtimeData.cgi?Scope=Device&DeviceId=%d"
	urlDeviceInverterCumulative = "%s://%s/solar_api/v1/GetInverterRealtimeData.cgi?Scope=Device&DeviceId=%d&DataCollection=CumulationInverterData"
	urlDeviceInverterCommon     = "%s://%s/solar_api/v1/GetInverterRealtimeData.cgi?Scope=Device&DeviceId=%d&DataCollection=CommonInverterData"
)

const defaultTimeout = 10 * time.Second

// ErrInvalidResponse reports a response whose envelope lacks the Head
// fields every Solar API reply must carry, or whose payload is missing a
// structurally required element.
var ErrInvalidResponse = errors.New("invalid solar API response")

// Config holds the connection parameters for a Fronius device.
type Config struct {
	// Host is the IP or domain of the device. Required.
	Host string
	// UseHTTPS selects https instead of http.
	UseHTTPS bool
	// Timeout is the per-request HTTP timeout. Defaults to 10s.
	Timeout time.Duration
	// Logger receives informational and debug messages. Defaults to
	// slog.Default().
	Logger *slog.Logger
	// HTTPClient overrides the transport. When set, Timeout is ignored.
	HTTPClient *http.Client
}

// Client queries the local JSON API of a Fronius device (Symo and
// compatible). The API is unauthenticated; the caller supplies device
// ids. A Client is immutable after construction and safe for concurrent
// use, each call performs one independent blocking request.
type Client struct {
	host       string
	scheme     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the device at cfg.Host.
func NewClient(cfg Config) *Client {
	scheme := "http"
	if cfg.UseHTTPS {
		scheme = "https"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		host:       cfg.Host,
		scheme:     scheme,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Host returns the configured device host.
func (c *Client) Host() string {
	return c.host
}

// CurrentPowerFlow returns the instantaneous power flow of the system:
// site-wide powers and energies plus the primary battery inverter state.
func (c *Client) CurrentPowerFlow() (*PowerFlowData, error) {
	url := fmt.Sprintf(urlPowerFlow, c.scheme, c.host)
	c.logger.Debug("get current system power flow data", "url", url)

	data, header, err := c.currentData(url)
	if err != nil {
		return nil, err
	}
	result := &PowerFlowData{Header: header}
	if data == nil {
		return result, nil
	}
	if err := normalizePowerFlow(result, data); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentSystemMeterData returns the readings of all meters attached to
// the system, keyed by meter device id.
func (c *Client) CurrentSystemMeterData() (*SystemMeterData, error) {
	url := fmt.Sprintf(urlSystemMeter, c.scheme, c.host)
	c.logger.Debug("get current system meter data", "url", url)

	data, header, err := c.currentData(url)
	if err != nil {
		return nil, err
	}
	result := &SystemMeterData{Header: header}
	if data == nil {
		return result, nil
	}
	if err := normalizeSystemMeters(result, data); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentSystemInverterData returns the cumulated energy and power
// values of the system along with the per-inverter series.
func (c *Client) CurrentSystemInverterData() (*SystemInverterData, error) {
	url := fmt.Sprintf(urlSystemInverter, c.scheme, c.host)
	c.logger.Debug("get current system inverter data", "url", url)

	data, header, err := c.currentData(url)
	if err != nil {
		return nil, err
	}
	result := &SystemInverterData{Header: header}
	if data == nil {
		return result, nil
	}
	if err := normalizeSystemInverters(result, data); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentMeterData returns the readings of a single meter. Meter device
// ids start at 0.
func (c *Client) CurrentMeterData(device int) (*MeterData, error) {
	url := fmt.Sprintf(urlDeviceMeter, c.scheme, c.host, device)
	c.logger.Debug("get current meter data", "url", url)

	data, header, err := c.currentData(url)
	if err != nil {
		return nil, err
	}
	result := &MeterData{Header: header}
	if data == nil {
		return result, nil
	}
	if err := normalizeDeviceMeter(result, data); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentStorageData returns the readings of a single battery storage
// unit: the pack controller plus its cell modules. Storage device ids
// start at 0.
func (c *Client) CurrentStorageData(device int) (*StorageData, error) {
	url := fmt.Sprintf(urlDeviceStorage, c.scheme, c.host, device)
	c.logger.Debug("get current storage data", "url", url)

	data, header, err := c.currentData(url)
	if err != nil {
		return nil, err
	}
	result := &StorageData{Header: header}
	if data == nil {
		return result, nil
	}
	if err := normalizeDeviceStorage(result, data); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentInverterData returns the common dataset of a single inverter.
// Inverter device ids start at 1.
func (c *Client) CurrentInverterData(device int) (*InverterData, error) {
	url := fmt.Sprintf(urlDeviceInverterCommon, c.scheme, c.host, device)
	c.logger.Debug("get current inverter data", "url", url)

	return c.deviceInverterData(url)
}

// CurrentCumulativeInverterData returns the cumulation dataset of a
// single inverter. Inverter device ids start at 1.
func (c *Client) CurrentCumulativeInverterData(device int) (*InverterData, error) {
	url := fmt.Sprintf(urlDeviceInverterCumulative, c.scheme, c.host, device)
	c.logger.Debug("get current cumulative inverter data", "url", url)

	return c.deviceInverterData(url)
}

func (c *Client) deviceInverterData(url string) (*InverterData, error) {
	data, header, err := c.currentData(url)
	if err != nil {
		return nil, err
	}
	result := &InverterData{Header: header}
	if data == nil {
		return result, nil
	}
	if err := normalizeDeviceInverter(result, data); err != nil {
		return nil, err
	}
	return result, nil
}

// envelope is the raw response wrapper common to all Solar API replies.
// Head fields are pointers so their absence is detectable.
type envelope struct {
	Head *struct {
		Timestamp *string `json:"Timestamp"`
		Status    *struct {
			Code        *int    `json:"Code"`
			Reason      *string `json:"Reason"`
			UserMessage *string `json:"UserMessage"`
		} `json:"Status"`
	} `json:"Head"`
	Body struct {
		Data json.RawMessage `json:"Data"`
	} `json:"Body"`
}

// currentData fetches url and extracts the envelope header. The returned
// payload is nil when Body.Data is empty or absent, which is not an
// error: the caller then returns the header-only result.
func (c *Client) currentData(url string) (json.RawMessage, Header, error) {
	env, err := c.fetchJSON(url)
	if err != nil {
		return nil, Header{}, err
	}

	header, err := headerData(env)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%s: %w", url, err)
	}

	if emptyData(env.Body.Data) {
		c.logger.Info("no data returned", "url", url)
		return nil, header, nil
	}

	return env.Body.Data, header, nil
}

// fetchJSON performs a blocking HTTP GET and decodes the response body
// as a Solar API envelope.
func (c *Client) fetchJSON(url string) (*envelope, error) {
	c.logger.Debug("fetch data", "url", url)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode JSON from %s: %w", url, err)
	}

	return &env, nil
}

// headerData extracts the status fields present on every reply. The
// vendor envelope is assumed well-formed; a missing Head, Timestamp,
// Status or Status sub-key is an ErrInvalidResponse.
func headerData(env *envelope) (Header, error) {
	if env.Head == nil {
		return Header{}, fmt.Errorf("%w: missing Head", ErrInvalidResponse)
	}
	if env.Head.Timestamp == nil {
		return Header{}, fmt.Errorf("%w: missing Head.Timestamp", ErrInvalidResponse)
	}
	if env.Head.Status == nil {
		return Header{}, fmt.Errorf("%w: missing Head.Status", ErrInvalidResponse)
	}
	raw := env.Head.Status
	if raw.Code == nil {
		return Header{}, fmt.Errorf("%w: missing Head.Status.Code", ErrInvalidResponse)
	}
	if raw.Reason == nil {
		return Header{}, fmt.Errorf("%w: missing Head.Status.Reason", ErrInvalidResponse)
	}
	if raw.UserMessage == nil {
		return Header{}, fmt.Errorf("%w: missing Head.Status.UserMessage", ErrInvalidResponse)
	}

	status := StatusInfo{
		Code:        *raw.Code,
		Reason:      *raw.Reason,
		UserMessage: *raw.UserMessage,
	}
	return Header{
		Timestamp:     Reading{Value: *env.Head.Timestamp},
		Status:        status,
		StatusCode:    Reading{Value: status.Code},
		StatusReason:  Reading{Value: status.Reason},
		StatusMessage: Reading{Value: status.UserMessage},
	}, nil
}

// emptyData reports whether a Body.Data payload counts as absent: empty
// object, array or string, zero, false, null, or no Body at all.
// Emptiness is decided on the parsed value, so formatting variants of an
// empty literal count too.
func emptyData(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}
