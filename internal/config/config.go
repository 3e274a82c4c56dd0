// Package config loads client settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
)

// Transport selects the wire transport.
type Transport string

const (
	// TransportSocketIO speaks Socket.IO to the room server.
	TransportSocketIO Transport = "socketio"
	// TransportWebSocket speaks JSON envelopes over a bare WebSocket.
	TransportWebSocket Transport = "websocket"
)

// DiscoverURL is the ServerURL value that asks for mDNS discovery.
const DiscoverURL = "mdns"

// Defaults.
const (
	DefaultServerURL         = "http://localhost:5001"
	DefaultReconnectAttempts = 5
	DefaultReconnectDelay    = 1000 * time.Millisecond
	DefaultConnectTimeout    = 20 * time.Second
	DefaultJoinTimeout       = 10 * time.Second
	DefaultMDNSService       = "_codecollab._tcp"
)

type Config struct {
	// ServerURL is the base URL of the room server, or DiscoverURL.
	ServerURL string
	// Transport selects the wire transport.
	Transport Transport
	// ReconnectAttempts bounds automatic retries after a failure.
	ReconnectAttempts int
	// ReconnectDelay is the fixed pause between retries.
	ReconnectDelay time.Duration
	// ConnectTimeout bounds one dial.
	ConnectTimeout time.Duration
	// JoinTimeout bounds the wait for a connection and a room snapshot.
	JoinTimeout time.Duration
	// MDNSService is the service browsed when ServerURL is DiscoverURL.
	MDNSService string
	// LogLevel is the logger threshold.
	LogLevel logger.Level
	// Debug forces debug logging.
	Debug bool
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		ServerURL:         DefaultServerURL,
		Transport:         TransportSocketIO,
		ReconnectAttempts: DefaultReconnectAttempts,
		ReconnectDelay:    DefaultReconnectDelay,
		ConnectTimeout:    DefaultConnectTimeout,
		JoinTimeout:       DefaultJoinTimeout,
		MDNSService:       DefaultMDNSService,
		LogLevel:          logger.LevelInfo,
	}
}

// Load reads CODECOLLAB_* variables on top of Default.
func Load() (*Config, error) {
	cfg := Default()

	if v := getenvFirst("CODECOLLAB_SERVER_URL", "VITE_SERVER_URL"); v != "" {
		cfg.ServerURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}
	if v := os.Getenv("CODECOLLAB_TRANSPORT"); v != "" {
		cfg.Transport = Transport(strings.ToLower(strings.TrimSpace(v)))
	}

	var err error
	if cfg.ReconnectAttempts, err = intEnv("CODECOLLAB_RECONNECT_ATTEMPTS", cfg.ReconnectAttempts); err != nil {
		return nil, err
	}
	if cfg.ReconnectDelay, err = millisEnv("CODECOLLAB_RECONNECT_DELAY_MS", cfg.ReconnectDelay); err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout, err = millisEnv("CODECOLLAB_CONNECT_TIMEOUT_MS", cfg.ConnectTimeout); err != nil {
		return nil, err
	}
	if cfg.JoinTimeout, err = millisEnv("CODECOLLAB_JOIN_TIMEOUT_MS", cfg.JoinTimeout); err != nil {
		return nil, err
	}
	if v := os.Getenv("CODECOLLAB_MDNS_SERVICE"); v != "" {
		cfg.MDNSService = v
	}
	if v := os.Getenv("CODECOLLAB_LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = logger.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("invalid CODECOLLAB_LOG_LEVEL: %w", err)
		}
	}
	cfg.Debug = os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "1"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportSocketIO, TransportWebSocket:
	default:
		return fmt.Errorf("invalid CODECOLLAB_TRANSPORT %q (expected socketio or websocket)", c.Transport)
	}
	if c.ServerURL != DiscoverURL {
		u, err := url.Parse(c.ServerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server url %q", c.ServerURL)
		}
	}
	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts must not be negative, got %d", c.ReconnectAttempts)
	}
	for name, d := range map[string]time.Duration{
		"reconnect delay": c.ReconnectDelay,
		"connect timeout": c.ConnectTimeout,
		"join timeout":    c.JoinTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Discover reports whether the server should be found over mDNS.
func (c *Config) Discover() bool {
	return c.ServerURL == DiscoverURL
}

// EffectiveLogLevel folds Debug into LogLevel.
func (c *Config) EffectiveLogLevel() logger.Level {
	if c.Debug && c.LogLevel > logger.LevelDebug {
		return logger.LevelDebug
	}
	return c.LogLevel
}

func getenvFirst(primary, fallback string) string {
	if val := os.Getenv(primary); val != "" {
		return val
	}
	return os.Getenv(fallback)
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}

func millisEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
