package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Channel  ChannelConfig  `toml:"channel"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig locates the control server's HTTP and websocket endpoints.
type ServerConfig struct {
	Host          string `toml:"host"`
	HTTPPort      int    `toml:"http_port"`
	WebsocketPort int    `toml:"websocket_port"`
	Target        string `toml:"target"`
}

// ChannelConfig contains the event channel's reconnect delays in milliseconds.
type ChannelConfig struct {
	NormalReconnectMS int `toml:"normal_reconnect_ms"`
	ErrorReconnectMS  int `toml:"error_reconnect_ms"`
}

// APIConfig contains request/response call settings for the /execute endpoint.
type APIConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DatabaseConfig contains database connection settings for the event journal.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// HTTPURL returns the base URL of the control server's HTTP API.
func (s ServerConfig) HTTPURL() string {
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))}
	return u.String()
}

// WebsocketURL returns the URL of the control server's event stream.
func (s ServerConfig) WebsocketURL() string {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(s.Host, strconv.Itoa(s.WebsocketPort))}
	return u.String()
}

// NormalDelay is the reconnect delay after a normal closure.
func (c ChannelConfig) NormalDelay() time.Duration {
	return time.Duration(c.NormalReconnectMS) * time.Millisecond
}

// ErrorDelay is the reconnect delay after any other closure.
func (c ChannelConfig) ErrorDelay() time.Duration {
	return time.Duration(c.ErrorReconnectMS) * time.Millisecond
}

// Timeout is the HTTP client timeout for backend calls.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("%w: server.host is empty", ErrInvalidConfig)
	}
	if c.Server.HTTPPort <= 0 || c.Server.WebsocketPort <= 0 {
		return fmt.Errorf("%w: server ports must be positive", ErrInvalidConfig)
	}
	if c.Channel.NormalReconnectMS < 0 || c.Channel.ErrorReconnectMS < 0 {
		return fmt.Errorf("%w: reconnect delays must not be negative", ErrInvalidConfig)
	}
	if c.API.RequestsPerSecond < 0 || c.API.Burst < 0 {
		return fmt.Errorf("%w: api rate limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
