package config

import (
	"fmt"
	"time"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Buffer     BufferConfig     `mapstructure:"buffer"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Drift      DriftConfig      `mapstructure:"drift"`
	Reports    ReportsConfig    `mapstructure:"reports"`
	Model      ModelConfig      `mapstructure:"model"`
	Database   DatabaseConfig   `mapstructure:"database"`
	WebSocket  WebSocketConfig  `mapstructure:"websocket"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Events     EventsConfig     `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RateLimit      int           `mapstructure:"rate_limit"`
	MaxRequestSize int64         `mapstructure:"max_request_size"`
	CORS           CORSConfig    `mapstructure:"cors"`
}

type BufferConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type MonitorConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	MinSamples int           `mapstructure:"min_samples"`
	RunTimeout time.Duration `mapstructure:"run_timeout"`
}

type DriftConfig struct {
	PThreshold     float64 `mapstructure:"p_threshold"`
	ShareThreshold float64 `mapstructure:"share_threshold"`
}

type ReportsConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type ModelConfig struct {
	Type string `mapstructure:"type"`
}

type DatabaseConfig struct {
	Enabled          bool                 `mapstructure:"enabled"`
	Host             string               `mapstructure:"host"`
	Port             int                  `mapstructure:"port"`
	Name             string               `mapstructure:"name"`
	User             string               `mapstructure:"user"`
	Password         string               `mapstructure:"password"`
	MaxConnections   int                  `mapstructure:"max_connections"`
	SSLMode          string               `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration        `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration        `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration        `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration        `mapstructure:"migration_timeout"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type WebSocketConfig struct {
	ReadBufferSize  int   `mapstructure:"read_buffer_size"`
	WriteBufferSize int   `mapstructure:"write_buffer_size"`
	BroadcastBuffer int   `mapstructure:"broadcast_buffer"`
	ClientBuffer    int   `mapstructure:"client_buffer"`
	MaxMessageSize  int64 `mapstructure:"max_message_size"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}
