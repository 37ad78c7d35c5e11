package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultRelayAddr       = ":8443"
	DefaultJWTExpiresIn    = "24h"
	DefaultPGHost          = "127.0.0.1"
	DefaultPGPort          = 5432
	DefaultPGUser          = "postgres"
	DefaultPGDatabase      = "aigateway"
	DefaultPGSSLMode       = "disable"
	DefaultVertexModel     = "gemini-1.5-pro-002"
	DefaultVertexTimeout   = 120
	DefaultSessionTTL      = "2h"
	DefaultSweepEvery      = "10m"
	DefaultAuthTimeout     = 5
	DefaultUpstreamHost    = "us-central1-aiplatform.googleapis.com"
	defaultUpstreamPathFmt = "wss://%s/ws/google.cloud.aiplatform.v1beta1.LlmBidiService/BidiGenerateContent"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	Vertex   VertexConfig   `toml:"vertex"`
	Sessions SessionsConfig `toml:"sessions"`
	Relay    RelayConfig    `toml:"relay"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// URL renders the pool connection string.
func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type VertexConfig struct {
	ProjectID      string `toml:"project_id"`
	Location       string `toml:"location"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (c VertexConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultVertexTimeout * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type SessionsConfig struct {
	// IdleTTL is how long a conversation may sit untouched before the sweeper
	// evicts it. Go duration string.
	IdleTTL string `toml:"idle_ttl"`
	// SweepEvery is the sweep cadence. Go duration string.
	SweepEvery string `toml:"sweep_every"`
}

func (c SessionsConfig) IdleTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.IdleTTL)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultSessionTTL)
	}
	return d
}

func (c SessionsConfig) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SweepEvery)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultSweepEvery)
	}
	return d
}

type RelayConfig struct {
	Addr               string `toml:"addr"`
	UpstreamHost       string `toml:"upstream_host"`
	UpstreamURL        string `toml:"upstream_url"`
	CertFile           string `toml:"cert_file"`
	KeyFile            string `toml:"key_file"`
	AuthTimeoutSeconds int    `toml:"auth_timeout_seconds"`
}

func (c RelayConfig) AuthTimeout() time.Duration {
	if c.AuthTimeoutSeconds <= 0 {
		return DefaultAuthTimeout * time.Second
	}
	return time.Duration(c.AuthTimeoutSeconds) * time.Second
}

// Upstream returns the realtime endpoint URL, preferring an explicit override.
func (c RelayConfig) Upstream() string {
	if c.UpstreamURL != "" {
		return c.UpstreamURL
	}
	host := c.UpstreamHost
	if host == "" {
		host = DefaultUpstreamHost
	}
	return fmt.Sprintf(defaultUpstreamPathFmt, host)
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Vertex: VertexConfig{
			Model:          DefaultVertexModel,
			TimeoutSeconds: DefaultVertexTimeout,
		},
		Sessions: SessionsConfig{
			IdleTTL:    DefaultSessionTTL,
			SweepEvery: DefaultSweepEvery,
		},
		Relay: RelayConfig{
			Addr:               DefaultRelayAddr,
			UpstreamHost:       DefaultUpstreamHost,
			AuthTimeoutSeconds: DefaultAuthTimeout,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
