package server

import (
	"net/http"
	"time"

	"github.com/vango-dev/outlet/pkg/datacache"
)

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: "localhost:3000".
	Address string

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the websocket request origin.
	// Default: allows all origins.
	CheckOrigin func(r *http.Request) bool

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// WSReadTimeout closes a websocket connection that stays silent this
	// long. Default: 5 minutes.
	WSReadTimeout time.Duration

	// WSWriteTimeout bounds a single websocket write.
	// Default: 10 seconds.
	WSWriteTimeout time.Duration

	// Store keeps committed loader data between requests of one client,
	// identified by a cookie. Nil disables persistence.
	Store datacache.Store

	// CookieName names the client identity cookie.
	// Default: "outlet_nav".
	CookieName string

	// MetricsPath exposes the Prometheus registry.
	// Default: "/metrics".
	MetricsPath string

	// DisableMetrics turns the metrics endpoint off.
	DisableMetrics bool

	// Server lifecycle

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// WriteTimeout bounds writing a response, loaders included.
	// Default: 30 seconds.
	WriteTimeout time.Duration

	// IdleTimeout bounds keep-alive connections.
	// Default: 120 seconds.
	IdleTimeout time.Duration
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           "localhost:3000",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       func(r *http.Request) bool { return true },
		MaxMessageSize:    64 * 1024,
		WSReadTimeout:     5 * time.Minute,
		WSWriteTimeout:    10 * time.Second,
		CookieName:        "outlet_nav",
		MetricsPath:       "/metrics",
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// withDefaults returns a copy of c with unset fields defaulted.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.WSReadTimeout == 0 {
		out.WSReadTimeout = defaults.WSReadTimeout
	}
	if out.WSWriteTimeout == 0 {
		out.WSWriteTimeout = defaults.WSWriteTimeout
	}
	if out.MetricsPath == "" {
		out.MetricsPath = defaults.MetricsPath
	}
	if out.CookieName == "" {
		out.CookieName = defaults.CookieName
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	return &out
}
