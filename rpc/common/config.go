package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the RPC server.
type ServerConfig struct {
	// API settings, Endpoint is host:port (http, tcp) or a socket path (unix)
	Endpoint        string
	TimeoutSecond   int64
	MaxRequestBytes int64

	// Result cache, 0 disables the cache
	CacheSize int

	// Logging configuration
	LogLevel string
}

// DefaultServerConfig returns the configuration used by `tsched serve` without flags.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Endpoint:        "0.0.0.0:8080",
		TimeoutSecond:   10,
		MaxRequestBytes: 16 << 20,
		CacheSize:       1024,
		LogLevel:        "info",
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Request Size", fmt.Sprintf("%d bytes", c.MaxRequestBytes))

	// Cache
	addSection("Result Cache")
	if c.CacheSize > 0 {
		addField("Size", strconv.Itoa(c.CacheSize))
	} else {
		addField("Size", "disabled")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int

	// Connections per endpoint of the tcp and unix transports (default 1)
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections/Endpoint", strconv.Itoa(max(c.ConnectionsPerEndpoint, 1)))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
