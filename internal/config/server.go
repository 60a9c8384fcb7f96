package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ServerConfig represents the [server] section
type ServerConfig struct {
	IP          string        `toml:"ip" mapstructure:"ip"`
	Port        int           `toml:"port" mapstructure:"port"`
	ReadTimeout time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	Metrics     bool          `toml:"metrics" mapstructure:"metrics"`     // Serve /metrics
	WebSocket   bool          `toml:"websocket" mapstructure:"websocket"` // Serve /ws
	Admin       []string      `toml:"admin" mapstructure:"admin"`         // Client IPs granted the admin role
}

// Address returns the host:port the server listens on.
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Validate performs validation on the server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port number must be between 1 and 65535, got %d", s.Port)
	}
	if s.IP != "" && net.ParseIP(s.IP) == nil {
		return fmt.Errorf("invalid ip address: %s", s.IP)
	}
	if s.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must be non-negative, got %s", s.ReadTimeout)
	}
	for _, ip := range s.Admin {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("invalid admin ip address: %s", ip)
		}
	}
	return nil
}

// IsAdmin reports whether requests from ip are granted the admin role.
func (s *ServerConfig) IsAdmin(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, admin := range s.Admin {
		if parsed.Equal(net.ParseIP(admin)) {
			return true
		}
	}
	return false
}
