// Package config provides configuration file parsing for both tiers.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rewol/rewol/internal/models"
	"github.com/spf13/viper"
)

// Defaults applied when the optional keys are absent.
const (
	DefaultProbeTimeout    = 2 * time.Second
	DefaultMonitorInterval = 5 * time.Second
	DefaultMaxRetries      = 3
	DefaultPollTimeout     = 3 * time.Second
	DefaultDispatchTimeout = 5 * time.Second
	DefaultBroadcast       = "255.255.255.255"
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadProxyFile loads a proxy configuration from a file path.
func (p *Parser) LoadProxyFile(path string) (*models.ProxyConfig, error) {
	p.v.SetConfigFile(path)
	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return p.parseProxy()
}

// LoadProxyReader loads a proxy configuration from a string (useful for testing).
func (p *Parser) LoadProxyReader(content string) (*models.ProxyConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return p.parseProxy()
}

// LoadServerFile loads a server configuration from a file path.
func (p *Parser) LoadServerFile(path string) (*models.ServerConfig, error) {
	p.v.SetConfigFile(path)
	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return p.parseServer()
}

// LoadServerReader loads a server configuration from a string (useful for testing).
func (p *Parser) LoadServerReader(content string) (*models.ServerConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return p.parseServer()
}

func (p *Parser) parseProxy() (*models.ProxyConfig, error) {
	cfg := &models.ProxyConfig{
		Port:          p.v.GetInt("server.port"),
		CheckInterval: p.v.GetDuration("server.check_interval"),
		ProbeTimeout:  p.v.GetDuration("server.probe_timeout"),
		Password: models.PasswordConfig{
			Hash: p.v.GetString("password.hash"),
			Salt: p.v.GetString("password.salt"),
		},
	}

	if cfg.Password.Hash == "" || cfg.Password.Salt == "" {
		return nil, fmt.Errorf("password.hash and password.salt are required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("server.port is required")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("server.check_interval is required")
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}

	var raw []struct {
		Host       string `mapstructure:"host"`
		MACAddress string `mapstructure:"macAddress"`
		IP         string `mapstructure:"ip"`
		Broadcast  string `mapstructure:"broadcast"`
	}
	if err := p.v.UnmarshalKey("hosts", &raw); err != nil {
		return nil, fmt.Errorf("parsing hosts: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("hosts must be a non-empty list")
	}

	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		if h.Host == "" || h.MACAddress == "" || h.IP == "" {
			return nil, fmt.Errorf("hosts[%d]: host, macAddress and ip are required", i)
		}
		if seen[h.Host] {
			return nil, fmt.Errorf("hosts[%d]: duplicate host name %q", i, h.Host)
		}
		seen[h.Host] = true

		mac, err := net.ParseMAC(h.MACAddress)
		if err != nil {
			return nil, fmt.Errorf("hosts[%d]: invalid MAC address %q: %w", i, h.MACAddress, err)
		}
		if h.Broadcast == "" {
			h.Broadcast = DefaultBroadcast
		}

		cfg.Hosts = append(cfg.Hosts, models.Host{
			Name:       h.Host,
			MACAddress: mac,
			TargetAddr: h.IP,
			Broadcast:  h.Broadcast,
		})
	}

	return cfg, nil
}

func (p *Parser) parseServer() (*models.ServerConfig, error) {
	cfg := &models.ServerConfig{
		Port:            p.v.GetInt("service.port"),
		MonitorInterval: p.v.GetDuration("service.monitor_interval"),
		MaxRetries:      p.v.GetInt("service.max_retries"),
		PollTimeout:     p.v.GetDuration("service.poll_timeout"),
		DispatchTimeout: p.v.GetDuration("service.dispatch_timeout"),
		Auth: models.PasswordConfig{
			Hash: p.v.GetString("service.password"),
			Salt: p.v.GetString("service.salt"),
		},
	}

	if cfg.Auth.Hash == "" || cfg.Auth.Salt == "" {
		return nil, fmt.Errorf("service.password and service.salt are required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("service.port is required")
	}
	if cfg.MonitorInterval == 0 {
		cfg.MonitorInterval = DefaultMonitorInterval
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.DispatchTimeout == 0 {
		cfg.DispatchTimeout = DefaultDispatchTimeout
	}

	var raw []struct {
		Host     string `mapstructure:"host"`
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
	}
	if err := p.v.UnmarshalKey("backends", &raw); err != nil {
		return nil, fmt.Errorf("parsing backends: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("backends must be a non-empty list")
	}

	for i, b := range raw {
		if b.Host == "" || b.Address == "" || b.Password == "" {
			return nil, fmt.Errorf("backends[%d]: host, address and password are required", i)
		}
		cfg.Backends = append(cfg.Backends, models.Backend{
			DisplayName:      b.Host,
			Address:          b.Address,
			DispatchPassword: b.Password,
		})
	}

	return cfg, nil
}
