package models

import "time"

// Backend is a server-side reference to one proxy instance.
// DispatchPassword is sent only when forwarding a WOL command to that
// backend, never used to authenticate operators.
type Backend struct {
	DisplayName      string
	Address          string // host:port of the proxy's HTTP listener
	DispatchPassword string
}

// ServerConfig is the full configuration of the aggregating server.
// Immutable after load.
type ServerConfig struct {
	Port            int
	MonitorInterval time.Duration
	MaxRetries      int
	PollTimeout     time.Duration
	DispatchTimeout time.Duration
	Auth            PasswordConfig
	Backends        []Backend
}
