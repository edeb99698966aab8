// Package models contains the data structures shared by the rewol proxy
// and server tiers.
package models

import (
	"net"
	"time"
)

// Host is one Wake-on-LAN target owned by a proxy. Hosts are created at
// configuration load and never removed at runtime; liveness and the WOL
// counter live in the hosts table, not here.
type Host struct {
	Name       string
	MACAddress net.HardwareAddr
	TargetAddr string // IP or hostname used for liveness probing
	Broadcast  string // WOL broadcast address, defaults to 255.255.255.255
}

// PasswordConfig holds a PBKDF2 hash and its salt, both base64-encoded.
type PasswordConfig struct {
	Hash string
	Salt string
}

// ProxyConfig is the full configuration of one proxy instance.
// Immutable after load.
type ProxyConfig struct {
	Port          int
	CheckInterval time.Duration
	ProbeTimeout  time.Duration
	Password      PasswordConfig
	Hosts         []Host
}
