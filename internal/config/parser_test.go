package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_LoadProxyReader_FullConfig(t *testing.T) {
	yaml := `
password:
  hash: "TWtuN1AmOpCGZB8Fp12KA2SeDWTLepbNuZcSh3nZO20="
  salt: "I8NsnxI3GHQQhPUNEvlAFPJsXtJTac3VhAjGs82bhE4="

server:
  port: 11001
  check_interval: 30s
  probe_timeout: 1s

hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
    ip: 192.168.1.10
    broadcast: 192.168.1.255
  - host: beta
    macAddress: "11-22-33-44-55-66"
    ip: nas.lan
`
	parser := NewParser()
	cfg, err := parser.LoadProxyReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, 11001, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "TWtuN1AmOpCGZB8Fp12KA2SeDWTLepbNuZcSh3nZO20=", cfg.Password.Hash)

	require.Len(t, cfg.Hosts, 2)
	assert.Equal(t, "alpha", cfg.Hosts[0].Name)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", cfg.Hosts[0].MACAddress.String())
	assert.Equal(t, "192.168.1.10", cfg.Hosts[0].TargetAddr)
	assert.Equal(t, "192.168.1.255", cfg.Hosts[0].Broadcast)
	assert.Equal(t, "nas.lan", cfg.Hosts[1].TargetAddr)
	// Default broadcast
	assert.Equal(t, "255.255.255.255", cfg.Hosts[1].Broadcast)
}

func TestParser_LoadProxyReader_DefaultProbeTimeout(t *testing.T) {
	yaml := `
password:
  hash: "h"
  salt: "s"
server:
  port: 11001
  check_interval: 10s
hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
    ip: 192.168.1.10
`
	parser := NewParser()
	cfg, err := parser.LoadProxyReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, DefaultProbeTimeout, cfg.ProbeTimeout)
}

func TestParser_LoadProxyReader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing password",
			yaml: `
server:
  port: 11001
  check_interval: 10s
hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
    ip: 192.168.1.10
`,
			wantErr: "password.hash and password.salt are required",
		},
		{
			name: "missing port",
			yaml: `
password: {hash: "h", salt: "s"}
server:
  check_interval: 10s
hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
    ip: 192.168.1.10
`,
			wantErr: "server.port is required",
		},
		{
			name: "missing check interval",
			yaml: `
password: {hash: "h", salt: "s"}
server:
  port: 11001
hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
    ip: 192.168.1.10
`,
			wantErr: "server.check_interval is required",
		},
		{
			name: "no hosts",
			yaml: `
password: {hash: "h", salt: "s"}
server:
  port: 11001
  check_interval: 10s
hosts: []
`,
			wantErr: "hosts must be a non-empty list",
		},
		{
			name: "host missing ip",
			yaml: `
password: {hash: "h", salt: "s"}
server:
  port: 11001
  check_interval: 10s
hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
`,
			wantErr: "host, macAddress and ip are required",
		},
		{
			name: "bad mac",
			yaml: `
password: {hash: "h", salt: "s"}
server:
  port: 11001
  check_interval: 10s
hosts:
  - host: alpha
    macAddress: "not-a-mac"
    ip: 192.168.1.10
`,
			wantErr: "invalid MAC address",
		},
		{
			name: "duplicate host name",
			yaml: `
password: {hash: "h", salt: "s"}
server:
  port: 11001
  check_interval: 10s
hosts:
  - host: alpha
    macAddress: "AA:BB:CC:DD:EE:FF"
    ip: 192.168.1.10
  - host: alpha
    macAddress: "11:22:33:44:55:66"
    ip: 192.168.1.11
`,
			wantErr: "duplicate host name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			_, err := parser.LoadProxyReader(tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_LoadServerReader_FullConfig(t *testing.T) {
	yaml := `
backends:
  - host: "Lab A"
    address: 192.168.1.2:11001
    password: "backend-secret-a"
  - host: "Lab B"
    address: 192.168.2.2:11001
    password: "backend-secret-b"

service:
  password: "TWtuN1AmOpCGZB8Fp12KA2SeDWTLepbNuZcSh3nZO20="
  salt: "I8NsnxI3GHQQhPUNEvlAFPJsXtJTac3VhAjGs82bhE4="
  port: 11000
  monitor_interval: 2s
  max_retries: 5
  poll_timeout: 1s
  dispatch_timeout: 4s
`
	parser := NewParser()
	cfg, err := parser.LoadServerReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, 11000, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.MonitorInterval)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.PollTimeout)
	assert.Equal(t, 4*time.Second, cfg.DispatchTimeout)

	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "Lab A", cfg.Backends[0].DisplayName)
	assert.Equal(t, "192.168.1.2:11001", cfg.Backends[0].Address)
	assert.Equal(t, "backend-secret-a", cfg.Backends[0].DispatchPassword)
}

func TestParser_LoadServerReader_Defaults(t *testing.T) {
	yaml := `
backends:
  - host: "Lab A"
    address: 192.168.1.2:11001
    password: "backend-secret-a"
service:
  password: "h"
  salt: "s"
  port: 11000
`
	parser := NewParser()
	cfg, err := parser.LoadServerReader(yaml)

	require.NoError(t, err)
	assert.Equal(t, DefaultMonitorInterval, cfg.MonitorInterval)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultPollTimeout, cfg.PollTimeout)
	assert.Equal(t, DefaultDispatchTimeout, cfg.DispatchTimeout)
}

func TestParser_LoadServerReader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing auth",
			yaml: `
backends:
  - host: "Lab A"
    address: 192.168.1.2:11001
    password: "x"
service:
  port: 11000
`,
			wantErr: "service.password and service.salt are required",
		},
		{
			name: "missing port",
			yaml: `
backends:
  - host: "Lab A"
    address: 192.168.1.2:11001
    password: "x"
service:
  password: "h"
  salt: "s"
`,
			wantErr: "service.port is required",
		},
		{
			name: "no backends",
			yaml: `
service:
  password: "h"
  salt: "s"
  port: 11000
`,
			wantErr: "backends must be a non-empty list",
		},
		{
			name: "backend missing password",
			yaml: `
backends:
  - host: "Lab A"
    address: 192.168.1.2:11001
service:
  password: "h"
  salt: "s"
  port: 11000
`,
			wantErr: "host, address and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			_, err := parser.LoadServerReader(tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParser_LoadProxyFile_Missing(t *testing.T) {
	parser := NewParser()
	_, err := parser.LoadProxyFile("/nonexistent/config.yaml")
	require.Error(t, err)
}
