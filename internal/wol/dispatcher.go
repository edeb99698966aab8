// Package wol sends Wake-on-LAN magic packets for configured hosts.
package wol

import (
	"fmt"
	"net"

	mdwol "github.com/mdlayher/wol"
	"github.com/rewol/rewol/internal/hosts"
	"github.com/rewol/rewol/internal/models"
	"github.com/rs/zerolog"
)

// Client wraps the wol library for mocking.
type Client interface {
	Wake(target string, mac net.HardwareAddr) error
}

// DefaultClient is the default implementation using mdlayher/wol.
type DefaultClient struct{}

// Wake sends a magic packet to the target address.
func (c *DefaultClient) Wake(target string, mac net.HardwareAddr) error {
	client, err := mdwol.NewClient()
	if err != nil {
		return fmt.Errorf("creating WOL client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Wake(target, mac); err != nil {
		return fmt.Errorf("sending WOL packet: %w", err)
	}
	return nil
}

// Dispatcher fires wake signals and keeps the per-host counter. The counter
// counts attempts, not confirmed wake-ups: it is incremented before the send
// result is known and is never rolled back, since a failed send may still
// have partially transmitted.
type Dispatcher struct {
	client Client
	table  *hosts.Table
	logger zerolog.Logger
}

// New creates a dispatcher over table.
func New(table *hosts.Table, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{client: &DefaultClient{}, table: table, logger: logger}
}

// NewWithClient creates a dispatcher with a custom client (for testing).
func NewWithClient(table *hosts.Table, logger zerolog.Logger, client Client) *Dispatcher {
	return &Dispatcher{client: client, table: table, logger: logger}
}

// Send fires a best-effort wake signal at host's MAC address.
func (d *Dispatcher) Send(host models.Host) error {
	count := d.table.IncrementWOL(host.Name)

	target := net.JoinHostPort(host.Broadcast, "9")
	if err := d.client.Wake(target, host.MACAddress); err != nil {
		d.logger.Error().
			Str("host", host.Name).
			Str("mac", host.MACAddress.String()).
			Err(err).
			Msg("WOL send failed")
		return err
	}

	d.logger.Info().
		Str("host", host.Name).
		Str("mac", host.MACAddress.String()).
		Uint64("count", count).
		Msg("WOL signal sent")
	return nil
}
