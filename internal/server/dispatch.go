package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rewol/rewol/internal/auth"
	"github.com/rewol/rewol/internal/models"
	"github.com/rs/zerolog"
)

// SnapshotSource provides the current aggregated view for routing.
type SnapshotSource interface {
	Snapshot() *Snapshot
}

// Router verifies the operator's service password, resolves which backend
// owns a host, and forwards the WOL command with that backend's own
// dispatch password. The operator's password never leaves this process.
type Router struct {
	authCfg   models.PasswordConfig
	snapshots SnapshotSource
	client    *http.Client
	logger    zerolog.Logger
}

// NewRouter creates a command router over the aggregator's snapshots.
func NewRouter(cfg *models.ServerConfig, snapshots SnapshotSource, logger zerolog.Logger) *Router {
	return &Router{
		authCfg:   cfg.Auth,
		snapshots: snapshots,
		client:    &http.Client{Timeout: cfg.DispatchTimeout},
		logger:    logger,
	}
}

// Dispatch routes a WOL command for hostName. Authentication is checked
// before host existence.
func (r *Router) Dispatch(ctx context.Context, hostName, operatorPassword string) error {
	if !auth.Verify(operatorPassword, r.authCfg.Hash, r.authCfg.Salt) {
		r.logger.Warn().Str("host", hostName).Msg("invalid service password")
		return ErrUnauthorized
	}

	entry, ok := r.snapshots.Snapshot().Lookup(hostName)
	if !ok {
		return ErrNotFound
	}

	return r.forward(ctx, entry)
}

func (r *Router) forward(ctx context.Context, entry HostEntry) error {
	form := url.Values{
		"host":     {entry.Name},
		"password": {entry.Backend.DispatchPassword},
	}

	target := fmt.Sprintf("http://%s/wol", entry.Backend.Address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error().
			Str("host", entry.Name).
			Str("backend", entry.Backend.DisplayName).
			Err(err).
			Msg("WOL forward failed")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusCreated:
		r.logger.Info().
			Str("host", entry.Name).
			Str("backend", entry.Backend.DisplayName).
			Msg("WOL command forwarded")
		return nil
	case http.StatusUnauthorized:
		// The operator already authenticated; a 401 from the backend means
		// our stored dispatch password is wrong.
		r.logger.Error().
			Str("backend", entry.Backend.DisplayName).
			Msg("backend rejected dispatch password")
		return ErrUpstreamMisconfigured
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
}
