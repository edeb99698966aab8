package server

import "errors"

// Request-path error taxonomy. Handlers map these onto HTTP statuses;
// none of them ever crash the process.
var (
	// ErrUnauthorized means the operator's service password did not verify.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the host is not present in the current snapshot,
	// either because it was never seen or because its owning backend is
	// currently unreachable.
	ErrNotFound = errors.New("host not found")

	// ErrUpstreamUnavailable means the owning backend could not be reached
	// while forwarding a WOL command.
	ErrUpstreamUnavailable = errors.New("backend unavailable")

	// ErrUpstreamMisconfigured means the backend rejected the dispatch
	// password this server is configured with. The operator already
	// authenticated, so this is an operator-visible config problem, not a
	// credential failure on their part.
	ErrUpstreamMisconfigured = errors.New("backend rejected configured password")
)
