package ports

import "errors"

var (
	// ErrNotFound is returned by repositories when a keyed lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrUpstreamUnavailable marks a gateway call that still failed after the
	// retry budget. Sync jobs skip the item and try again next cycle.
	ErrUpstreamUnavailable = errors.New("upstream temporarily unavailable")

	ErrAlreadyTracked = errors.New("business is already tracked by this user")
)
