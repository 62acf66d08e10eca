package workspace

import "errors"

var (
	// ErrNotFound means the identifier does not resolve upstream.
	// Terminal: callers must not retry.
	ErrNotFound = errors.New("workspace: not found")

	// ErrRemoteUnavailable covers transport failures, timeouts and
	// upstream 5xx. Eligible for the stale-cache fallback.
	ErrRemoteUnavailable = errors.New("workspace: remote unavailable")
)
