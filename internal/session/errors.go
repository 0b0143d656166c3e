package session

import "errors"

// ErrStopped is returned by intents posted after the event loop exited.
var ErrStopped = errors.New("session: stopped")

// IsStopped reports whether err means the session no longer accepts intents.
func IsStopped(err error) bool { return errors.Is(err, ErrStopped) }

// invalidSelectionError rejects a malformed selection request (HTTP 400).
type invalidSelectionError struct{ msg string }

func (e invalidSelectionError) Error() string { return "invalid selection: " + e.msg }

// IsInvalidSelection reports whether err rejects a malformed selection request.
func IsInvalidSelection(err error) bool {
	_, ok := err.(invalidSelectionError)
	return ok
}
