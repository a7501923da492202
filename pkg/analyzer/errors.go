package analyzer

import (
	"errors"
	"fmt"
)

// ErrContentTooShort is a local validation failure; the backend is never
// consulted for it.
var ErrContentTooShort = errors.New("content too short for analysis")

// ErrOffline is a local failure raised before the remote call when the
// network monitor reports unreachable.
var ErrOffline = errors.New("network unavailable, analysis skipped")

// BackendError folds every remote-call failure into a single analysis-failed
// error: non-success status, transport failure, or a malformed top-level
// response. Status is 0 when no HTTP status was available.
type BackendError struct {
	Status int
	Err    error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("analysis failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
