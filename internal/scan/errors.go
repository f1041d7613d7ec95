package scan

import (
	"errors"
	"fmt"

	"github.com/spigell/junior-hunter/internal/filtering"
)

// ErrRejected marks a posting turned down by the accept/reject policy. It
// only travels inside one listing iteration.
var ErrRejected = errors.New("posting rejected")

// RejectionError carries the stage and reason of a rejection.
type RejectionError struct {
	Stage  filtering.Stage
	Filter string
	Reason string
}

func rejection(v *filtering.Verdict) *RejectionError {
	return &RejectionError{Stage: v.Stage, Filter: v.Filter, Reason: v.Reason}
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("rejected at %s stage by %s: %s", e.Stage, e.Filter, e.Reason)
}

func (e *RejectionError) Unwrap() error { return ErrRejected }
