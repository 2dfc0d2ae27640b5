package scheduling

import (
	"fmt"

	"github.com/mockline/scheduler/pkg/errors"
)

// ErrNoHostAvailable means every host in the pool already has a commitment
// inside the conflict window of the requested time.
var ErrNoHostAvailable = errors.Error("no meeting host available for the requested time")

// ValidationError is a user-correctable rejection: the operation aborted
// synchronously and no state was changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
