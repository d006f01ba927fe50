package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a job id unknown to the server.
	ErrNotFound = errors.New("job not found")

	// ErrAlreadyAssigned marks an assignment conflict: someone else claimed
	// the job between list and assign.
	ErrAlreadyAssigned = errors.New("job already assigned")
)

// APIError is a non-2xx response that is neither not-found nor a conflict.
// Msg carries the server-supplied message when one was present.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Msg)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}
