package brain

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the Brain backend could not be reached or
// answered with a server error. Callers may retry later.
var ErrUnavailable = errors.New("aserras brain is unavailable")

// RejectedError indicates the Brain backend received the request and
// rejected it with a client error status. Not transient; retrying the
// identical request will fail the same way.
type RejectedError struct {
	StatusCode int
	Detail     string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("brain rejected request (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("brain rejected request (status %d): %s", e.StatusCode, e.Detail)
}

// IsUnavailable reports whether err means the backend was unreachable or down.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// AsRejected returns the RejectedError wrapped in err, or nil.
func AsRejected(err error) *RejectedError {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected
	}
	return nil
}
