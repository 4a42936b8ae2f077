package polling

import (
	"fmt"

	"github.com/seatrove/seadb/pkg/models"
)

// TransportError is returned when the retry budget is exhausted on
// transient transport failures. The whole operation may be retried by the
// caller; re-polling this poller will not.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("polling transport failure after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// OperationError is returned when the remote operation reports a terminal
// Failed or Canceled status. RawBody carries the provider's error payload
// verbatim.
type OperationError struct {
	Status  models.StatusCode
	Code    string
	Message string
	RawBody []byte
}

func (e *OperationError) Error() string {
	if e.Code != "" || e.Message != "" {
		return fmt.Sprintf("operation %s: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("operation %s", e.Status)
}

// ResponseError is returned when a status response cannot be interpreted:
// unparseable body, missing status field, or an unexpected HTTP status on
// the polling URL. It indicates a contract mismatch between client and
// provider and is never swallowed.
type ResponseError struct {
	StatusCode int
	Reason     string
	RawBody    []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("unexpected polling response (HTTP %d): %s", e.StatusCode, e.Reason)
}

// UnsupportedOperationError is returned by Cancel when the operation kind
// offers no cancellation endpoint.
type UnsupportedOperationError struct {
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation does not support %s", e.Operation)
}
