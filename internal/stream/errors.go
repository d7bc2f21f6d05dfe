// README: Stream error kinds (encoding, transport, decode).
package stream

import (
	"errors"
	"fmt"
)

// ErrMalformedEncoding is returned by the assembler when a chunk is not valid
// UTF-8. The chunk is dropped; previously buffered text is untouched.
var ErrMalformedEncoding = errors.New("chunk is not valid UTF-8")

// TransportError covers connection-level failures: refused connections, DNS
// errors, and non-2xx responses on the subscribe endpoint.
type TransportError struct {
	Status int // HTTP status, 0 when the request never completed
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("subscribe endpoint returned status %d", e.Status)
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
