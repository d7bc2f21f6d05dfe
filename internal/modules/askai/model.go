// README: Ask AI query records, sentinel errors, and quota defaults.
package askai

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrInsufficientTokens is returned when a user has no query tokens
	// remaining for the current month.
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrBadRequest covers empty or invalid query input.
	ErrBadRequest = errors.New("bad request")
	// ErrUnknownDomain is returned for a domain outside flight/hotel.
	ErrUnknownDomain = errors.New("unknown preference domain")
)

// DefaultTokens is the number of Ask AI queries granted per month.
const DefaultTokens = 100

// Query is one persisted Ask AI request with its extracted entity.
type Query struct {
	ID          string
	UID         string
	SessionID   string
	Domain      string
	Query       string
	Entity      json.RawMessage
	Destination *string
	CreatedAt   time.Time
}
