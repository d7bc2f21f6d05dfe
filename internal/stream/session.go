// README: Stream session; owns the subscribe connection, reconnects, and callback delivery.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"askai/internal/modules/preference"
)

// State is the session connection state. Transitions:
//
//	Disconnected -> Connecting          Connect()
//	Connecting   -> Connected           2xx response opened the stream
//	Connecting   -> ErrorBackoff        connection failure
//	Connected    -> ErrorBackoff        mid-stream transport error
//	ErrorBackoff -> Connecting          retry after the configured delay
//	any          -> Disconnected        Disconnect()
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateErrorBackoff
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateErrorBackoff:
		return "error_backoff"
	default:
		return "unknown"
	}
}

// Config carries everything a session needs at construction. There is no
// process-wide shared configuration; each session owns its own values.
type Config struct {
	// URL is the subscribe endpoint (GET, streaming text response).
	URL string
	// Token is sent as a bearer Authorization header.
	Token string
	// Domain selects the normalizer field table for OnChips delivery.
	Domain preference.Domain

	// OnEvent receives the raw unwrapped JSON payload of each frame that
	// decoded successfully. Optional.
	OnEvent func(raw json.RawMessage)
	// OnChips receives the normalized chip set for each decoded frame.
	// Optional.
	OnChips func(chips preference.ChipSet)
	// OnError is invoked once per connection failure, before any retry.
	// Optional.
	OnError func(err error)

	// NewBackOff builds the reconnect policy for one Connect call. Nil means
	// DefaultBackOff. Use NoRetry to fail permanently on the first error.
	NewBackOff func() backoff.BackOff

	// Client overrides the HTTP client. The default has no overall timeout:
	// the stream is logically infinite and is bounded only by Disconnect.
	Client *http.Client

	// Logger overrides the session logger.
	Logger *zerolog.Logger
}

// DefaultBackOff is the observed production policy: a constant 3 second delay
// between reconnect attempts.
func DefaultBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(3 * time.Second)
}

// NoRetry disables automatic reconnection.
func NoRetry() backoff.BackOff {
	return &backoff.StopBackOff{}
}

// Session is a single long-lived subscription to the Ask AI event stream.
// One live connection exists per session; Connect while live first forces a
// Disconnect. Callbacks are delivered serially from one goroutine, in frame
// completion order. Methods are safe for concurrent use, but Disconnect must
// not be called from inside a callback.
type Session struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup

	asm *FrameAssembler
}

// NewSession builds a session from cfg. No connection is opened until Connect.
func NewSession(cfg Config) *Session {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := log.With().Str("component", "stream-session").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Session{
		cfg:    cfg,
		client: client,
		log:    logger,
		asm:    NewFrameAssembler(),
	}
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect opens the stream. It returns immediately; frames, chips, and errors
// arrive via the configured callbacks. ctx bounds the whole subscription:
// cancelling it behaves like Disconnect without the synchronous guarantee.
func (s *Session) Connect(ctx context.Context) {
	s.Disconnect()

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.state = StateConnecting
	s.asm.Reset()
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(runCtx)
}

// Disconnect tears the connection down and waits until the delivery goroutine
// has exited, so no callback fires after it returns. Safe to call from any
// state and idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.asm.Reset()
	s.state = StateDisconnected
	s.mu.Unlock()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		s.log.Debug().Stringer("from", prev).Stringer("to", st).Msg("session state change")
	}
}

// run is the connect/read/backoff loop. It is the only goroutine that touches
// the assembler or invokes callbacks.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()

	newBackOff := s.cfg.NewBackOff
	if newBackOff == nil {
		newBackOff = DefaultBackOff
	}
	bo := newBackOff()

	for {
		err := s.readStream(ctx, bo)
		if ctx.Err() != nil {
			return
		}

		s.setState(StateErrorBackoff)
		s.log.Warn().Err(err).Msg("stream connection failed")
		if s.cfg.OnError != nil {
			s.cfg.OnError(err)
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			s.setState(StateDisconnected)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		s.setState(StateConnecting)
	}
}

// readStream performs one GET against the subscribe endpoint and pumps the
// body through the assembler until the connection drops.
func (s *Session) readStream(ctx context.Context, bo backoff.BackOff) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode}
	}

	s.setState(StateConnected)
	bo.Reset()
	s.asm.Reset()

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			s.handleChunk(ctx, buf[:n])
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// EOF included: the server closing a logically infinite stream is
			// a transport failure and goes through the reconnect policy.
			return &TransportError{Err: err}
		}
	}
}

// handleChunk feeds one chunk to the assembler and dispatches every completed
// frame. Per-frame failures are logged and skipped; the stream never
// terminates because of one bad frame.
func (s *Session) handleChunk(ctx context.Context, chunk []byte) {
	frames, err := s.asm.Feed(chunk)
	if err != nil {
		s.log.Warn().Err(err).Int("size", len(chunk)).Msg("dropping malformed chunk")
		return
	}
	for _, frame := range frames {
		if ctx.Err() != nil {
			return
		}
		s.dispatchFrame(frame)
	}
}

func (s *Session) dispatchFrame(frame string) {
	payload, ok := Unwrap(frame)
	if !ok {
		s.log.Debug().Str("frame", frame).Msg("skipping unrecognized frame")
		return
	}

	entities, err := decodeEntities(payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("skipping frame with invalid JSON payload")
		return
	}

	if s.cfg.OnEvent != nil {
		s.cfg.OnEvent(json.RawMessage(payload))
	}
	if s.cfg.OnChips != nil {
		chips := preference.NewChipSet()
		for _, e := range entities {
			for _, c := range preference.Normalize(e, s.cfg.Domain).Values() {
				chips.Add(c)
			}
		}
		// An empty entity list is not an error; the caller sees an empty set.
		s.cfg.OnChips(chips)
	}
}

// decodeEntities accepts either a single entity object or a list of them.
func decodeEntities(payload string) ([]preference.Entity, error) {
	raw := []byte(payload)
	var one preference.Entity
	if err := json.Unmarshal(raw, &one); err == nil {
		return []preference.Entity{one}, nil
	}
	var many []preference.Entity
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}
