// README: Ask service tests (validation, quota retry, publish, destination resolution).
package askai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"askai/internal/modules/preference"
)

// stubStore is a test double for QueryStore.
type stubStore struct {
	tokenErrs []error // popped per UseToken call
	ensured   int
	inserted  []Query
	listed    []Query
}

func (s *stubStore) UseToken(_ context.Context, _ string) error {
	if len(s.tokenErrs) == 0 {
		return nil
	}
	err := s.tokenErrs[0]
	s.tokenErrs = s.tokenErrs[1:]
	return err
}

func (s *stubStore) EnsureUser(_ context.Context, _ string) error {
	s.ensured++
	return nil
}

func (s *stubStore) InsertQuery(_ context.Context, q Query) error {
	s.inserted = append(s.inserted, q)
	return nil
}

func (s *stubStore) ListByUser(_ context.Context, _ string, _ int) ([]Query, error) {
	return s.listed, nil
}

// stubProvider returns a fixed entity payload.
type stubProvider struct {
	entity string
	err    error
	domain string
}

func (p *stubProvider) ExtractPreferences(_ context.Context, _, domain string, _ map[string]string) (json.RawMessage, error) {
	p.domain = domain
	if p.err != nil {
		return nil, p.err
	}
	return json.RawMessage(p.entity), nil
}

type stubPublisher struct {
	sessions []string
	payloads []string
	err      error
}

func (p *stubPublisher) Publish(_ context.Context, sessionID string, payload []byte) error {
	p.sessions = append(p.sessions, sessionID)
	p.payloads = append(p.payloads, string(payload))
	return p.err
}

type stubResolver struct {
	resolved string
	err      error
	asked    string
}

func (r *stubResolver) Resolve(_ context.Context, name string) (string, error) {
	r.asked = name
	return r.resolved, r.err
}

func newTestService(store *stubStore, provider *stubProvider, pub *stubPublisher, res DestinationResolver) *Service {
	return NewService(store, provider, pub, res)
}

func TestAsk_Validation(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubProvider{entity: `{}`}, &stubPublisher{}, nil)

	cases := []struct {
		name string
		req  AskRequest
		want error
	}{
		{"empty uid", AskRequest{SessionID: "s1", Query: "q", Domain: preference.DomainFlight}, ErrBadRequest},
		{"empty session", AskRequest{UID: "u1", Query: "q", Domain: preference.DomainFlight}, ErrBadRequest},
		{"whitespace query", AskRequest{UID: "u1", SessionID: "s1", Query: "   ", Domain: preference.DomainFlight}, ErrBadRequest},
		{"bad domain", AskRequest{UID: "u1", SessionID: "s1", Query: "q", Domain: "train"}, ErrUnknownDomain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Ask(context.Background(), tc.req); !errors.Is(err, tc.want) {
				t.Errorf("Ask() err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAsk_HappyPath(t *testing.T) {
	store := &stubStore{}
	provider := &stubProvider{entity: `{"preferred_airlines":["EVA Air"]}`}
	pub := &stubPublisher{}
	svc := newTestService(store, provider, pub, nil)

	q, err := svc.Ask(context.Background(), AskRequest{
		UID: "u1", SessionID: "s1", Query: "EVA Air only", Domain: preference.DomainFlight,
	})
	if err != nil {
		t.Fatalf("Ask() err = %v", err)
	}
	if q.ID == "" || q.Domain != "flight" {
		t.Errorf("query record = %+v", q)
	}
	if provider.domain != "flight" {
		t.Errorf("provider received domain %q", provider.domain)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d queries, want 1", len(store.inserted))
	}
	if len(pub.payloads) != 1 || pub.payloads[0] != `{"preferred_airlines":["EVA Air"]}` {
		t.Errorf("published %v", pub.payloads)
	}
	if pub.sessions[0] != "s1" {
		t.Errorf("published to session %q", pub.sessions[0])
	}
}

// TestAsk_QuotaInitRetry covers the first-use path: the initial deduction
// fails because the row is absent, the row is created, and the deduction is
// retried exactly once.
func TestAsk_QuotaInitRetry(t *testing.T) {
	store := &stubStore{tokenErrs: []error{ErrInsufficientTokens}}
	svc := newTestService(store, &stubProvider{entity: `{}`}, &stubPublisher{}, nil)

	if _, err := svc.Ask(context.Background(), AskRequest{
		UID: "new-user", SessionID: "s1", Query: "q", Domain: preference.DomainHotel,
	}); err != nil {
		t.Fatalf("Ask() err = %v", err)
	}
	if store.ensured != 1 {
		t.Errorf("EnsureUser called %d times, want 1", store.ensured)
	}
}

func TestAsk_QuotaExhausted(t *testing.T) {
	store := &stubStore{tokenErrs: []error{ErrInsufficientTokens, ErrInsufficientTokens}}
	svc := newTestService(store, &stubProvider{entity: `{}`}, &stubPublisher{}, nil)

	_, err := svc.Ask(context.Background(), AskRequest{
		UID: "u1", SessionID: "s1", Query: "q", Domain: preference.DomainFlight,
	})
	if !errors.Is(err, ErrInsufficientTokens) {
		t.Errorf("Ask() err = %v, want ErrInsufficientTokens", err)
	}
	if len(store.inserted) != 0 {
		t.Error("no query may be stored when the quota is exhausted")
	}
}

func TestAsk_ProviderFailure(t *testing.T) {
	wantErr := errors.New("model unavailable")
	svc := newTestService(&stubStore{}, &stubProvider{err: wantErr}, &stubPublisher{}, nil)

	if _, err := svc.Ask(context.Background(), AskRequest{
		UID: "u1", SessionID: "s1", Query: "q", Domain: preference.DomainFlight,
	}); !errors.Is(err, wantErr) {
		t.Errorf("Ask() err = %v, want provider error", err)
	}
}

func TestAsk_PublishFailureIsNotFatal(t *testing.T) {
	store := &stubStore{}
	pub := &stubPublisher{err: errors.New("redis down")}
	svc := newTestService(store, &stubProvider{entity: `{}`}, pub, nil)

	if _, err := svc.Ask(context.Background(), AskRequest{
		UID: "u1", SessionID: "s1", Query: "q", Domain: preference.DomainFlight,
	}); err != nil {
		t.Errorf("Ask() err = %v, want publish failure swallowed", err)
	}
	if len(store.inserted) != 1 {
		t.Error("query must still be stored when publish fails")
	}
}

func TestAsk_DestinationResolution(t *testing.T) {
	res := &stubResolver{resolved: "Kyoto, Japan"}
	store := &stubStore{}
	svc := newTestService(store, &stubProvider{entity: `{"destination":"kyoto"}`}, &stubPublisher{}, res)

	q, err := svc.Ask(context.Background(), AskRequest{
		UID: "u1", SessionID: "s1", Query: "hotels in kyoto", Domain: preference.DomainHotel,
	})
	if err != nil {
		t.Fatalf("Ask() err = %v", err)
	}
	if res.asked != "kyoto" {
		t.Errorf("resolver asked for %q", res.asked)
	}
	if q.Destination == nil || *q.Destination != "Kyoto, Japan" {
		t.Errorf("query destination = %v", q.Destination)
	}

	// Resolver failure degrades to a nil destination, not an error.
	svc = newTestService(store, &stubProvider{entity: `{"destination":"kyoto"}`}, &stubPublisher{},
		&stubResolver{err: errors.New("quota")})
	q, err = svc.Ask(context.Background(), AskRequest{
		UID: "u1", SessionID: "s1", Query: "hotels in kyoto", Domain: preference.DomainHotel,
	})
	if err != nil {
		t.Fatalf("Ask() err = %v", err)
	}
	if q.Destination != nil {
		t.Errorf("destination = %v, want nil on resolver failure", *q.Destination)
	}
}

func TestHistory_Validation(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubProvider{entity: `{}`}, &stubPublisher{}, nil)
	if _, err := svc.History(context.Background(), "  ", 10); !errors.Is(err, ErrBadRequest) {
		t.Errorf("History() err = %v, want ErrBadRequest", err)
	}
}
