// README: Ask AI query service; quota, extraction, destination resolution, persistence, publish.
package askai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"askai/internal/ai"
	"askai/internal/modules/preference"
)

// QueryStore is the persistence surface the service needs.
type QueryStore interface {
	UseToken(ctx context.Context, uid string) error
	EnsureUser(ctx context.Context, uid string) error
	InsertQuery(ctx context.Context, q Query) error
	ListByUser(ctx context.Context, uid string, limit int) ([]Query, error)
}

// FramePublisher delivers entity payloads to subscribed sessions.
type FramePublisher interface {
	Publish(ctx context.Context, sessionID string, payload []byte) error
}

// DestinationResolver turns a free-text destination into a canonical place
// name. Nil resolver disables resolution.
type DestinationResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// AskRequest is one inbound Ask AI query.
type AskRequest struct {
	UID       string
	SessionID string
	Query     string
	Domain    preference.Domain
}

// Service orchestrates one Ask AI round trip: quota check, preference
// extraction, optional destination resolution, persistence, and frame
// publication to the caller's stream session.
type Service struct {
	store     QueryStore
	provider  ai.LLMProvider
	publisher FramePublisher
	resolver  DestinationResolver
	log       zerolog.Logger
}

// NewService wires the ask service. resolver may be nil.
func NewService(store QueryStore, provider ai.LLMProvider, publisher FramePublisher, resolver DestinationResolver) *Service {
	return &Service{
		store:     store,
		provider:  provider,
		publisher: publisher,
		resolver:  resolver,
		log:       log.With().Str("component", "askai-service").Logger(),
	}
}

// Ask runs one query end to end and returns the persisted record. The
// extracted entity also reaches the client asynchronously through the
// session's event stream.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*Query, error) {
	req.UID = strings.TrimSpace(req.UID)
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Query = strings.TrimSpace(req.Query)
	if req.UID == "" || req.SessionID == "" || req.Query == "" {
		return nil, ErrBadRequest
	}
	if !preference.ValidDomain(req.Domain) {
		return nil, ErrUnknownDomain
	}

	if err := s.useToken(ctx, req.UID); err != nil {
		return nil, err
	}

	entity, err := s.provider.ExtractPreferences(ctx, req.Query, string(req.Domain), map[string]string{
		"current_time": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	q := Query{
		ID:        uuid.NewString(),
		UID:       req.UID,
		SessionID: req.SessionID,
		Domain:    string(req.Domain),
		Query:     req.Query,
		Entity:    entity,
		CreatedAt: time.Now().UTC(),
	}
	q.Destination = s.resolveDestination(ctx, entity)

	if err := s.store.InsertQuery(ctx, q); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, req.SessionID, entity); err != nil {
		// The query is already stored; a publish failure only costs the live
		// update, so it is logged rather than failing the request.
		s.log.Warn().Err(err).Str("session", req.SessionID).Msg("publish entity frame failed")
	}

	return &q, nil
}

// History returns the user's recent queries.
func (s *Service) History(ctx context.Context, uid string, limit int) ([]Query, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, ErrBadRequest
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListByUser(ctx, uid, limit)
}

// useToken deducts one token, initialising the user row on first use.
func (s *Service) useToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid)
	if err != ErrInsufficientTokens {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid)
}

// resolveDestination reads the entity's destination field and asks the
// resolver for a canonical name. Best effort: failures are logged, never fatal.
func (s *Service) resolveDestination(ctx context.Context, entity json.RawMessage) *string {
	if s.resolver == nil {
		return nil
	}
	var fields struct {
		Destination string `json:"destination"`
	}
	if err := json.Unmarshal(entity, &fields); err != nil || strings.TrimSpace(fields.Destination) == "" {
		return nil
	}
	resolved, err := s.resolver.Resolve(ctx, fields.Destination)
	if err != nil {
		s.log.Warn().Err(err).Str("destination", fields.Destination).Msg("destination resolution failed")
		return nil
	}
	return &resolved
}
