package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for query events.
//
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records gateway queries for operators. Callers treat it as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" || e.Route == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Query describes one handled gateway request.
type Query struct {
	Type      EventType
	RequestID string
	Subject   string
	IPAddress string
	Route     string
	Status    int
	Params    map[string]string
	Duration  time.Duration
}

// LogQuery records a handled request. Empty params are dropped.
func (s *Service) LogQuery(ctx context.Context, q Query) error {
	e := Event{
		Type:       q.Type,
		RequestID:  q.RequestID,
		Subject:    q.Subject,
		IPAddress:  q.IPAddress,
		Route:      q.Route,
		Status:     q.Status,
		DurationMS: q.Duration.Milliseconds(),
	}

	params := make(map[string]string, len(q.Params))
	for k, v := range q.Params {
		if v != "" {
			params[k] = v
		}
	}
	if len(params) > 0 {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		e.Params = string(b)
	}
	return s.Append(ctx, e)
}
