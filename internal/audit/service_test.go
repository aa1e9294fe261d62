package audit

import (
	"context"
	"testing"
	"time"
)

func TestService_AppendRequiresTypeAndRoute(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Append(context.Background(), Event{Route: "/api/calls"}); err == nil {
		t.Fatalf("expected error without type")
	}
	if err := svc.Append(context.Background(), Event{Type: EventTypeCallsQuery}); err == nil {
		t.Fatalf("expected error without route")
	}
}

func TestService_AppendWithoutRepo(t *testing.T) {
	if err := NewService(nil).Append(context.Background(), Event{Type: EventTypeCallsQuery, Route: "/x"}); err == nil {
		t.Fatalf("expected error without repository")
	}
}

func TestService_LogQueryStoresMetadataOnly(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)) }

	err := svc.LogQuery(context.Background(), Query{
		Type:      EventTypeCallsQuery,
		RequestID: "rid-1",
		IPAddress: "1.2.3.4",
		Route:     "/api/calls",
		Status:    200,
		Params:    map[string]string{"startDate": "2024-01-01", "endDate": "2024-01-07", "userId": ""},
		Duration:  1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	e := evs[0]
	if e.ID == "" || e.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected generated id and UTC timestamp, got %+v", e)
	}
	if e.Params != `{"endDate":"2024-01-07","startDate":"2024-01-01"}` {
		t.Fatalf("unexpected params %q", e.Params)
	}
	if e.DurationMS != 1500 || e.Status != 200 || e.RequestID != "rid-1" {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestPostgresRepo_NilDB(t *testing.T) {
	r := NewPostgresRepo(nil)
	if err := r.Append(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error for nil db")
	}
	if err := r.EnsureSchema(context.Background()); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestMemoryRepo_KeepsMostRecent(t *testing.T) {
	repo := NewMemoryRepo(2)
	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Append(context.Background(), Event{ID: id}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	evs := repo.Events()
	if len(evs) != 2 || evs[0].ID != "b" || evs[1].ID != "c" {
		t.Fatalf("unexpected events %+v", evs)
	}
}
