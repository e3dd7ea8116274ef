package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

type mockConcerts struct {
	mu       sync.Mutex
	pages    map[int]models.Page[models.Concert]
	listErr  error
	failIDs  map[int64]error
	created  []models.CreateConcertRequest
	createFn func(req models.CreateConcertRequest) (*models.Concert, error)

	accepted []int64
	deleted  []int64
	listed   []int
}

func (m *mockConcerts) List(ctx context.Context, page, perPage int) (models.Page[models.Concert], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, page)
	if m.listErr != nil {
		return models.Page[models.Concert]{}, m.listErr
	}
	return m.pages[page], nil
}

func (m *mockConcerts) Create(ctx context.Context, req models.CreateConcertRequest) (*models.Concert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, req)
	if m.createFn != nil {
		return m.createFn(req)
	}
	return &models.Concert{ID: int64(100 + len(m.created)), City: req.City, Place: req.Place}, nil
}

func (m *mockConcerts) Accept(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted = append(m.accepted, id)
	return m.failIDs[id]
}

func (m *mockConcerts) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return m.failIDs[id]
}

type memoryDrafts struct {
	drafts  []*models.ConcertDraft
	updated []string
	deleted []string
}

func (m *memoryDrafts) List(criteria map[string]any) ([]*models.ConcertDraft, error) {
	return append([]*models.ConcertDraft(nil), m.drafts...), nil
}

func (m *memoryDrafts) Update(d *models.ConcertDraft) error {
	m.updated = append(m.updated, d.ID)
	return nil
}

func (m *memoryDrafts) Delete(id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func TestParseAction(t *testing.T) {
	for _, in := range []string{"accept", "ACCEPT", " delete "} {
		if _, err := ParseAction(in); err != nil {
			t.Errorf("ParseAction(%q) unexpected error %v", in, err)
		}
	}
	if _, err := ParseAction("reject"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestBulkModerate(t *testing.T) {
	tests := []struct {
		name          string
		action        Action
		ids           []int64
		failIDs       map[int64]error
		wantSucceeded int
		wantFailed    int
	}{
		{
			name:          "accept all",
			action:        Accept,
			ids:           []int64{3, 1, 2},
			wantSucceeded: 3,
		},
		{
			name:          "delete with partial failure",
			action:        Delete,
			ids:           []int64{1, 2, 3, 4},
			failIDs:       map[int64]error{2: &services.APIError{Status: http.StatusForbidden, Message: "Forbidden"}},
			wantSucceeded: 3,
			wantFailed:    1,
		},
		{
			name:   "no ids",
			action: Accept,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockConcerts{failIDs: tt.failIDs}
			engine := NewConcertEngine(api, nil, nil)

			progressCh := make(chan ProgressUpdate, 100)
			result, err := engine.BulkModerate(context.Background(), progressCh, tt.action, tt.ids, BulkModerateOpts{
				NumWorkers: 2,
				RateLimit:  1000,
			})
			close(progressCh)

			if err != nil {
				t.Fatalf("BulkModerate() error = %v", err)
			}
			if result.Total != len(tt.ids) || result.Succeeded != tt.wantSucceeded || result.Failed != tt.wantFailed {
				t.Errorf("unexpected counts %+v", result)
			}
			if len(result.Failures()) != tt.wantFailed {
				t.Errorf("Failures() = %v", result.Failures())
			}
			for i := 1; i < len(result.Results); i++ {
				if result.Results[i-1].ConcertID > result.Results[i].ConcertID {
					t.Errorf("results not ordered by id: %v", result.Results)
				}
			}

			calls := api.accepted
			if tt.action == Delete {
				calls = api.deleted
			}
			if len(calls) != len(tt.ids) {
				t.Errorf("expected %d API calls, got %d", len(tt.ids), len(calls))
			}
			if got := len(progressCh); got != len(tt.ids) {
				t.Errorf("expected %d progress updates, got %d", len(tt.ids), got)
			}
		})
	}

	t.Run("invalid action", func(t *testing.T) {
		engine := NewConcertEngine(&mockConcerts{}, nil, nil)
		if _, err := engine.BulkModerate(context.Background(), nil, Action("ban"), []int64{1}, BulkModerateOpts{}); err == nil {
			t.Error("expected error for invalid action")
		}
	})

	t.Run("nil service", func(t *testing.T) {
		engine := NewConcertEngine(nil, nil, nil)
		_, err := engine.BulkModerate(context.Background(), nil, Accept, []int64{1}, BulkModerateOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewConcertEngine(&mockConcerts{}, nil, nil)
		result, err := engine.BulkModerate(ctx, nil, Accept, []int64{1, 2, 3}, BulkModerateOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Succeeded+result.Failed == 3 {
			t.Errorf("expected an interrupted result, got %+v", result)
		}
	})
}

func TestCollectConcerts(t *testing.T) {
	pages := map[int]models.Page[models.Concert]{}
	for p := 1; p <= 3; p++ {
		pages[p] = models.Page[models.Concert]{
			Data: []models.Concert{
				{ID: int64(p*10 + 1), IsAccepted: true, UserID: 7},
				{ID: int64(p*10 + 2), IsAccepted: false, UserID: 8},
			},
			Meta: &models.PaginationMeta{CurrentPage: p, LastPage: 3, PerPage: 2, Total: 6},
		}
	}

	t.Run("all pages", func(t *testing.T) {
		api := &mockConcerts{pages: pages}
		engine := NewConcertEngine(api, nil, nil)

		progressCh := make(chan ProgressUpdate, 10)
		concerts, err := engine.CollectConcerts(context.Background(), progressCh, ExportOpts{RateLimit: 1000})
		close(progressCh)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(concerts) != 6 {
			t.Errorf("expected 6 concerts, got %d", len(concerts))
		}
		if len(api.listed) != 3 {
			t.Errorf("expected 3 page requests, got %v", api.listed)
		}

		var updates []ProgressUpdate
		for u := range progressCh {
			updates = append(updates, u)
		}
		if len(updates) != 3 || updates[0].Phase != FetchPage || updates[2].Total != 3 {
			t.Errorf("unexpected updates %+v", updates)
		}
	})

	t.Run("filters and page cap", func(t *testing.T) {
		api := &mockConcerts{pages: pages}
		engine := NewConcertEngine(api, nil, nil)

		concerts, err := engine.CollectConcerts(context.Background(), nil, ExportOpts{
			AcceptedOnly: true,
			OwnerID:      7,
			MaxPages:     2,
			RateLimit:    1000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(concerts) != 2 {
			t.Errorf("expected 2 concerts, got %d", len(concerts))
		}
		for _, c := range concerts {
			if !c.Accepted() || c.UserID != 7 {
				t.Errorf("unexpected concert %+v", c)
			}
		}
	})

	t.Run("bare array stops after first page", func(t *testing.T) {
		api := &mockConcerts{pages: map[int]models.Page[models.Concert]{
			1: {Data: []models.Concert{{ID: 1}, {ID: 2}}},
		}}
		engine := NewConcertEngine(api, nil, nil)

		concerts, err := engine.CollectConcerts(context.Background(), nil, ExportOpts{RateLimit: 1000})
		if err != nil || len(concerts) != 2 || len(api.listed) != 1 {
			t.Errorf("unexpected result %d concerts, %v calls, err %v", len(concerts), api.listed, err)
		}
	})

	t.Run("list error", func(t *testing.T) {
		api := &mockConcerts{listErr: fmt.Errorf("%w: down", shared.ErrServiceUnavailable)}
		engine := NewConcertEngine(api, nil, nil)

		_, err := engine.CollectConcerts(context.Background(), nil, ExportOpts{RateLimit: 1000})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected wrapped ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestRetryDrafts(t *testing.T) {
	newDraft := func(t *testing.T, city string) *models.ConcertDraft {
		t.Helper()
		req := models.NewCreateConcertRequest(city, "Hall", "2026-05-01 20:00", 7, map[int64]float64{1: 50})
		d, err := models.NewConcertDraft(req, errors.New("timeout"))
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	t.Run("submits and deletes", func(t *testing.T) {
		drafts := &memoryDrafts{drafts: []*models.ConcertDraft{newDraft(t, "Oslo"), newDraft(t, "Bergen")}}
		api := &mockConcerts{}
		engine := NewConcertEngine(api, drafts, nil)

		progressCh := make(chan ProgressUpdate, 10)
		result, err := engine.RetryDrafts(context.Background(), progressCh)
		close(progressCh)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Submitted != 2 || result.Failed != 0 || len(drafts.deleted) != 2 {
			t.Errorf("unexpected result %+v, deleted %v", result, drafts.deleted)
		}
		if api.created[0].City != "Oslo" || api.created[0].Prices[1] != 50 {
			t.Errorf("draft payload not replayed: %+v", api.created[0])
		}
		if len(progressCh) != 2 {
			t.Errorf("expected 2 progress updates, got %d", len(progressCh))
		}
	})

	t.Run("failure records error", func(t *testing.T) {
		d := newDraft(t, "Oslo")
		drafts := &memoryDrafts{drafts: []*models.ConcertDraft{d}}
		api := &mockConcerts{createFn: func(models.CreateConcertRequest) (*models.Concert, error) {
			return nil, &services.APIError{
				Status: http.StatusUnprocessableEntity,
				Errors: map[string][]string{"start_at": {"The start at must be a date after now."}},
			}
		}}
		engine := NewConcertEngine(api, drafts, nil)

		result, err := engine.RetryDrafts(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Failed != 1 || len(drafts.deleted) != 0 || len(drafts.updated) != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if d.LastError != "The start at must be a date after now." {
			t.Errorf("unexpected last error %q", d.LastError)
		}
	})

	t.Run("selected ids only", func(t *testing.T) {
		first, second := newDraft(t, "Oslo"), newDraft(t, "Bergen")
		drafts := &memoryDrafts{drafts: []*models.ConcertDraft{first, second}}
		engine := NewConcertEngine(&mockConcerts{}, drafts, nil)

		result, err := engine.RetryDrafts(context.Background(), nil, second.ID)
		if err != nil {
			t.Fatal(err)
		}
		if result.Total != 1 || drafts.deleted[0] != second.ID {
			t.Errorf("expected only %s to be retried, got %+v", second.ID, result)
		}
	})

	t.Run("no draft storage", func(t *testing.T) {
		engine := NewConcertEngine(&mockConcerts{}, nil, nil)
		if _, err := engine.RetryDrafts(context.Background(), nil); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		FetchPage:  "fetch_page",
		Moderate:   "moderate",
		RetryDraft: "retry_draft",
		Phase(99):  "",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}

func TestDraftable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &services.APIError{Status: http.StatusBadGateway}, true},
		{"unreachable", fmt.Errorf("dial tcp: %w", shared.ErrServiceUnavailable), true},
		{"timeout", fmt.Errorf("POST /concerts: %w", shared.ErrTimeout), true},
		{"validation", &services.APIError{Status: http.StatusUnprocessableEntity}, false},
		{"forbidden", &services.APIError{Status: http.StatusForbidden}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Draftable(tt.err); got != tt.want {
				t.Errorf("Draftable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
