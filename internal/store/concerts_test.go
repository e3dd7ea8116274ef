package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
)

type fakeConcertAPI struct {
	mu        sync.Mutex
	pages     map[int]models.Page[models.Concert]
	listErr   error
	acceptErr error
	deleteErr error
	concert   *models.Concert
	getErr    error

	listCalls []int
	accepted  []int64
	deleted   []int64
}

func (f *fakeConcertAPI) List(ctx context.Context, page, perPage int) (models.Page[models.Concert], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	if f.listErr != nil {
		return models.Page[models.Concert]{}, f.listErr
	}
	return f.pages[page], nil
}

func (f *fakeConcertAPI) Get(ctx context.Context, id int64) (*models.Concert, error) {
	return f.concert, f.getErr
}

func (f *fakeConcertAPI) Accept(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, id)
	return f.acceptErr
}

func (f *fakeConcertAPI) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func sampleConcerts() []models.Concert {
	return []models.Concert{
		{ID: 1, City: "Oslo", Place: "Rockefeller", IsAccepted: true},
		{ID: 2, City: "Bergen", Place: "USF Verftet", IsAccepted: false},
		{ID: 3, City: "Trondheim", Place: "Byscenen", IsAccepted: true},
	}
}

func pageOf(items []models.Concert, current, last, total int) models.Page[models.Concert] {
	return models.Page[models.Concert]{
		Data: items,
		Meta: &models.PaginationMeta{CurrentPage: current, LastPage: last, PerPage: 10, Total: total},
	}
}

func TestConcertsDefaults(t *testing.T) {
	c := NewConcerts(&fakeConcertAPI{}, NewMemoryStorage(), 10, nil)
	st := c.State()

	want := models.DefaultPagination()
	if st.Concerts.Pagination != want || st.Accepted.Pagination != want {
		t.Errorf("expected default pagination %+v, got %+v / %+v", want, st.Concerts.Pagination, st.Accepted.Pagination)
	}
	if len(st.Concerts.Items) != 0 || st.Selected.Concert != nil {
		t.Error("expected empty store")
	}
}

func TestFetchConcerts(t *testing.T) {
	t.Run("Pagination From Meta", func(t *testing.T) {
		api := &fakeConcertAPI{pages: map[int]models.Page[models.Concert]{
			2: pageOf(sampleConcerts(), 2, 5, 42),
		}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchConcerts(context.Background(), 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		st := c.State()
		if st.Concerts.Pagination.CurrentPage != 2 || st.Concerts.Pagination.LastPage != 5 || st.Concerts.Pagination.Total != 42 {
			t.Errorf("unexpected pagination %+v", st.Concerts.Pagination)
		}
		if len(st.Concerts.Items) != 3 || st.Concerts.Loading {
			t.Errorf("unexpected slice %+v", st.Concerts)
		}
	})

	t.Run("Missing Meta Falls Back", func(t *testing.T) {
		api := &fakeConcertAPI{pages: map[int]models.Page[models.Concert]{
			3: {Data: sampleConcerts()},
		}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchConcerts(context.Background(), 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		p := c.State().Concerts.Pagination
		if p.CurrentPage != 3 || p.LastPage != 1 || p.PerPage != 10 || p.Total != 3 {
			t.Errorf("unexpected fallback pagination %+v", p)
		}
	})

	t.Run("Error Recorded", func(t *testing.T) {
		api := &fakeConcertAPI{listErr: &services.APIError{Status: http.StatusInternalServerError, Message: "Server Error"}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchConcerts(context.Background(), 1); err == nil {
			t.Fatal("expected error")
		}

		st := c.State()
		if st.Concerts.Error != "Server Error" || st.Concerts.Loading {
			t.Errorf("unexpected slice %+v", st.Concerts)
		}
		if st.Accepted.Error != "" {
			t.Error("accepted slice must not share the error")
		}
	})

	t.Run("Empty Error Body Uses Fallback", func(t *testing.T) {
		api := &fakeConcertAPI{listErr: &services.APIError{Status: http.StatusInternalServerError}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchConcerts(context.Background(), 1); err == nil {
			t.Fatal("expected error")
		}
		if got := c.State().Concerts.Error; got != "failed to load concerts" {
			t.Errorf("expected fallback message, got %q", got)
		}
	})

	t.Run("Unauthorized Is Detectable", func(t *testing.T) {
		api := &fakeConcertAPI{listErr: &services.APIError{Status: http.StatusUnauthorized}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		err := c.FetchConcerts(context.Background(), 1)
		if !services.IsUnauthorized(err) {
			t.Errorf("expected unauthorized error, got %v", err)
		}
	})
}

func TestFetchAcceptedConcerts(t *testing.T) {
	t.Run("Only Accepted Entries", func(t *testing.T) {
		api := &fakeConcertAPI{pages: map[int]models.Page[models.Concert]{
			1: pageOf(sampleConcerts(), 1, 1, 3),
		}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchAcceptedConcerts(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		items := c.State().Accepted.Items
		if len(items) != 2 {
			t.Fatalf("expected 2 accepted concerts, got %d", len(items))
		}
		for _, item := range items {
			if !item.Accepted() {
				t.Errorf("concert %d is not accepted", item.ID)
			}
		}
	})

	t.Run("Fallback Total Uses Filtered Count", func(t *testing.T) {
		api := &fakeConcertAPI{pages: map[int]models.Page[models.Concert]{
			1: {Data: sampleConcerts()},
		}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchAcceptedConcerts(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total := c.State().Accepted.Pagination.Total; total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
	})

	t.Run("Persisted Snapshot", func(t *testing.T) {
		storage := NewMemoryStorage()
		api := &fakeConcertAPI{pages: map[int]models.Page[models.Concert]{
			2: pageOf(sampleConcerts(), 2, 4, 31),
		}}
		c := NewConcerts(api, storage, 10, nil)

		if err := c.FetchAcceptedConcerts(context.Background(), 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		restored := NewConcerts(&fakeConcertAPI{}, storage, 10, nil).State()
		if len(restored.Accepted.Items) != 2 || restored.Accepted.Pagination.CurrentPage != 2 {
			t.Errorf("unexpected restored accepted slice %+v", restored.Accepted)
		}
		if len(restored.Concerts.Items) != 0 {
			t.Error("general list is not persisted")
		}
	})
}

func TestFetchConcertByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := &fakeConcertAPI{concert: &models.Concert{ID: 9, City: "Oslo"}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchConcertByID(context.Background(), 9); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel := c.State().Selected; sel.Concert == nil || sel.Concert.ID != 9 || sel.Loading {
			t.Errorf("unexpected selected slice %+v", sel)
		}

		c.ClearSelected()
		if c.State().Selected.Concert != nil {
			t.Error("expected selection to be cleared")
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		api := &fakeConcertAPI{getErr: &services.APIError{Status: http.StatusNotFound, Message: "Concert not found"}}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)

		if err := c.FetchConcertByID(context.Background(), 404); err == nil {
			t.Fatal("expected error")
		}
		if msg := c.State().Selected.Error; msg != "Concert not found" {
			t.Errorf("unexpected error %q", msg)
		}

		c.ClearErrors()
		if c.State().Selected.Error != "" {
			t.Error("expected errors to be cleared")
		}
	})
}

func TestAcceptConcert(t *testing.T) {
	load := func(t *testing.T, api *fakeConcertAPI) *Concerts {
		t.Helper()
		api.pages = map[int]models.Page[models.Concert]{1: pageOf(sampleConcerts(), 1, 1, 3)}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)
		if err := c.FetchConcerts(context.Background(), 1); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		return c
	}

	find := func(items []models.Concert, id int64) models.Concert {
		for _, item := range items {
			if item.ID == id {
				return item
			}
		}
		return models.Concert{}
	}

	t.Run("Success", func(t *testing.T) {
		api := &fakeConcertAPI{}
		c := load(t, api)

		if err := c.AcceptConcert(context.Background(), 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !find(c.State().Concerts.Items, 2).Accepted() {
			t.Error("expected concert 2 to be accepted")
		}
	})

	t.Run("Failure Reverts", func(t *testing.T) {
		api := &fakeConcertAPI{acceptErr: &services.APIError{Status: http.StatusForbidden, Message: "Forbidden"}}
		c := load(t, api)

		err := c.AcceptConcert(context.Background(), 2)
		if err == nil {
			t.Fatal("expected error")
		}

		st := c.State()
		if find(st.Concerts.Items, 2).Accepted() {
			t.Error("expected accepted flag to be reverted")
		}
		if st.Concerts.Error != "Forbidden" {
			t.Errorf("unexpected error %q", st.Concerts.Error)
		}
		if len(api.accepted) != 1 || api.accepted[0] != 2 {
			t.Errorf("expected one accept call for 2, got %v", api.accepted)
		}
	})

	t.Run("Mark Then Submit", func(t *testing.T) {
		api := &fakeConcertAPI{acceptErr: &services.APIError{Status: http.StatusForbidden, Message: "Forbidden"}}
		c := load(t, api)

		c.MarkAccepted(2)
		if !find(c.State().Concerts.Items, 2).Accepted() {
			t.Error("expected concert 2 to be accepted before the request")
		}
		if len(api.accepted) != 0 {
			t.Fatalf("expected no accept call yet, got %v", api.accepted)
		}

		if err := c.SubmitAccept(context.Background(), 2); err == nil {
			t.Fatal("expected error")
		}
		if find(c.State().Concerts.Items, 2).Accepted() {
			t.Error("expected accepted flag to be reverted")
		}
	})

	t.Run("Failure Without Message Uses Fallback", func(t *testing.T) {
		api := &fakeConcertAPI{acceptErr: &services.APIError{Status: http.StatusBadGateway}}
		c := load(t, api)

		if err := c.AcceptConcert(context.Background(), 2); err == nil {
			t.Fatal("expected error")
		}
		if got := c.State().Concerts.Error; got != "failed to accept concert" {
			t.Errorf("expected fallback message, got %q", got)
		}
	})
}

func TestDeleteConcert(t *testing.T) {
	setup := func(t *testing.T, api *fakeConcertAPI) *Concerts {
		t.Helper()
		api.pages = map[int]models.Page[models.Concert]{1: pageOf(sampleConcerts(), 1, 1, 3)}
		api.concert = &models.Concert{ID: 1}
		c := NewConcerts(api, NewMemoryStorage(), 10, nil)
		ctx := context.Background()
		if err := c.FetchConcerts(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if err := c.FetchAcceptedConcerts(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if err := c.FetchConcertByID(ctx, 1); err != nil {
			t.Fatal(err)
		}
		api.listCalls = nil
		return c
	}

	t.Run("Success Removes Everywhere", func(t *testing.T) {
		api := &fakeConcertAPI{}
		c := setup(t, api)

		if err := c.DeleteConcert(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		st := c.State()
		if len(st.Concerts.Items) != 2 || len(st.Accepted.Items) != 1 {
			t.Errorf("expected concert removed from both lists, got %d / %d", len(st.Concerts.Items), len(st.Accepted.Items))
		}
		if st.Selected.Concert != nil {
			t.Error("expected selection to be cleared")
		}
		if len(api.listCalls) != 0 {
			t.Errorf("no refetch expected on success, got %v", api.listCalls)
		}
	})

	t.Run("Failure Resyncs", func(t *testing.T) {
		api := &fakeConcertAPI{deleteErr: errors.New("boom")}
		c := setup(t, api)

		if err := c.DeleteConcert(context.Background(), 1); err == nil {
			t.Fatal("expected error")
		}

		st := c.State()
		if len(st.Concerts.Items) != 3 || len(st.Accepted.Items) != 2 {
			t.Errorf("expected lists restored by refetch, got %d / %d", len(st.Concerts.Items), len(st.Accepted.Items))
		}
		if st.Concerts.Error != "boom" {
			t.Errorf("unexpected error %q", st.Concerts.Error)
		}
		if len(api.listCalls) != 2 {
			t.Errorf("expected both lists refetched, got %v", api.listCalls)
		}
	})
}
