package store

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// ConcertAPI is the subset of [services.ConcertService] the concert store needs.
type ConcertAPI interface {
	List(ctx context.Context, page, perPage int) (models.Page[models.Concert], error)
	Get(ctx context.Context, id int64) (*models.Concert, error)
	Accept(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// ListSlice is one paginated list with its own request state.
type ListSlice struct {
	Items      []models.Concert
	Loading    bool
	Error      string
	Pagination models.PaginationMeta
}

// SelectedSlice is the single concert being viewed.
type SelectedSlice struct {
	Concert *models.Concert
	Loading bool
	Error   string
}

// ConcertsState is a copy of the store's three slices.
type ConcertsState struct {
	Concerts ListSlice
	Accepted ListSlice
	Selected SelectedSlice
}

// concertSnapshot is the persisted part of the store.
type concertSnapshot struct {
	AcceptedConcerts   []models.Concert      `json:"accepted_concerts"`
	AcceptedPagination models.PaginationMeta `json:"accepted_pagination"`
	ConcertsPagination models.PaginationMeta `json:"concerts_pagination"`
}

// Concerts is the concert list store. Each fetch replaces its slice wholesale and the last response wins;
// concurrent fetches of the same page are not coalesced.
type Concerts struct {
	mu      sync.RWMutex
	api     ConcertAPI
	storage Storage
	logger  *log.Logger
	perPage int

	concerts ListSlice
	accepted ListSlice
	selected SelectedSlice
}

// NewConcerts creates the store and rehydrates the "concert-storage" snapshot.
// perPage <= 0 leaves the page size to the server.
func NewConcerts(api ConcertAPI, storage Storage, perPage int, logger *log.Logger) *Concerts {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	c := &Concerts{
		api:      api,
		storage:  storage,
		logger:   logger,
		perPage:  perPage,
		concerts: ListSlice{Pagination: models.DefaultPagination()},
		accepted: ListSlice{Pagination: models.DefaultPagination()},
	}

	var snap concertSnapshot
	if ok, err := loadJSON(storage, KeyConcertSnapshot, &snap); err != nil {
		logger.Warn("discarding unreadable concert snapshot", "error", err)
	} else if ok {
		c.accepted.Items = snap.AcceptedConcerts
		if snap.AcceptedPagination.CurrentPage > 0 {
			c.accepted.Pagination = snap.AcceptedPagination
		}
		if snap.ConcertsPagination.CurrentPage > 0 {
			c.concerts.Pagination = snap.ConcertsPagination
		}
	}
	return c
}

// State returns a copy of every slice.
func (c *Concerts) State() ConcertsState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := ConcertsState{
		Concerts: c.concerts,
		Accepted: c.accepted,
		Selected: c.selected,
	}
	st.Concerts.Items = append([]models.Concert(nil), c.concerts.Items...)
	st.Accepted.Items = append([]models.Concert(nil), c.accepted.Items...)
	if c.selected.Concert != nil {
		sel := *c.selected.Concert
		st.Selected.Concert = &sel
	}
	return st
}

// FetchConcerts loads one page into the general list.
func (c *Concerts) FetchConcerts(ctx context.Context, page int) error {
	c.mu.Lock()
	c.concerts.Loading = true
	c.concerts.Error = ""
	c.mu.Unlock()

	result, err := c.api.List(ctx, page, c.perPage)

	c.mu.Lock()
	c.concerts.Loading = false
	if err != nil {
		c.concerts.Error = services.Describe(err, "failed to load concerts")
		c.mu.Unlock()
		c.logger.Error("failed to fetch concerts", "page", page, "error", err)
		return err
	}
	c.concerts.Items = result.Data
	if result.Data != nil {
		c.concerts.Pagination = result.Pagination(page)
	}
	c.mu.Unlock()

	return c.persist()
}

// FetchAcceptedConcerts loads one page and keeps only accepted concerts.
func (c *Concerts) FetchAcceptedConcerts(ctx context.Context, page int) error {
	c.mu.Lock()
	c.accepted.Loading = true
	c.accepted.Error = ""
	c.mu.Unlock()

	result, err := c.api.List(ctx, page, c.perPage)

	c.mu.Lock()
	c.accepted.Loading = false
	if err != nil {
		c.accepted.Error = services.Describe(err, "failed to load concerts")
		c.mu.Unlock()
		c.logger.Error("failed to fetch accepted concerts", "page", page, "error", err)
		return err
	}
	accepted := models.FilterAccepted(result.Data)
	c.accepted.Items = accepted
	if result.Data != nil {
		c.accepted.Pagination = result.Pagination(page)
		if result.Meta == nil {
			c.accepted.Pagination.Total = len(accepted)
		}
	}
	c.mu.Unlock()

	return c.persist()
}

// FetchConcertByID loads a single concert into the selected slice.
func (c *Concerts) FetchConcertByID(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.selected.Loading = true
	c.selected.Error = ""
	c.mu.Unlock()

	concert, err := c.api.Get(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected.Loading = false
	if err != nil {
		c.selected.Error = services.Describe(err, "failed to load concert")
		c.logger.Error("failed to fetch concert", "id", id, "error", err)
		return err
	}
	c.selected.Concert = concert
	return nil
}

// AcceptConcert marks the concert accepted in the general list before asking the API.
// If the API refuses, the flag is reverted, the error recorded and returned.
func (c *Concerts) AcceptConcert(ctx context.Context, id int64) error {
	c.MarkAccepted(id)
	return c.SubmitAccept(ctx, id)
}

// MarkAccepted applies the optimistic half of [Concerts.AcceptConcert] without a network call,
// so a view can re-render before the request starts.
func (c *Concerts) MarkAccepted(id int64) {
	c.setAccepted(id, true)
}

// SubmitAccept asks the API to accept a concert already marked with [Concerts.MarkAccepted],
// reverting the flag on failure.
func (c *Concerts) SubmitAccept(ctx context.Context, id int64) error {
	if err := c.api.Accept(ctx, id); err != nil {
		c.setAccepted(id, false)

		c.mu.Lock()
		c.concerts.Error = services.Describe(err, "failed to accept concert")
		c.mu.Unlock()

		c.logger.Error("failed to accept concert", "id", id, "error", err)
		return err
	}
	return nil
}

func (c *Concerts) setAccepted(id int64, accepted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.concerts.Items {
		if c.concerts.Items[i].ID == id {
			c.concerts.Items[i].IsAccepted = models.Flag(accepted)
		}
	}
}

// DeleteConcert removes the concert from both lists and the selection before asking the API.
// If the API refuses, both lists are fetched again at their current pages, then the error is recorded and returned.
func (c *Concerts) DeleteConcert(ctx context.Context, id int64) error {
	c.Remove(id)
	return c.SubmitDelete(ctx, id)
}

// Remove drops the concert from both lists and the selection without a network call.
func (c *Concerts) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.concerts.Items = without(c.concerts.Items, id)
	c.accepted.Items = without(c.accepted.Items, id)
	if c.selected.Concert != nil && c.selected.Concert.ID == id {
		c.selected.Concert = nil
	}
}

// SubmitDelete asks the API to delete a concert already dropped with [Concerts.Remove].
// On failure both lists are fetched again at their current pages.
func (c *Concerts) SubmitDelete(ctx context.Context, id int64) error {
	err := c.api.Delete(ctx, id)
	if err == nil {
		return c.persist()
	}

	c.logger.Error("failed to delete concert", "id", id, "error", err)

	c.mu.RLock()
	concertsPage := c.concerts.Pagination.CurrentPage
	acceptedPage := c.accepted.Pagination.CurrentPage
	c.mu.RUnlock()

	if ferr := c.FetchConcerts(ctx, concertsPage); ferr != nil {
		c.logger.Warn("resync of concerts failed", "error", ferr)
	}
	if ferr := c.FetchAcceptedConcerts(ctx, acceptedPage); ferr != nil {
		c.logger.Warn("resync of accepted concerts failed", "error", ferr)
	}

	c.mu.Lock()
	c.concerts.Error = services.Describe(err, "failed to delete concert")
	c.mu.Unlock()
	return err
}

func without(concerts []models.Concert, id int64) []models.Concert {
	out := make([]models.Concert, 0, len(concerts))
	for _, c := range concerts {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// ClearErrors drops the error of every slice.
func (c *Concerts) ClearErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.concerts.Error = ""
	c.accepted.Error = ""
	c.selected.Error = ""
}

// ClearSelected drops the selected concert and its error.
func (c *Concerts) ClearSelected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected.Concert = nil
	c.selected.Error = ""
}

func (c *Concerts) persist() error {
	c.mu.RLock()
	snap := concertSnapshot{
		AcceptedConcerts:   c.accepted.Items,
		AcceptedPagination: c.accepted.Pagination,
		ConcertsPagination: c.concerts.Pagination,
	}
	if snap.AcceptedConcerts == nil {
		snap.AcceptedConcerts = []models.Concert{}
	}
	err := saveJSON(c.storage, KeyConcertSnapshot, snap)
	c.mu.RUnlock()
	return err
}
