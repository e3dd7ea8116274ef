package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"golang.org/x/time/rate"
)

// ExportOpts selects which concerts [ConcertEngine.CollectConcerts] gathers.
type ExportOpts struct {
	PerPage      int     // Page size requested from the API (0 leaves it to the server)
	MaxPages     int     // Stop after this many pages (0 means all)
	AcceptedOnly bool    // Keep only accepted concerts
	OwnerID      int64   // Keep only concerts created by this user when non-zero
	RateLimit    float64 // Page requests per second (default: 5)
}

// CollectConcerts walks the concert listing page by page until the last page reported by the API.
func (e *ConcertEngine) CollectConcerts(ctx context.Context, prog chan<- ProgressUpdate, opts ExportOpts) ([]models.Concert, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Limit(rateOrDefault(opts.RateLimit)), 1)
	var all []models.Concert

	for page := 1; ; page++ {
		if err := limiter.Wait(ctx); err != nil {
			return all, err
		}

		result, err := e.concerts.List(ctx, page, opts.PerPage)
		if err != nil {
			return all, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		meta := result.Pagination(page)
		items := result.Data
		if opts.AcceptedOnly {
			items = models.FilterAccepted(items)
		}
		if opts.OwnerID != 0 {
			items = models.FilterOwned(items, opts.OwnerID)
		}
		all = append(all, items...)

		e.sendProgress(prog, fetchPageUpdate(page, meta.LastPage, len(items)))

		if page >= meta.LastPage || len(result.Data) == 0 {
			break
		}
		if opts.MaxPages > 0 && page >= opts.MaxPages {
			break
		}
	}

	return all, nil
}
