// package tasks implements long-running concert operations: bulk moderation, paged export and draft retry.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// ConcertAPI is the subset of services.ConcertService the engine needs.
type ConcertAPI interface {
	List(ctx context.Context, page, perPage int) (models.Page[models.Concert], error)
	Create(ctx context.Context, req models.CreateConcertRequest) (*models.Concert, error)
	Accept(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// DraftStore persists concert submissions that failed.
type DraftStore interface {
	List(criteria map[string]any) ([]*models.ConcertDraft, error)
	Update(draft *models.ConcertDraft) error
	Delete(id string) error
}

// ConcertEngine runs batch operations against the concert API and reports progress over channels.
type ConcertEngine struct {
	concerts ConcertAPI
	drafts   DraftStore
	logger   *log.Logger
}

// NewConcertEngine creates a [ConcertEngine]. drafts may be nil when draft retry is not used.
func NewConcertEngine(concerts ConcertAPI, drafts DraftStore, logger *log.Logger) *ConcertEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &ConcertEngine{concerts: concerts, drafts: drafts, logger: logger}
}

func (e *ConcertEngine) ready() error {
	if e.concerts == nil {
		return fmt.Errorf("%w: concert service not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ConcertEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func clampWorkers(n int) int {
	if n <= 0 {
		return defaultWorkers
	}
	return min(n, maxWorkers)
}

func rateOrDefault(r float64) float64 {
	if r <= 0 {
		return defaultRateLimit
	}
	return r
}
