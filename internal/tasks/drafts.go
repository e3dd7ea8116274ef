package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// DraftResult is the outcome of resubmitting one draft.
type DraftResult struct {
	Draft   *models.ConcertDraft
	Concert *models.Concert
	Error   error
}

// DraftRetryResult summarizes a retry run.
type DraftRetryResult struct {
	Total     int
	Submitted int
	Failed    int
	Results   []DraftResult
}

// RetryDrafts resubmits saved drafts in creation order. Submitted drafts are deleted;
// failed ones keep their payload and record the new error.
//
// ids restricts the run to specific drafts; empty means every draft.
func (e *ConcertEngine) RetryDrafts(ctx context.Context, prog chan<- ProgressUpdate, ids ...string) (*DraftRetryResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if e.drafts == nil {
		return nil, fmt.Errorf("%w: draft storage not initialized", shared.ErrStorage)
	}

	drafts, err := e.drafts.List(nil)
	if err != nil {
		return nil, err
	}
	drafts = selectDrafts(drafts, ids)

	result := &DraftRetryResult{Total: len(drafts)}
	for i, d := range drafts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := e.retryDraft(ctx, d)
		result.Results = append(result.Results, res)
		if res.Error != nil {
			result.Failed++
		} else {
			result.Submitted++
		}
		e.sendProgress(prog, draftUpdate(i+1, len(drafts), res))
	}

	return result, nil
}

func (e *ConcertEngine) retryDraft(ctx context.Context, d *models.ConcertDraft) DraftResult {
	res := DraftResult{Draft: d}

	req, err := d.Request()
	if err != nil {
		res.Error = err
		return res
	}

	concert, err := e.concerts.Create(ctx, req)
	if err != nil {
		res.Error = err
		d.LastError = services.Describe(err, "failed to create concert")
		if uerr := e.drafts.Update(d); uerr != nil {
			e.logger.Error("failed to record draft error", "draft_id", d.ID, "error", uerr)
		}
		return res
	}

	res.Concert = concert
	if err := e.drafts.Delete(d.ID); err != nil {
		e.logger.Error("submitted draft could not be removed", "draft_id", d.ID, "concert_id", concert.ID, "error", err)
	}
	return res
}

func selectDrafts(drafts []*models.ConcertDraft, ids []string) []*models.ConcertDraft {
	if len(ids) == 0 {
		return drafts
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []*models.ConcertDraft
	for _, d := range drafts {
		if wanted[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// Draftable reports whether a failed create is worth retrying later: the server was unreachable, slow or failing.
func Draftable(err error) bool {
	return errors.Is(err, shared.ErrServiceUnavailable) || errors.Is(err, shared.ErrTimeout)
}
