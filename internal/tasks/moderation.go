package tasks

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/time/rate"
)

// Action is a moderation operation applied to one concert.
type Action string

const (
	Accept Action = "accept"
	Delete Action = "delete"
)

// ParseAction accepts "accept" or "delete".
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case Accept, Delete:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown moderation action %q", shared.ErrInvalidArgument, s)
}

// BulkModerateOpts tunes a bulk moderation run.
type BulkModerateOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// ModerationResult is the outcome for one concert.
type ModerationResult struct {
	ConcertID int64
	Error     error
}

// BulkModerationResult summarizes a bulk run. Results are ordered by concert id.
type BulkModerationResult struct {
	Action    Action
	Total     int
	Succeeded int
	Failed    int
	Results   []ModerationResult
}

// Failures returns the results that carry an error.
func (r *BulkModerationResult) Failures() []ModerationResult {
	var out []ModerationResult
	for _, res := range r.Results {
		if res.Error != nil {
			out = append(out, res)
		}
	}
	return out
}

// BulkModerate applies action to every id using a rate limited worker pool.
//
// A failed concert does not stop the run; cancellation of ctx does.
func (e *ConcertEngine) BulkModerate(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	action Action,
	ids []int64,
	opts BulkModerateOpts,
) (*BulkModerationResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}

	result := &BulkModerationResult{
		Action:  action,
		Total:   len(ids),
		Results: make([]ModerationResult, 0, len(ids)),
	}
	if len(ids) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(rateOrDefault(opts.RateLimit)), 1)
	jobs := make(chan int64, len(ids))
	results := make(chan ModerationResult, len(ids))

	var wg sync.WaitGroup
	for range clampWorkers(opts.NumWorkers) {
		wg.Add(1)
		go e.moderationWorker(ctx, &wg, action, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- id
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Error != nil {
			result.Failed++
			e.logger.Warn("moderation failed", "action", action, "concert_id", res.ConcertID, "error", res.Error)
		} else {
			result.Succeeded++
		}
		e.sendProgress(prog, moderatedUpdate(completed, len(ids), action, res))
	}

	slices.SortFunc(result.Results, func(a, b ModerationResult) int {
		return cmp.Compare(a.ConcertID, b.ConcertID)
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("moderation interrupted after %d of %d: %w", completed, len(ids), err)
	}
	return result, nil
}

func (e *ConcertEngine) moderationWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	action Action,
	jobs <-chan int64,
	results chan<- ModerationResult,
) {
	defer wg.Done()

	for id := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var err error
		switch action {
		case Accept:
			err = e.concerts.Accept(ctx, id)
		case Delete:
			err = e.concerts.Delete(ctx, id)
		}
		results <- ModerationResult{ConcertID: id, Error: err}
	}
}
