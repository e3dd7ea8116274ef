package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/shared"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireDrafts() error {
	if r.drafts == nil {
		return fmt.Errorf("%w: drafts need the local database, run 'encore setup database'", shared.ErrStorage)
	}
	return nil
}

// DraftsList prints concert submissions saved while the API was unreachable.
func (r *Runner) DraftsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if city := cmd.String("city"); city != "" {
		criteria["city"] = city
	}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = int(limit)
	}

	drafts, err := r.drafts.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(drafts, true)
	}

	r.writePlainHeader("Concert drafts")
	if len(drafts) == 0 {
		return r.writePlain("No drafts saved.\n")
	}
	for _, d := range drafts {
		r.writePlain("%s  %s, %s  %s  saved %s\n", d.ID, d.City, d.Place, d.StartAt, humanize.Time(d.CreatedAt))
		if d.LastError != "" {
			r.writePlain("    last error: %s\n", d.LastError)
		}
	}
	return nil
}

// DraftsRetry resubmits drafts, all of them unless ids are given.
func (r *Runner) DraftsRetry(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	r.logger.Info("retrying drafts", "ids", ids)

	progressCh, stop := r.watchProgress()
	result, err := r.engine.RetryDrafts(ctx, progressCh, ids...)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Draft retry complete")
	r.writePlain("Submitted: %d/%d\n", result.Submitted, result.Total)

	if result.Failed > 0 {
		r.writePlain("\nStill pending (%d):\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s (%s, %s): %v\n", res.Draft.ID, res.Draft.City, res.Draft.Place, res.Error)
			}
		}
	}
	return nil
}

// DraftsDiscard deletes a saved draft.
func (r *Runner) DraftsDiscard(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	draft, err := r.drafts.Get(id)
	if err != nil {
		return err
	}
	if err := r.drafts.Delete(id); err != nil {
		return err
	}
	return r.writePlain("✓ Discarded draft %s (%s, %s, saved %s)\n", id, draft.City, draft.Place, draft.CreatedAt.Local().Format(time.DateTime))
}
