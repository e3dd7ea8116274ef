package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ModerationBulk accepts or deletes many concerts with a rate limited worker pool.
//
// Ids come from the arguments, or with --pending from every concert still awaiting moderation.
func (r *Runner) ModerationBulk(ctx context.Context, cmd *cli.Command) error {
	action, err := tasks.ParseAction(cmd.String("action"))
	if err != nil {
		return err
	}

	var ids []int64
	for _, raw := range cmd.Args().Slice() {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: concert id %q", shared.ErrInvalidArgument, raw)
		}
		ids = append(ids, id)
	}

	if cmd.Bool("pending") {
		progressCh, stop := r.watchProgress()
		concerts, err := r.engine.CollectConcerts(ctx, progressCh, tasks.ExportOpts{
			PerPage:   r.config.Concerts.PerPage,
			MaxPages:  int(cmd.Int("max-pages")),
			RateLimit: r.config.Moderation.RateLimit,
		})
		stop()
		if err != nil {
			return err
		}
		for _, c := range concerts {
			if !c.Accepted() {
				ids = append(ids, c.ID)
			}
		}
	}

	if len(ids) == 0 {
		return r.writePlain("Nothing to moderate.\n")
	}

	if cmd.Bool("dry-run") {
		r.writePlain("Would %s %d concerts:\n", action, len(ids))
		for _, id := range ids {
			r.writePlain("  #%d\n", id)
		}
		return nil
	}

	opts := tasks.BulkModerateOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  r.config.Moderation.RateLimit,
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = r.config.Moderation.Workers
	}

	r.logger.Info("bulk moderation", "action", action, "count", len(ids), "workers", opts.NumWorkers)
	r.writePlain("Moderating %d concerts (%s)...\n\n", len(ids), action)

	progressCh, stop := r.watchProgress()
	result, err := r.engine.BulkModerate(ctx, progressCh, action, ids, opts)
	stop()
	if result == nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Moderation Complete!")
	r.writePlain("Action: %s\n", result.Action)
	r.writePlain("Succeeded: %d/%d\n", result.Succeeded, result.Total)

	if failures := result.Failures(); len(failures) > 0 {
		r.writePlain("\nFailed (%d):\n", len(failures))
		for _, f := range failures {
			r.writePlain("  - #%d: %v\n", f.ConcertID, f.Error)
		}
	}
	return err
}
