package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/urfave/cli/v3"
)

// CommentsList prints the comments on a concert.
func (r *Runner) CommentsList(ctx context.Context, cmd *cli.Command) error {
	concertID, err := idArg(cmd, "concert")
	if err != nil {
		return err
	}

	comments, err := r.api.Concerts.Comments(ctx, concertID)
	if err != nil {
		return fmt.Errorf("failed to load comments: %s", services.Describe(err, "unknown error"))
	}

	if cmd.Bool("json") {
		return r.writeJSON(comments, true)
	}

	r.writePlainHeader(fmt.Sprintf("Comments on concert #%d", concertID))
	if len(comments) == 0 {
		return r.writePlain("No comments yet.\n")
	}
	for _, c := range comments {
		author := "anonymous"
		if c.User != nil {
			author = c.User.Name
		}
		r.writePlain("[%d] %s, %s\n    %s\n", c.ID, author, formatter.RelativeTime(c.CreatedAt, time.Now()), c.Content)
	}
	return nil
}

// CommentsAdd posts a comment on a concert.
func (r *Runner) CommentsAdd(ctx context.Context, cmd *cli.Command) error {
	concertID, err := idArg(cmd, "concert")
	if err != nil {
		return err
	}

	req := models.CommentRequest{ConcertID: concertID, Content: cmd.String("content")}
	if err := req.Validate(); err != nil {
		return err
	}

	comment, err := r.api.Comments.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to add comment: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Comment #%d added\n", comment.ID)
}

// CommentsEdit replaces a comment's content.
func (r *Runner) CommentsEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	req := models.CommentRequest{Content: cmd.String("content")}
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := r.api.Comments.Update(ctx, id, req); err != nil {
		return fmt.Errorf("failed to edit comment: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Comment #%d updated\n", id)
}

// CommentsDelete removes a comment.
func (r *Runner) CommentsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	if err := r.api.Comments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Comment #%d deleted\n", id)
}
