package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ConcertsAccepted lists one page of accepted concerts.
func (r *Runner) ConcertsAccepted(ctx context.Context, cmd *cli.Command) error {
	page := max(int(cmd.Int("page")), 1)

	if err := r.concerts.FetchAcceptedConcerts(ctx, page); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, r.concerts.State().Accepted.Error)
	}

	slice := r.concerts.State().Accepted
	if cmd.Bool("json") {
		return r.writeJSON(slice.Items, cmd.Bool("pretty"))
	}
	return r.printConcerts("Accepted concerts", slice.Items, slice.Pagination)
}

// ConcertsAll lists one page of every concert, pending ones included.
func (r *Runner) ConcertsAll(ctx context.Context, cmd *cli.Command) error {
	page := max(int(cmd.Int("page")), 1)

	if err := r.concerts.FetchConcerts(ctx, page); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, r.concerts.State().Concerts.Error)
	}

	slice := r.concerts.State().Concerts
	items := slice.Items
	if cmd.Bool("pending") {
		items = items[:0:0]
		for _, c := range slice.Items {
			if !c.Accepted() {
				items = append(items, c)
			}
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}
	return r.printConcerts("All concerts", items, slice.Pagination)
}

func (r *Runner) printConcerts(title string, concerts []models.Concert, meta models.PaginationMeta) error {
	r.writePlainHeader(title)
	if len(concerts) == 0 {
		r.writePlain("No concerts found.\n")
	}
	for _, c := range concerts {
		owner := "—"
		if c.User != nil && c.User.Name != "" {
			owner = c.User.Name
		}
		r.writePlain("#%-5d %-40s %s  %-8s  %s\n", c.ID, c.Title(), formatter.FormatDateTime(c.StartAt), formatter.Status(c), owner)
	}
	return r.writePlain("\nPage %d of %d (%s total)\n", meta.CurrentPage, max(meta.LastPage, 1), formatter.Count(meta.Total))
}

// ConcertsShow prints one concert with its ticket categories, sold tickets and comments.
func (r *Runner) ConcertsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	r.concerts.ClearSelected()
	if err := r.concerts.FetchConcertByID(ctx, id); err != nil {
		if services.IsNotFound(err) {
			return fmt.Errorf("%w: #%d", shared.ErrConcertNotFound, id)
		}
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, r.concerts.State().Selected.Error)
	}
	concert := r.concerts.State().Selected.Concert

	comments, err := r.api.Concerts.Comments(ctx, id)
	if err != nil {
		r.logger.Warn("failed to load comments", "concert_id", id, "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			*models.Concert
			Comments []models.Comment `json:"comments"`
		}{concert, comments}, true)
	}

	r.writePlainHeader(concert.Title())
	r.writePlain("ID: %d\n", concert.ID)
	r.writePlain("Starts: %s (%s, %s)\n", formatter.FormatDateTime(concert.StartAt), formatter.FormatDay(concert.StartAt), formatter.RelativeTime(concert.StartAt, time.Now()))
	r.writePlain("Status: %s\n", formatter.Status(*concert))
	if concert.User != nil {
		r.writePlain("Organizer: %s <%s>\n", concert.User.Name, concert.User.Email)
	}

	r.writePlainln("Ticket categories:")
	if len(concert.TicketCategories) == 0 {
		r.writePlain("  none\n")
	}
	for _, c := range concert.TicketCategories {
		r.writePlain("  [%d] %s\n", c.ID, formatter.CategoryLabel(c))
	}

	r.writePlain("\nTickets sold: %s\n", formatter.Count(len(concert.Tickets)))

	r.writePlainln("Comments:")
	if len(comments) == 0 {
		r.writePlain("  none\n")
	}
	for _, c := range comments {
		author := "anonymous"
		if c.User != nil {
			author = c.User.Name
		}
		r.writePlain("  [%d] %s (%s): %s\n", c.ID, author, formatter.RelativeTime(c.CreatedAt, time.Now()), c.Content)
	}
	return nil
}

// parsePrices reads "--category id=price" values. A bare id selects the category without a price.
func parsePrices(values []string) (map[int64]float64, error) {
	prices := make(map[int64]float64, len(values))
	for _, v := range values {
		rawID, rawPrice, hasPrice := strings.Cut(v, "=")
		id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: category %q must be <id> or <id>=<price>", shared.ErrInvalidFlag, v)
		}
		price := 0.0
		if hasPrice {
			price, err = strconv.ParseFloat(strings.TrimSpace(rawPrice), 64)
			if err != nil || price < 0 {
				return nil, fmt.Errorf("%w: price for category %d must be a non-negative number", shared.ErrInvalidFlag, id)
			}
		}
		prices[id] = price
	}
	return prices, nil
}

// ConcertsCreate submits a concert for moderation. When the API cannot be reached the request is kept as a draft.
func (r *Runner) ConcertsCreate(ctx context.Context, cmd *cli.Command) error {
	userID, err := r.currentUserID()
	if err != nil {
		return err
	}

	prices, err := parsePrices(cmd.StringSlice("category"))
	if err != nil {
		return err
	}

	req := models.NewCreateConcertRequest(cmd.String("city"), cmd.String("place"), cmd.String("start"), userID, prices)
	req.Attachments = cmd.StringSlice("attachment")
	if err := req.Validate(); err != nil {
		return err
	}

	r.logger.Info("creating concert", "city", req.City, "place", req.Place)
	concert, err := r.api.Concerts.Create(ctx, req)
	if err != nil {
		if id := r.saveDraft(req, err); id != "" {
			return r.writePlain("✗ Could not reach the server; saved as draft %s\nRun 'encore concerts drafts retry' to submit it later\n", id)
		}
		return fmt.Errorf("failed to create concert: %s", services.Describe(err, "unknown error"))
	}

	return r.writePlain("✓ Concert #%d submitted for moderation\n", concert.ID)
}

func (r *Runner) saveDraft(req models.CreateConcertRequest, cause error) string {
	if r.drafts == nil || !tasks.Draftable(cause) {
		return ""
	}
	draft, err := models.NewConcertDraft(req, cause)
	if err == nil {
		err = r.drafts.Create(draft)
	}
	if err != nil {
		r.logger.Error("failed to save concert draft", "error", err)
		return ""
	}
	return draft.ID
}

// ConcertsUpdate edits city, place or start time.
func (r *Runner) ConcertsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	var req models.UpdateConcertRequest
	for flag, dst := range map[string]**string{"city": &req.City, "place": &req.Place, "start": &req.StartAt} {
		if cmd.IsSet(flag) {
			v := strings.TrimSpace(cmd.String(flag))
			*dst = &v
		}
	}
	if req.City == nil && req.Place == nil && req.StartAt == nil {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}
	if req.StartAt != nil {
		if _, err := models.ParseStart(*req.StartAt); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
	}

	concert, err := r.api.Concerts.Update(ctx, id, req)
	if err != nil {
		return fmt.Errorf("failed to update concert: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Concert #%d updated: %s\n", concert.ID, concert.Title())
}

// ConcertsDelete removes a concert.
func (r *Runner) ConcertsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	if err := r.concerts.DeleteConcert(ctx, id); err != nil {
		return fmt.Errorf("failed to delete concert: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Concert #%d deleted\n", id)
}

// ConcertsAccept approves a pending concert.
func (r *Runner) ConcertsAccept(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	if err := r.concerts.AcceptConcert(ctx, id); err != nil {
		return fmt.Errorf("failed to accept concert: %s", services.Describe(err, "unknown error"))
	}
	return r.writePlain("✓ Concert #%d accepted\n", id)
}

// ConcertsOpen opens the concert's page of the web client in the default browser.
func (r *Runner) ConcertsOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}

	target, err := shared.FrontendURL(r.config.API.FrontendURL, routes.Build(routes.ConcertDetail, "id", strconv.FormatInt(id, 10)))
	if err != nil {
		return err
	}

	if cmd.Bool("print") {
		return r.writePlain("%s\n", target)
	}

	r.logger.Info("opening browser", "url", target)
	if err := shared.OpenBrowser(target); err != nil {
		return err
	}
	return r.writePlain("✓ Opened %s\n", target)
}

// ConcertsExport walks every page of the listing and writes the result in the chosen format.
func (r *Runner) ConcertsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		PerPage:      r.config.Concerts.PerPage,
		MaxPages:     int(cmd.Int("max-pages")),
		AcceptedOnly: cmd.Bool("accepted"),
		RateLimit:    r.config.Moderation.RateLimit,
	}
	title := "All concerts"
	if opts.AcceptedOnly {
		title = "Accepted concerts"
	}
	if cmd.Bool("mine") {
		if opts.OwnerID, err = r.currentUserID(); err != nil {
			return err
		}
		title = "My concerts"
	}

	progressCh, stop := r.watchProgress()
	concerts, err := r.engine.CollectConcerts(ctx, progressCh, opts)
	stop()
	if err != nil {
		return err
	}

	export := &formatter.Export{Title: title, GeneratedAt: time.Now(), Concerts: concerts}

	if cmd.Bool("stdout") {
		data, err := formatter.Encode(export, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	path, err := formatter.WriteExport(export, format, cmd.String("output"))
	if err != nil {
		return err
	}
	return r.writePlain("\n✓ Exported %s concerts to %s\n", formatter.Count(len(concerts)), path)
}
