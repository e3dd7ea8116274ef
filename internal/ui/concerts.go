package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/services"
)

// concertListPage shows accepted concerts from the concert store, one page at a time.
type concertListPage struct {
	env     *env
	id      int
	list    list.Model
	spinner spinner.Model
}

func newConcertListPage(e *env) *concertListPage {
	p := &concertListPage{env: e, id: e.newID(), spinner: e.newSpinner()}
	p.list = newList(concertItems(e.Concerts.State().Accepted.Items), "Accepted concerts", e)
	return p
}

func (p *concertListPage) Title() string { return "Concerts" }

func (p *concertListPage) Help() []key.Binding {
	k := p.env.keys
	return []key.Binding{k.enter, k.nextPage, k.prevPage, k.refresh}
}

func (p *concertListPage) Init() tea.Cmd {
	page := p.env.Concerts.State().Accepted.Pagination.CurrentPage
	return tea.Batch(p.spinner.Tick, p.fetch(max(page, 1)))
}

func (p *concertListPage) fetch(page int) tea.Cmd {
	id, e := p.id, p.env
	return func() tea.Msg {
		err := e.Concerts.FetchAcceptedConcerts(e.ctx, page)
		return resultMsg(id, MsgConcertsFetched, nil, err)
	}
}

func (p *concertListPage) Update(msg tea.Msg) (page, tea.Cmd) {
	slice := p.env.Concerts.State().Accepted

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(p.env.listSize())
		return p, nil

	case spinner.TickMsg:
		if !slice.Loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, p.env.keys.enter):
			if item, ok := p.list.SelectedItem().(concertItem); ok {
				return p, navigate(routes.Build(routes.ConcertDetail, "id", strconv.FormatInt(item.concert.ID, 10)))
			}
			return p, nil
		case key.Matches(msg, p.env.keys.nextPage):
			if slice.Pagination.HasNext() && !slice.Loading {
				return p, tea.Batch(p.spinner.Tick, p.fetch(slice.Pagination.CurrentPage+1))
			}
			return p, nil
		case key.Matches(msg, p.env.keys.prevPage):
			if slice.Pagination.HasPrev() && !slice.Loading {
				return p, tea.Batch(p.spinner.Tick, p.fetch(slice.Pagination.CurrentPage-1))
			}
			return p, nil
		case key.Matches(msg, p.env.keys.refresh):
			return p, tea.Batch(p.spinner.Tick, p.fetch(max(slice.Pagination.CurrentPage, 1)))
		}

	case Msg:
		if msg.kind == MsgConcertsFetched {
			p.list.SetItems(concertItems(slice.Items))
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *concertListPage) View() string {
	slice := p.env.Concerts.State().Accepted

	var b strings.Builder
	b.WriteString(errorLine(slice.Error))
	switch {
	case slice.Loading && len(slice.Items) == 0:
		b.WriteString(p.spinner.View() + " Loading concerts...\n")
	case !slice.Loading && slice.Error == "" && len(slice.Items) == 0:
		b.WriteString(styles.help.Render("No concerts found.") + "\n")
	default:
		b.WriteString(p.list.View() + "\n")
	}
	b.WriteString(pager(slice.Pagination) + "\n")
	return b.String()
}

// concertDetailPage shows one concert with its categories, tickets and comments,
// and lets the user buy a ticket or leave a comment.
type concertDetailPage struct {
	env       *env
	id        int
	concertID int64
	spinner   spinner.Model

	comments    []models.Comment
	commentsErr string

	category  int
	composing bool
	input     textinput.Model

	busy   bool
	notice string
	err    string
}

func newConcertDetailPage(e *env, concertID int64) *concertDetailPage {
	in := textinput.New()
	in.Placeholder = "Share your thoughts"
	in.CharLimit = 1000
	in.Width = 60

	return &concertDetailPage{
		env:       e,
		id:        e.newID(),
		concertID: concertID,
		spinner:   e.newSpinner(),
		input:     in,
	}
}

func (p *concertDetailPage) Title() string { return fmt.Sprintf("Concert #%d", p.concertID) }
func (p *concertDetailPage) Typing() bool  { return p.composing }

func (p *concertDetailPage) Help() []key.Binding {
	k := p.env.keys
	if p.composing {
		return []key.Binding{k.enter, k.back}
	}
	return []key.Binding{k.up, k.down, k.buy, k.comment, k.refresh, k.back}
}

func (p *concertDetailPage) Init() tea.Cmd {
	p.env.Concerts.ClearSelected()
	return tea.Batch(p.spinner.Tick, p.fetchConcert(), p.fetchComments())
}

func (p *concertDetailPage) fetchConcert() tea.Cmd {
	id, e, cid := p.id, p.env, p.concertID
	return func() tea.Msg {
		err := e.Concerts.FetchConcertByID(e.ctx, cid)
		return resultMsg(id, MsgConcertFetched, nil, err)
	}
}

func (p *concertDetailPage) fetchComments() tea.Cmd {
	id, e, cid := p.id, p.env, p.concertID
	return func() tea.Msg {
		comments, err := e.API.Concerts.Comments(e.ctx, cid)
		return resultMsg(id, MsgCommentsFetched, comments, err)
	}
}

func (p *concertDetailPage) concert() *models.Concert {
	return p.env.Concerts.State().Selected.Concert
}

func (p *concertDetailPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.busy && !p.env.Concerts.State().Selected.Loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.composing {
			return p, p.updateComposer(msg)
		}
		return p, p.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgConcertFetched:
			p.category = 0
		case MsgCommentsFetched:
			p.commentsErr = ""
			if msg.err != nil {
				p.commentsErr = services.Describe(msg.err, "failed to load comments")
				return p, nil
			}
			p.comments, _ = msg.data.([]models.Comment)
		case MsgActionDone:
			p.busy = false
			done, _ := msg.data.(actionDone)
			if msg.err != nil {
				p.err = services.Describe(msg.err, "failed to "+done.verb)
				return p, nil
			}
			p.err = ""
			switch done.verb {
			case "buy ticket":
				p.notice = "Ticket purchased."
				return p, p.fetchConcert()
			case "comment":
				p.notice = "Comment posted."
				return p, p.fetchComments()
			}
		}
	}
	return p, nil
}

func (p *concertDetailPage) handleKeys(msg tea.KeyMsg) tea.Cmd {
	k := p.env.keys
	c := p.concert()

	switch {
	case key.Matches(msg, k.back):
		return navigate(routes.ConcertList)
	case key.Matches(msg, k.refresh):
		return tea.Batch(p.spinner.Tick, p.fetchConcert(), p.fetchComments())
	case c == nil || p.busy:
		return nil
	case key.Matches(msg, k.up):
		if p.category > 0 {
			p.category--
		}
	case key.Matches(msg, k.down):
		if p.category < len(c.TicketCategories)-1 {
			p.category++
		}
	case key.Matches(msg, k.buy):
		if len(c.TicketCategories) == 0 {
			p.err = "this concert has no ticket categories"
			return nil
		}
		return p.buy(c.ID, c.TicketCategories[p.category].ID)
	case key.Matches(msg, k.comment):
		p.composing = true
		p.input.Focus()
		return textinput.Blink
	}
	return nil
}

func (p *concertDetailPage) updateComposer(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.env.keys.back):
		p.composing = false
		p.input.Blur()
		return nil
	case key.Matches(msg, p.env.keys.enter):
		req := models.CommentRequest{ConcertID: p.concertID, Content: strings.TrimSpace(p.input.Value())}
		if err := req.Validate(); err != nil {
			p.err = err.Error()
			return nil
		}
		p.composing = false
		p.input.Blur()
		p.input.SetValue("")
		return p.postComment(req)
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *concertDetailPage) buy(concertID, categoryID int64) tea.Cmd {
	p.busy = true
	p.notice = ""
	id, e := p.id, p.env
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		_, err := e.API.Tickets.Create(e.ctx, models.CreateTicketRequest{ConcertID: concertID, TicketCategoryID: categoryID})
		return resultMsg(id, MsgActionDone, actionDone{verb: "buy ticket", id: concertID}, err)
	})
}

func (p *concertDetailPage) postComment(req models.CommentRequest) tea.Cmd {
	p.busy = true
	p.notice = ""
	id, e := p.id, p.env
	return func() tea.Msg {
		_, err := e.API.Comments.Create(e.ctx, req)
		return resultMsg(id, MsgActionDone, actionDone{verb: "comment", id: req.ConcertID}, err)
	}
}

func (p *concertDetailPage) View() string {
	sel := p.env.Concerts.State().Selected

	var b strings.Builder
	b.WriteString(errorLine(sel.Error))
	b.WriteString(errorLine(p.err))
	if p.notice != "" {
		b.WriteString(styles.ok.Render(p.notice) + "\n\n")
	}

	c := sel.Concert
	if c == nil {
		if sel.Loading {
			b.WriteString(p.spinner.View() + " Loading concert...\n")
		} else if sel.Error == "" {
			b.WriteString(styles.help.Render("Concert not found.") + "\n")
		}
		return b.String()
	}

	details := fmt.Sprintf("%s\n%s %s", styles.title.Render(c.Title()), styles.label.Render("Date:"), formatter.FormatDateTime(c.StartAt))
	if rel := formatter.RelativeTime(c.StartAt, time.Now()); rel != "" {
		details += styles.help.Render(" (" + rel + ")")
	}
	details += fmt.Sprintf("\n%s %s", styles.label.Render("Status:"), formatter.Status(*c))
	if c.User != nil {
		details += fmt.Sprintf("\n%s %s", styles.label.Render("Organizer:"), c.User.Name)
	}
	b.WriteString(styles.card.Render(details) + "\n\n")

	b.WriteString(styles.label.Render("Ticket categories") + "\n")
	if len(c.TicketCategories) == 0 {
		b.WriteString(styles.help.Render("  none") + "\n")
	}
	for i, cat := range c.TicketCategories {
		line := "  " + formatter.CategoryLabel(cat)
		if i == p.category {
			line = styles.active.Render("> " + formatter.CategoryLabel(cat))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + styles.label.Render(fmt.Sprintf("Tickets sold (%d)", len(c.Tickets))) + "\n")
	for _, t := range c.Tickets {
		item := ticketItem{ticket: t}
		b.WriteString(fmt.Sprintf("  #%d %s · %s\n", t.ID, item.Description(), formatter.FormatDateTime(t.CreatedAt)))
	}

	b.WriteString("\n" + styles.label.Render(fmt.Sprintf("Comments (%d)", len(p.comments))) + "\n")
	b.WriteString(errorLine(p.commentsErr))
	for _, cm := range p.comments {
		author := fmt.Sprintf("user #%d", cm.UserID)
		if cm.User != nil && cm.User.Name != "" {
			author = cm.User.Name
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", styles.ok.Render(author), cm.Content))
	}

	if p.composing {
		b.WriteString("\n" + p.input.View() + "\n")
	}
	if p.busy {
		b.WriteString("\n" + p.spinner.View() + " Working...\n")
	}
	return b.String()
}
