package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/store"
)

// moderationConcertsPage lists every concert from the store's general list with accept and delete actions.
// Both actions are optimistic; the store reverts or resyncs on failure.
type moderationConcertsPage struct {
	env     *env
	id      int
	list    list.Model
	spinner spinner.Model
	confirm *models.Concert
	notice  string
}

func newModerationConcertsPage(e *env) *moderationConcertsPage {
	p := &moderationConcertsPage{env: e, id: e.newID(), spinner: e.newSpinner()}
	p.list = newList(concertItems(e.Concerts.State().Concerts.Items), "All concerts", e)
	return p
}

func (p *moderationConcertsPage) Title() string { return "Moderate concerts" }

func (p *moderationConcertsPage) Help() []key.Binding {
	k := p.env.keys
	if p.confirm != nil {
		return []key.Binding{k.yes, k.no}
	}
	return []key.Binding{k.accept, k.remove, k.enter, k.nextPage, k.prevPage, k.refresh}
}

func (p *moderationConcertsPage) Init() tea.Cmd {
	page := p.env.Concerts.State().Concerts.Pagination.CurrentPage
	return tea.Batch(p.spinner.Tick, p.fetch(max(page, 1)))
}

func (p *moderationConcertsPage) fetch(page int) tea.Cmd {
	id, e := p.id, p.env
	return func() tea.Msg {
		err := e.Concerts.FetchConcerts(e.ctx, page)
		return resultMsg(id, MsgConcertsFetched, nil, err)
	}
}

func (p *moderationConcertsPage) refreshItems() {
	p.list.SetItems(concertItems(p.env.Concerts.State().Concerts.Items))
}

func (p *moderationConcertsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	slice := p.env.Concerts.State().Concerts

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
		if p.confirm != nil {
			return p, p.handleConfirm(msg)
		}
		if p.list.FilterState() == list.Filtering {
			break
		}
		if cmd, handled := p.handleKeys(msg, slice); handled {
			return p, cmd
		}

	case Msg:
		switch msg.kind {
		case MsgConcertsFetched:
			p.refreshItems()
			return p, nil
		case MsgActionDone:
			done, _ := msg.data.(actionDone)
			if msg.err == nil {
				p.notice = fmt.Sprintf("Concert #%d %s.", done.id, done.verb)
			}
			p.refreshItems()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *moderationConcertsPage) selected() (models.Concert, bool) {
	item, ok := p.list.SelectedItem().(concertItem)
	return item.concert, ok
}

func (p *moderationConcertsPage) handleKeys(msg tea.KeyMsg, slice store.ListSlice) (tea.Cmd, bool) {
	k := p.env.keys
	switch {
	case key.Matches(msg, k.accept):
		c, ok := p.selected()
		if !ok || c.Accepted() {
			return nil, true
		}
		return p.accept(c.ID), true
	case key.Matches(msg, k.remove):
		if c, ok := p.selected(); ok {
			p.confirm = &c
		}
		return nil, true
	case key.Matches(msg, k.enter):
		if c, ok := p.selected(); ok {
			return navigate(routes.Build(routes.ConcertDetail, "id", strconv.FormatInt(c.ID, 10))), true
		}
		return nil, true
	case key.Matches(msg, k.nextPage):
		if slice.Pagination.HasNext() && !slice.Loading {
			return tea.Batch(p.spinner.Tick, p.fetch(slice.Pagination.CurrentPage+1)), true
		}
		return nil, true
	case key.Matches(msg, k.prevPage):
		if slice.Pagination.HasPrev() && !slice.Loading {
			return tea.Batch(p.spinner.Tick, p.fetch(slice.Pagination.CurrentPage-1)), true
		}
		return nil, true
	case key.Matches(msg, k.refresh):
		return tea.Batch(p.spinner.Tick, p.fetch(max(slice.Pagination.CurrentPage, 1))), true
	}
	return nil, false
}

func (p *moderationConcertsPage) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	c := p.confirm
	switch {
	case key.Matches(msg, p.env.keys.yes):
		p.confirm = nil
		return p.delete(c.ID)
	case key.Matches(msg, p.env.keys.no):
		p.confirm = nil
	}
	return nil
}

// accept flips the flag in the store and the list before the request starts.
// The list is refreshed again when the result arrives, picking up a revert.
func (p *moderationConcertsPage) accept(concertID int64) tea.Cmd {
	p.notice = ""
	p.env.Concerts.MarkAccepted(concertID)
	p.refreshItems()

	id, e := p.id, p.env
	return func() tea.Msg {
		err := e.Concerts.SubmitAccept(e.ctx, concertID)
		return resultMsg(id, MsgActionDone, actionDone{verb: "accepted", id: concertID}, err)
	}
}

func (p *moderationConcertsPage) delete(concertID int64) tea.Cmd {
	p.notice = ""
	p.env.Concerts.Remove(concertID)
	p.refreshItems()

	id, e := p.id, p.env
	return func() tea.Msg {
		err := e.Concerts.SubmitDelete(e.ctx, concertID)
		return resultMsg(id, MsgActionDone, actionDone{verb: "deleted", id: concertID}, err)
	}
}

func (p *moderationConcertsPage) View() string {
	slice := p.env.Concerts.State().Concerts

	var b strings.Builder
	b.WriteString(errorLine(slice.Error))
	if p.notice != "" {
		b.WriteString(styles.ok.Render(p.notice) + "\n\n")
	}
	if p.confirm != nil {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", p.confirm.Title())) + "\n\n")
	}

	switch {
	case slice.Loading && len(slice.Items) == 0:
		b.WriteString(p.spinner.View() + " Loading concerts...\n")
	case !slice.Loading && slice.Error == "" && len(slice.Items) == 0:
		b.WriteString(styles.help.Render("No concerts to moderate.") + "\n")
	default:
		b.WriteString(p.list.View() + "\n")
	}
	b.WriteString(pager(slice.Pagination) + "\n")
	return b.String()
}

// moderationUsersPage lists accounts with a delete action.
type moderationUsersPage struct {
	env     *env
	id      int
	list    list.Model
	spinner spinner.Model
	meta    models.PaginationMeta
	loading bool
	confirm *models.User
	notice  string
	err     string
}

func newModerationUsersPage(e *env) *moderationUsersPage {
	p := &moderationUsersPage{env: e, id: e.newID(), spinner: e.newSpinner(), meta: models.DefaultPagination()}
	p.list = newList(nil, "Users", e)
	return p
}

func (p *moderationUsersPage) Title() string { return "Moderate users" }

func (p *moderationUsersPage) Help() []key.Binding {
	k := p.env.keys
	if p.confirm != nil {
		return []key.Binding{k.yes, k.no}
	}
	return []key.Binding{k.remove, k.nextPage, k.prevPage, k.refresh}
}

func (p *moderationUsersPage) Init() tea.Cmd {
	return tea.Batch(p.spinner.Tick, p.fetch(1))
}

func (p *moderationUsersPage) fetch(page int) tea.Cmd {
	p.loading = true
	id, e := p.id, p.env
	return func() tea.Msg {
		result, err := e.API.Users.List(e.ctx, page)
		if err != nil {
			return resultMsg(id, MsgUsersFetched, nil, err)
		}
		return resultMsg(id, MsgUsersFetched, usersFetched{users: result.Data, meta: result.Pagination(page)}, nil)
	}
}

func (p *moderationUsersPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(p.env.listSize())
		return p, nil

	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.confirm != nil {
			return p, p.handleConfirm(msg)
		}
		if p.list.FilterState() == list.Filtering {
			break
		}
		k := p.env.keys
		switch {
		case key.Matches(msg, k.remove):
			if item, ok := p.list.SelectedItem().(userItem); ok {
				u := item.user
				p.confirm = &u
			}
			return p, nil
		case key.Matches(msg, k.nextPage):
			if p.meta.HasNext() && !p.loading {
				return p, tea.Batch(p.spinner.Tick, p.fetch(p.meta.CurrentPage+1))
			}
			return p, nil
		case key.Matches(msg, k.prevPage):
			if p.meta.HasPrev() && !p.loading {
				return p, tea.Batch(p.spinner.Tick, p.fetch(p.meta.CurrentPage-1))
			}
			return p, nil
		case key.Matches(msg, k.refresh):
			return p, tea.Batch(p.spinner.Tick, p.fetch(max(p.meta.CurrentPage, 1)))
		}

	case Msg:
		switch msg.kind {
		case MsgUsersFetched:
			p.loading = false
			p.err = ""
			if msg.err != nil {
				p.err = services.Describe(msg.err, "failed to load users")
				return p, nil
			}
			data, _ := msg.data.(usersFetched)
			p.meta = data.meta
			items := make([]list.Item, len(data.users))
			for i, u := range data.users {
				items[i] = userItem{user: u}
			}
			p.list.SetItems(items)
			return p, nil

		case MsgActionDone:
			done, _ := msg.data.(actionDone)
			if msg.err != nil {
				p.err = services.Describe(msg.err, "failed to delete user")
				return p, nil
			}
			p.notice = fmt.Sprintf("User #%d deleted.", done.id)
			return p, p.fetch(max(p.meta.CurrentPage, 1))
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *moderationUsersPage) handleConfirm(msg tea.KeyMsg) tea.Cmd {
	u := p.confirm
	switch {
	case key.Matches(msg, p.env.keys.yes):
		p.confirm = nil
		if self, ok := p.env.Session.UserID(); ok && self == u.ID {
			p.err = "you cannot delete your own account here"
			return nil
		}
		p.notice = ""
		id, e, userID := p.id, p.env, u.ID
		return func() tea.Msg {
			err := e.API.Users.Delete(e.ctx, userID)
			return resultMsg(id, MsgActionDone, actionDone{verb: "delete user", id: userID}, err)
		}
	case key.Matches(msg, p.env.keys.no):
		p.confirm = nil
	}
	return nil
}

func (p *moderationUsersPage) View() string {
	var b strings.Builder
	b.WriteString(errorLine(p.err))
	if p.notice != "" {
		b.WriteString(styles.ok.Render(p.notice) + "\n\n")
	}
	if p.confirm != nil {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Delete user %q? (y/n)", p.confirm.Name)) + "\n\n")
	}

	switch {
	case p.loading && len(p.list.Items()) == 0:
		b.WriteString(p.spinner.View() + " Loading users...\n")
	case !p.loading && p.err == "" && len(p.list.Items()) == 0:
		b.WriteString(styles.help.Render("No users found.") + "\n")
	default:
		b.WriteString(p.list.View() + "\n")
	}
	b.WriteString(pager(p.meta) + "\n")
	return b.String()
}
