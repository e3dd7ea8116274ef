package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

type profileSection int

const (
	sectionTickets profileSection = iota
	sectionConcerts
)

const (
	editName = iota
	editEmail
	editDescription
	editAvatar
	editRemoveAvatar
)

// profilePage shows the signed-in user, their tickets and the concerts they created.
type profilePage struct {
	env     *env
	id      int
	spinner spinner.Model

	tickets     []models.Ticket
	ticketsErr  string
	concerts    []models.Concert
	concertsErr string
	loading     int

	section profileSection
	cursor  int
	editing bool
	form    form
	busy    bool
	notice  string
	err     string
}

func newProfilePage(e *env) *profilePage {
	return &profilePage{env: e, id: e.newID(), spinner: e.newSpinner()}
}

func (p *profilePage) Title() string { return "Profile" }
func (p *profilePage) Typing() bool  { return p.editing }

func (p *profilePage) Help() []key.Binding {
	k := p.env.keys
	if p.editing {
		return []key.Binding{k.next, k.submit, k.back}
	}
	return []key.Binding{k.tab, k.up, k.down, k.remove, k.edit, k.refresh}
}

func (p *profilePage) Init() tea.Cmd {
	userID, ok := p.env.Session.UserID()
	if !ok {
		p.err = shared.ErrNotAuthenticated.Error()
		return nil
	}
	p.loading = 2
	return tea.Batch(p.spinner.Tick, p.fetchTickets(userID), p.fetchConcerts(userID))
}

func (p *profilePage) fetchTickets(userID int64) tea.Cmd {
	id, e := p.id, p.env
	return func() tea.Msg {
		tickets, err := e.API.Users.Tickets(e.ctx, userID)
		return resultMsg(id, MsgTicketsFetched, tickets, err)
	}
}

// fetchConcerts loads the first page of concerts and keeps the user's own.
func (p *profilePage) fetchConcerts(userID int64) tea.Cmd {
	id, e := p.id, p.env
	return func() tea.Msg {
		result, err := e.API.Concerts.List(e.ctx, 1, e.PerPage)
		if err != nil {
			return resultMsg(id, MsgConcertsFetched, nil, err)
		}
		owned := models.FilterOwned(result.Data, userID)
		return resultMsg(id, MsgConcertsFetched, concertsFetched{concerts: owned, meta: result.Pagination(1)}, nil)
	}
}

func (p *profilePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if p.loading == 0 && !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		if p.editing {
			return p, p.updateEditor(msg)
		}
		return p, p.handleKeys(msg)

	case Msg:
		return p, p.handleResult(msg)
	}
	return p, nil
}

func (p *profilePage) handleResult(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgTicketsFetched:
		p.loading = max(p.loading-1, 0)
		p.ticketsErr = ""
		if msg.err != nil {
			p.ticketsErr = services.Describe(msg.err, "failed to load tickets")
			return nil
		}
		p.tickets, _ = msg.data.([]models.Ticket)
		p.clampCursor()

	case MsgConcertsFetched:
		p.loading = max(p.loading-1, 0)
		p.concertsErr = ""
		if msg.err != nil {
			p.concertsErr = services.Describe(msg.err, "failed to load concerts")
			return nil
		}
		data, _ := msg.data.(concertsFetched)
		p.concerts = data.concerts
		p.clampCursor()

	case MsgActionDone:
		p.busy = false
		done, _ := msg.data.(actionDone)
		if msg.err != nil {
			p.err = services.Describe(msg.err, "failed to "+done.verb)
			return nil
		}
		p.err = ""
		userID, _ := p.env.Session.UserID()
		switch done.verb {
		case "release ticket":
			p.notice = fmt.Sprintf("Ticket #%d released.", done.id)
			p.loading++
			return p.fetchTickets(userID)
		case "delete concert":
			p.notice = fmt.Sprintf("Concert #%d deleted.", done.id)
			p.loading++
			return p.fetchConcerts(userID)
		}

	case MsgProfileUpdated:
		p.busy = false
		if msg.err != nil {
			p.err = services.Describe(msg.err, "failed to update profile")
			return nil
		}
		p.editing = false
		p.err = ""
		p.notice = "Profile updated."
	}
	return nil
}

func (p *profilePage) rows() int {
	if p.section == sectionTickets {
		return len(p.tickets)
	}
	return len(p.concerts)
}

func (p *profilePage) clampCursor() {
	p.cursor = min(p.cursor, max(p.rows()-1, 0))
}

func (p *profilePage) handleKeys(msg tea.KeyMsg) tea.Cmd {
	k := p.env.keys
	switch {
	case key.Matches(msg, k.tab):
		p.section = (p.section + 1) % 2
		p.cursor = 0
	case key.Matches(msg, k.up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, k.down):
		if p.cursor < p.rows()-1 {
			p.cursor++
		}
	case key.Matches(msg, k.refresh):
		p.notice = ""
		return p.Init()
	case key.Matches(msg, k.edit):
		p.startEditing()
		return nil
	case key.Matches(msg, k.remove):
		return p.removeSelected()
	}
	return nil
}

func (p *profilePage) removeSelected() tea.Cmd {
	if p.cursor >= p.rows() {
		return nil
	}

	p.busy = true
	p.notice = ""
	id, e := p.id, p.env

	if p.section == sectionTickets {
		ticketID := p.tickets[p.cursor].ID
		return func() tea.Msg {
			err := e.API.Tickets.Delete(e.ctx, ticketID)
			return resultMsg(id, MsgActionDone, actionDone{verb: "release ticket", id: ticketID}, err)
		}
	}

	concertID := p.concerts[p.cursor].ID
	return func() tea.Msg {
		err := e.Concerts.DeleteConcert(e.ctx, concertID)
		return resultMsg(id, MsgActionDone, actionDone{verb: "delete concert", id: concertID}, err)
	}
}

func (p *profilePage) startEditing() {
	u := p.env.Session.User()
	if u == nil {
		return
	}
	p.editing = true
	p.notice = ""
	p.form = newForm(p.env.keys,
		fieldSpec{label: "Name", value: u.Name},
		fieldSpec{label: "Email", value: u.Email},
		fieldSpec{label: "About", value: u.Description},
		fieldSpec{label: "New avatar file", placeholder: "leave empty to keep"},
		fieldSpec{label: "Remove avatar (y/n)", value: "n"},
	)
}

func (p *profilePage) updateEditor(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.env.keys.back):
		p.editing = false
		return nil
	case key.Matches(msg, p.env.keys.submit):
		return p.saveProfile()
	case key.Matches(msg, p.env.keys.enter):
		if p.form.Last() {
			return p.saveProfile()
		}
		p.form.setFocus(p.form.focus + 1)
		return nil
	}
	return p.form.Update(msg)
}

// updateRequest sends only the fields that changed.
func (p *profilePage) updateRequest(current *models.User) models.UpdateUserRequest {
	var req models.UpdateUserRequest
	if v := p.form.Value(editName); v != current.Name {
		req.Name = &v
	}
	if v := p.form.Value(editEmail); v != current.Email {
		req.Email = &v
	}
	if v := p.form.Value(editDescription); v != current.Description {
		req.Description = &v
	}
	req.AvatarPath = p.form.Value(editAvatar)
	req.RemoveAvatar = strings.HasPrefix(strings.ToLower(p.form.Value(editRemoveAvatar)), "y")
	return req
}

func (p *profilePage) saveProfile() tea.Cmd {
	current := p.env.Session.User()
	if current == nil {
		return nil
	}

	req := p.updateRequest(current)
	if err := req.Validate(); err != nil {
		p.err = err.Error()
		return nil
	}

	p.busy = true
	p.err = ""
	id, e, before := p.id, p.env, *current
	return func() tea.Msg {
		updated, err := e.API.Users.Update(e.ctx, before.ID, req)
		if err == nil && updated != nil {
			err = e.Session.UpdateUser(models.PatchFrom(before, *updated))
		}
		return resultMsg(id, MsgProfileUpdated, nil, err)
	}
}

func (p *profilePage) View() string {
	var b strings.Builder
	b.WriteString(errorLine(p.err))
	if p.notice != "" {
		b.WriteString(styles.ok.Render(p.notice) + "\n\n")
	}

	u := p.env.Session.User()
	if u == nil {
		return b.String()
	}

	if p.editing {
		b.WriteString(styles.title.Render("Edit profile") + "\n")
		b.WriteString(p.form.View())
		if p.busy {
			b.WriteString(p.spinner.View() + " Saving...\n")
		}
		return b.String()
	}

	card := fmt.Sprintf("%s\n%s\n%s %s\n%s %s",
		styles.title.Render(u.Name),
		u.Email,
		styles.label.Render("Role:"), formatter.Admin(u),
		styles.label.Render("Avatar:"), formatter.AvatarURL(p.env.Host, u.Avatar),
	)
	if u.Description != "" {
		card += "\n\n" + u.Description
	}
	if u.CreatedAt != "" {
		card += fmt.Sprintf("\n%s %s", styles.label.Render("Member since:"), formatter.FormatDay(u.CreatedAt))
	}
	b.WriteString(styles.card.Render(card) + "\n\n")

	if p.loading > 0 {
		b.WriteString(p.spinner.View() + " Loading...\n\n")
	}

	b.WriteString(p.sectionHeader(sectionTickets, fmt.Sprintf("My tickets (%d)", len(p.tickets))))
	b.WriteString(errorLine(p.ticketsErr))
	for i, t := range p.tickets {
		item := ticketItem{ticket: t}
		b.WriteString(p.row(sectionTickets, i, fmt.Sprintf("%s · %s", item.Title(), item.Description())))
	}

	b.WriteString("\n" + p.sectionHeader(sectionConcerts, fmt.Sprintf("My concerts (%d)", len(p.concerts))))
	b.WriteString(errorLine(p.concertsErr))
	for i, c := range p.concerts {
		item := concertItem{concert: c}
		b.WriteString(p.row(sectionConcerts, i, fmt.Sprintf("%s · %s", item.Title(), item.Description())))
	}

	return b.String()
}

func (p *profilePage) sectionHeader(s profileSection, label string) string {
	if p.section == s {
		return styles.active.Render(label) + "\n"
	}
	return styles.label.Render(label) + "\n"
}

func (p *profilePage) row(s profileSection, i int, text string) string {
	if p.section == s && p.cursor == i {
		return styles.active.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}
