package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/routes"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
)

const (
	createCity = iota
	createPlace
	createStart
	createFixed // first price input
)

// concertCreatePage collects city, place, start time and a price per ticket category.
// Categories left empty or at zero are not offered.
type concertCreatePage struct {
	env        *env
	id         int
	spinner    spinner.Model
	categories []models.TicketCategory
	form       form
	loading    bool
	busy       bool
	err        string
}

func newConcertCreatePage(e *env) *concertCreatePage {
	p := &concertCreatePage{env: e, id: e.newID(), spinner: e.newSpinner(), loading: true}
	p.form = p.buildForm(nil)
	return p
}

func (p *concertCreatePage) buildForm(categories []models.TicketCategory) form {
	specs := []fieldSpec{
		{label: "City"},
		{label: "Place", placeholder: "Venue name"},
		{label: "Starts at", placeholder: "2006-01-02 20:00"},
	}
	for _, c := range categories {
		label := "Price: " + c.Name
		if c.Price != nil {
			label += " (suggested " + formatter.FormatPrice(c.Price) + ")"
		}
		specs = append(specs, fieldSpec{label: label, placeholder: "0 to skip"})
	}
	return newForm(p.env.keys, specs...)
}

func (p *concertCreatePage) Title() string { return "New concert" }
func (p *concertCreatePage) Typing() bool  { return true }

func (p *concertCreatePage) Help() []key.Binding {
	return []key.Binding{p.env.keys.next, p.env.keys.submit, p.env.keys.back}
}

func (p *concertCreatePage) Init() tea.Cmd {
	id, e := p.id, p.env
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		categories, err := e.API.Categories.List(e.ctx)
		return resultMsg(id, MsgCategoriesFetched, categories, err)
	})
}

func (p *concertCreatePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading && !p.busy {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		switch {
		case key.Matches(msg, p.env.keys.back):
			return p, navigate(routes.Main)
		case key.Matches(msg, p.env.keys.submit):
			return p, p.submit()
		case key.Matches(msg, p.env.keys.enter):
			if p.form.Last() {
				return p, p.submit()
			}
			p.form.setFocus(p.form.focus + 1)
			return p, nil
		}
		return p, p.form.Update(msg)

	case Msg:
		switch msg.kind {
		case MsgCategoriesFetched:
			p.loading = false
			if msg.err != nil {
				p.err = services.Describe(msg.err, "failed to load ticket categories")
				return p, nil
			}
			city, place, start := p.form.Value(createCity), p.form.Value(createPlace), p.form.Value(createStart)
			p.categories, _ = msg.data.([]models.TicketCategory)
			p.form = p.buildForm(p.categories)
			p.form.Set(createCity, city)
			p.form.Set(createPlace, place)
			p.form.Set(createStart, start)
			return p, nil

		case MsgConcertCreated:
			p.busy = false
			if msg.err != nil {
				p.err = services.Describe(msg.err, "failed to create concert")
				if saved, ok := msg.data.(string); ok && saved != "" {
					p.err += fmt.Sprintf(" (saved as draft %s)", saved)
				}
				return p, nil
			}
			c := msg.data.(*models.Concert)
			return p, navigate(routes.Build(routes.ConcertDetail, "id", strconv.FormatInt(c.ID, 10)))
		}
	}
	return p, nil
}

// request builds the create payload from the form. The owner is the signed-in user.
func (p *concertCreatePage) request() (models.CreateConcertRequest, error) {
	userID, ok := p.env.Session.UserID()
	if !ok {
		return models.CreateConcertRequest{}, shared.ErrNotAuthenticated
	}

	prices := make(map[int64]float64)
	for i, c := range p.categories {
		raw := p.form.Value(createFixed + i)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || v < 0 {
			return models.CreateConcertRequest{}, fmt.Errorf("%w: price for %s must be a positive number", shared.ErrValidation, c.Name)
		}
		prices[c.ID] = v
	}

	start := p.form.Value(createStart)
	if t, err := models.ParseStart(start); err == nil {
		start = t.Format("2006-01-02 15:04:05")
	}

	req := models.NewCreateConcertRequest(p.form.Value(createCity), p.form.Value(createPlace), start, userID, prices)
	return req, req.Validate()
}

func (p *concertCreatePage) submit() tea.Cmd {
	req, err := p.request()
	if err != nil {
		p.err = err.Error()
		return nil
	}

	p.busy = true
	p.err = ""
	id, e := p.id, p.env
	return tea.Batch(p.spinner.Tick, func() tea.Msg {
		concert, err := e.API.Concerts.Create(e.ctx, req)
		if err != nil {
			return resultMsg(id, MsgConcertCreated, saveDraft(e, req, err), err)
		}
		return resultMsg(id, MsgConcertCreated, concert, nil)
	})
}

// saveDraft stores req when the API could not be reached, returning the draft id or "".
func saveDraft(e *env, req models.CreateConcertRequest, cause error) string {
	if e.Drafts == nil || !tasks.Draftable(cause) {
		return ""
	}
	draft, err := models.NewConcertDraft(req, cause)
	if err == nil {
		err = e.Drafts.Create(draft)
	}
	if err != nil {
		e.Logger.Error("failed to save concert draft", "error", err)
		return ""
	}
	return draft.ID
}

func (p *concertCreatePage) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Submit a concert") + "\n")
	b.WriteString(styles.help.Render("New concerts are reviewed by a moderator before they are listed.") + "\n\n")
	b.WriteString(errorLine(p.err))
	if p.loading {
		b.WriteString(p.spinner.View() + " Loading ticket categories...\n\n")
	}
	b.WriteString(p.form.View())
	if p.busy {
		b.WriteString(p.spinner.View() + " Submitting...\n")
	}
	return b.String()
}
