package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/encore/internal/formatter"
	"github.com/desertthunder/encore/internal/models"
)

var (
	_ list.Item = concertItem{}
	_ list.Item = userItem{}
	_ list.Item = ticketItem{}
	_ list.Item = menuItem{}
)

// concertItem wraps [models.Concert] to implement [list.Item].
type concertItem struct {
	concert models.Concert
}

func (i concertItem) FilterValue() string { return i.concert.Title() }
func (i concertItem) Title() string       { return i.concert.Title() }
func (i concertItem) Description() string {
	parts := []string{formatter.FormatDateTime(i.concert.StartAt), formatter.Status(i.concert)}
	if i.concert.User != nil && i.concert.User.Name != "" {
		parts = append(parts, i.concert.User.Name)
	}
	return strings.Join(parts, " • ")
}

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user models.User
}

func (i userItem) FilterValue() string { return i.user.Name + " " + i.user.Email }
func (i userItem) Title() string       { return i.user.Name }
func (i userItem) Description() string {
	return fmt.Sprintf("#%d • %s • %s", i.user.ID, i.user.Email, formatter.Admin(&i.user))
}

// ticketItem wraps [models.Ticket] to implement [list.Item].
type ticketItem struct {
	ticket models.Ticket
}

func (i ticketItem) FilterValue() string { return i.Title() }
func (i ticketItem) Title() string {
	if i.ticket.Concert != nil {
		return i.ticket.Concert.Title()
	}
	return fmt.Sprintf("Ticket #%d", i.ticket.ID)
}
func (i ticketItem) Description() string {
	var parts []string
	if i.ticket.Number > 0 {
		parts = append(parts, fmt.Sprintf("No. %d", i.ticket.Number))
	}
	if c := i.ticket.Category; c != nil {
		parts = append(parts, formatter.CategoryLabel(*c))
	}
	if i.ticket.Concert != nil {
		parts = append(parts, formatter.FormatDateTime(i.ticket.Concert.StartAt))
	}
	return strings.Join(parts, " • ")
}

// menuItem is an entry of the home page menu.
type menuItem struct {
	label string
	hint  string
	path  string
}

func (i menuItem) FilterValue() string { return i.label }
func (i menuItem) Title() string       { return i.label }
func (i menuItem) Description() string { return i.hint }

func newList(items []list.Item, title string, e *env) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetSize(e.listSize())
	return l
}

func concertItems(concerts []models.Concert) []list.Item {
	items := make([]list.Item, len(concerts))
	for i, c := range concerts {
		items[i] = concertItem{concert: c}
	}
	return items
}
