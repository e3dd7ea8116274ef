package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/encore/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// to addresses the page that issued the command; results for a page that is no longer shown are dropped.
type Msg struct {
	kind MsgKind
	to   int
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgNavigate MsgKind = iota
	MsgAuthDone
	MsgLogoutDone
	MsgConcertsFetched
	MsgConcertFetched
	MsgCommentsFetched
	MsgCategoriesFetched
	MsgTicketsFetched
	MsgUsersFetched
	MsgConcertCreated
	MsgProfileUpdated
	MsgActionDone
)

// navigateMsg is the constructor for [MsgNavigate]
func navigateMsg(path string) Msg {
	return Msg{kind: MsgNavigate, data: path}
}

// navigate returns a command that emits [MsgNavigate].
func navigate(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg(path) }
}

// resultMsg is the constructor for every request result addressed to page to.
func resultMsg(to int, kind MsgKind, data any, err error) Msg {
	return Msg{kind: kind, to: to, data: data, err: err}
}

// actionDone describes the outcome of a mutation (buy, release, accept, delete, comment).
type actionDone struct {
	verb string
	id   int64
}

// concertsFetched carries a page of concerts fetched outside the store.
type concertsFetched struct {
	concerts []models.Concert
	meta     models.PaginationMeta
}

// usersFetched carries a page of users.
type usersFetched struct {
	users []models.User
	meta  models.PaginationMeta
}
