package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// startLayouts are the timestamp formats the API has been seen to emit for start_at.
var startLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseStart parses a concert start time in any of the layouts the API uses.
func ParseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Amount is a price the API may encode as a number or a decimal string.
type Amount float64

// UnmarshalJSON implements [json.Unmarshaler].
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s", data)
	}
	*a = Amount(v)
	return nil
}

// TicketCategory is a named price tier for a concert.
type TicketCategory struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       *Amount `json:"price,omitempty"`
}

// Concert is a listing created by a user and accepted by a moderator.
type Concert struct {
	ID               int64            `json:"id"`
	City             string           `json:"city"`
	Place            string           `json:"place"`
	StartAt          string           `json:"start_at"`
	IsAccepted       Flag             `json:"is_accepted"`
	UserID           int64            `json:"user_id"`
	User             *User            `json:"user,omitempty"`
	TicketCategories []TicketCategory `json:"ticket_categories,omitempty"`
	Tickets          []Ticket         `json:"tickets,omitempty"`
}

// Accepted reports whether a moderator approved the concert.
func (c Concert) Accepted() bool {
	return bool(c.IsAccepted)
}

// Start parses StartAt.
func (c Concert) Start() (time.Time, error) {
	return ParseStart(c.StartAt)
}

// Title is the short label used in lists.
func (c Concert) Title() string {
	return c.City + ", " + c.Place
}

// Ticket is a seat bought for a concert.
type Ticket struct {
	ID               int64           `json:"id"`
	Number           int             `json:"number,omitempty"`
	TicketCategoryID int64           `json:"ticket_category_id,omitempty"`
	Category         *TicketCategory `json:"category,omitempty"`
	Concert          *Concert        `json:"concert,omitempty"`
	CreatedAt        string          `json:"created_at,omitempty"`
}

// Comment is a remark left on a concert.
type Comment struct {
	ID        int64  `json:"id"`
	ConcertID int64  `json:"concert_id"`
	UserID    int64  `json:"user_id"`
	Content   string `json:"content"`
	User      *User  `json:"user,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FilterAccepted returns the concerts whose acceptance flag is set.
func FilterAccepted(concerts []Concert) []Concert {
	out := make([]Concert, 0, len(concerts))
	for _, c := range concerts {
		if c.Accepted() {
			out = append(out, c)
		}
	}
	return out
}

// FilterOwned returns the concerts created by the given user.
func FilterOwned(concerts []Concert, userID int64) []Concert {
	out := make([]Concert, 0)
	for _, c := range concerts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// MarshalJSON keeps the numeric form the API sent.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}
