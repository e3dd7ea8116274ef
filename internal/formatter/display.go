package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/dustin/go-humanize"
)

const missing = "—"

// FormatDateTime renders a timestamp as "02.01.2006 15:04", or returns it unchanged when unparseable.
func FormatDateTime(s string) string {
	if strings.TrimSpace(s) == "" {
		return missing
	}
	t, err := models.ParseStart(s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006 15:04")
}

// FormatDay renders a timestamp as "2 January 2006".
func FormatDay(s string) string {
	if strings.TrimSpace(s) == "" {
		return missing
	}
	t, err := models.ParseStart(s)
	if err != nil {
		return s
	}
	return t.Format("2 January 2006")
}

// RelativeTime renders s relative to now ("3 days from now", "2 hours ago").
func RelativeTime(s string, now time.Time) string {
	t, err := models.ParseStart(s)
	if err != nil {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatPrice renders a price with thousands separators, e.g. "$1,250.50".
func FormatPrice(p *models.Amount) string {
	if p == nil {
		return missing
	}
	return "$" + humanize.CommafWithDigits(float64(*p), 2)
}

// CategoryLabel is "Name ($price)" or just the name when unpriced.
func CategoryLabel(c models.TicketCategory) string {
	if c.Price == nil {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, FormatPrice(c.Price))
}

// Status is "accepted" or "pending".
func Status(c models.Concert) string {
	if c.Accepted() {
		return "accepted"
	}
	return "pending"
}

// Count renders n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// AvatarURL resolves a user's avatar against the API host.
//
// Empty avatars fall back to [Placeholder]; absolute http(s) URLs are kept as is.
func AvatarURL(host, avatar string) string {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return Placeholder
	}
	if strings.HasPrefix(avatar, "http") {
		return avatar
	}
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(avatar, "/")
}

// Admin renders the administrator flag.
func Admin(u *models.User) string {
	if u.Admin() {
		return "admin"
	}
	return "user"
}
