package models

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/encore/internal/shared"
)

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// Credentials is the body of POST /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return fmt.Errorf("%w: email and password are required", shared.ErrValidation)
	}
	return nil
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
	Message     string `json:"message,omitempty"`
}

// BearerToken returns whichever token field the API populated.
func (r AuthResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// RegisterRequest is sent as a multipart form to POST /register.
type RegisterRequest struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	Description          string
	AvatarPath           string // optional file to upload as "avatar"
}

// Validate applies the registration form rules.
func (r RegisterRequest) Validate() error {
	var problems []string
	if len(strings.TrimSpace(r.Name)) < minNameLength {
		problems = append(problems, fmt.Sprintf("name must be at least %d characters", minNameLength))
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		problems = append(problems, "email address is invalid")
	}
	if len(r.Password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if r.PasswordConfirmation != "" && r.PasswordConfirmation != r.Password {
		problems = append(problems, "passwords do not match")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Fields returns the text parts of the registration form.
func (r RegisterRequest) Fields() map[string]string {
	fields := map[string]string{
		"name":     strings.TrimSpace(r.Name),
		"email":    strings.TrimSpace(r.Email),
		"password": r.Password,
	}
	if r.PasswordConfirmation != "" {
		fields["password_confirmation"] = r.PasswordConfirmation
	}
	if r.Description != "" {
		fields["description"] = r.Description
	}
	return fields
}

// UpdateUserRequest changes profile fields. A new avatar or avatar removal forces a multipart upload.
type UpdateUserRequest struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Description  *string `json:"description,omitempty"`
	AvatarPath   string  `json:"-"`
	RemoveAvatar bool    `json:"-"`
}

// Multipart reports whether the request has to be sent as a form.
func (r UpdateUserRequest) Multipart() bool {
	return r.AvatarPath != "" || r.RemoveAvatar
}

// Fields returns the text parts of the form, including the PUT override.
func (r UpdateUserRequest) Fields() map[string]string {
	fields := map[string]string{"_method": "PUT"}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.RemoveAvatar {
		fields["remove_avatar"] = "1"
	}
	return fields
}

// Validate rejects empty updates and malformed emails.
func (r UpdateUserRequest) Validate() error {
	if r.Name == nil && r.Email == nil && r.Description == nil && !r.Multipart() {
		return fmt.Errorf("%w: nothing to update", shared.ErrValidation)
	}
	if r.Name != nil && len(strings.TrimSpace(*r.Name)) < minNameLength {
		return fmt.Errorf("%w: name must be at least %d characters", shared.ErrValidation, minNameLength)
	}
	if r.Email != nil && !emailPattern.MatchString(strings.TrimSpace(*r.Email)) {
		return fmt.Errorf("%w: email address is invalid", shared.ErrValidation)
	}
	return nil
}

// CreateConcertRequest is the body of POST /concerts.
type CreateConcertRequest struct {
	City        string            `json:"city"`
	Place       string            `json:"place"`
	StartAt     string            `json:"start_at"`
	UserID      int64             `json:"user_id"`
	IsAccepted  bool              `json:"is_accepted"`
	Categories  []int64           `json:"categories,omitempty"`
	Prices      map[int64]float64 `json:"prices,omitempty"`
	Attachments []string          `json:"-"`
}

// NewCreateConcertRequest builds a listing for review. Every key of prices selects a category;
// only positive prices are sent.
func NewCreateConcertRequest(city, place, startAt string, userID int64, prices map[int64]float64) CreateConcertRequest {
	req := CreateConcertRequest{
		City:    strings.TrimSpace(city),
		Place:   strings.TrimSpace(place),
		StartAt: strings.TrimSpace(startAt),
		UserID:  userID,
	}
	if len(prices) == 0 {
		return req
	}

	req.Prices = make(map[int64]float64)
	for id, price := range prices {
		req.Categories = append(req.Categories, id)
		if price > 0 {
			req.Prices[id] = price
		}
	}
	slices.Sort(req.Categories)
	return req
}

// Validate requires city, place, a parseable start time and an owner.
func (r CreateConcertRequest) Validate() error {
	switch {
	case r.City == "":
		return fmt.Errorf("%w: city is required", shared.ErrValidation)
	case r.Place == "":
		return fmt.Errorf("%w: place is required", shared.ErrValidation)
	case r.StartAt == "":
		return fmt.Errorf("%w: start time is required", shared.ErrValidation)
	case r.UserID == 0:
		return fmt.Errorf("%w: could not determine the user id", shared.ErrValidation)
	}
	if _, err := ParseStart(r.StartAt); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return nil
}

// Fields returns the form encoding used when attachments are uploaded.
func (r CreateConcertRequest) Fields() [][2]string {
	fields := [][2]string{
		{"city", r.City},
		{"place", r.Place},
		{"start_at", r.StartAt},
		{"user_id", strconv.FormatInt(r.UserID, 10)},
		{"is_accepted", "0"},
	}
	for _, id := range r.Categories {
		fields = append(fields, [2]string{"categories[]", strconv.FormatInt(id, 10)})
		if price, ok := r.Prices[id]; ok {
			fields = append(fields, [2]string{fmt.Sprintf("prices[%d]", id), strconv.FormatFloat(price, 'f', -1, 64)})
		}
	}
	return fields
}

// UpdateConcertRequest is the body of PUT /concerts/{id}.
type UpdateConcertRequest struct {
	City    *string `json:"city,omitempty"`
	Place   *string `json:"place,omitempty"`
	StartAt *string `json:"start_at,omitempty"`
}

// CreateTicketRequest is the body of POST /tickets.
type CreateTicketRequest struct {
	ConcertID        int64 `json:"concert_id"`
	TicketCategoryID int64 `json:"ticket_category_id"`
}

// CommentRequest is the body of POST /comments and PUT /comments/{id}.
type CommentRequest struct {
	ConcertID int64  `json:"concert_id,omitempty"`
	Content   string `json:"content"`
}

// Validate requires non-blank content.
func (r CommentRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: comment is empty", shared.ErrValidation)
	}
	return nil
}

// CategoryRequest is the body of POST /ticket-categories and PUT /ticket-categories/{id}.
type CategoryRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// Validate requires a name and a non-negative price.
func (r CategoryRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	if r.Price != nil && *r.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", shared.ErrValidation)
	}
	return nil
}
