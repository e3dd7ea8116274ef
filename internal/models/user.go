package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is a boolean the API may encode as true/false, 1/0 or their string forms.
type Flag bool

// UnmarshalJSON implements [json.Unmarshaler].
func (f *Flag) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(raw) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", data)
	}
	return nil
}

// User is an account on the platform.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsAdmin     Flag   `json:"is_admin"`
	Avatar      string `json:"avatar,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Admin reports whether the user carries the administrator flag.
func (u *User) Admin() bool {
	return u != nil && bool(u.IsAdmin)
}

// IDString returns the user id in the form it is persisted under "user_id".
func (u *User) IDString() string {
	if u == nil {
		return ""
	}
	return strconv.FormatInt(u.ID, 10)
}

// UserPatch holds the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Description *string `json:"description,omitempty"`
	IsAdmin     *Flag   `json:"is_admin,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil && p.Description == nil && p.IsAdmin == nil
}

// Merge returns a copy of u with the non-nil fields of p applied.
func (u User) Merge(p UserPatch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
	return u
}

// PatchFrom builds the patch that turns the current user into updated.
func PatchFrom(current, updated User) UserPatch {
	var p UserPatch
	if current.Name != updated.Name {
		p.Name = &updated.Name
	}
	if current.Email != updated.Email {
		p.Email = &updated.Email
	}
	if current.Avatar != updated.Avatar {
		p.Avatar = &updated.Avatar
	}
	if current.Description != updated.Description {
		p.Description = &updated.Description
	}
	if current.IsAdmin != updated.IsAdmin {
		p.IsAdmin = &updated.IsAdmin
	}
	return p
}

// MarshalJSON writes the flag as a JSON boolean.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}
