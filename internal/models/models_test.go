package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/encore/internal/shared"
)

func TestFlag(t *testing.T) {
	tt := []struct {
		input string
		want  Flag
	}{
		{`true`, true},
		{`1`, true},
		{`"1"`, true},
		{`"true"`, true},
		{`false`, false},
		{`0`, false},
		{`null`, false},
	}

	for _, tc := range tt {
		t.Run(tc.input, func(t *testing.T) {
			var u User
			if err := json.Unmarshal([]byte(`{"id":1,"is_admin":`+tc.input+`}`), &u); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if u.IsAdmin != tc.want {
				t.Errorf("IsAdmin = %v, want %v", u.IsAdmin, tc.want)
			}
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		var f Flag
		if err := json.Unmarshal([]byte(`"yes please"`), &f); err == nil {
			t.Error("expected error for unrecognized flag")
		}
	})

	t.Run("Admin on nil user", func(t *testing.T) {
		var u *User
		if u.Admin() {
			t.Error("nil user must not be admin")
		}
	})
}

func TestUserMerge(t *testing.T) {
	u := User{ID: 3, Name: "Ada", Email: "ada@example.com", Description: "bio"}
	name := "Ada L."
	avatar := "avatars/3.png"

	got := u.Merge(UserPatch{Name: &name, Avatar: &avatar})

	if got.Name != name || got.Avatar != avatar {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.Email != u.Email || got.Description != u.Description || got.ID != u.ID {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if u.Name != "Ada" {
		t.Error("Merge must not modify the receiver")
	}

	t.Run("PatchFrom round trip", func(t *testing.T) {
		p := PatchFrom(u, got)
		if p.Name == nil || p.Avatar == nil || p.Email != nil {
			t.Errorf("unexpected patch: %+v", p)
		}
		if !PatchFrom(u, u).Empty() {
			t.Error("identical users should produce an empty patch")
		}
	})
}

func TestPage(t *testing.T) {
	t.Run("Meta Envelope", func(t *testing.T) {
		body := `{"data":[{"id":1,"city":"Oslo","is_accepted":true}],"meta":{"current_page":2,"last_page":4,"per_page":1,"total":4}}`
		var p Page[Concert]
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(p.Data) != 1 || p.Data[0].City != "Oslo" {
			t.Fatalf("unexpected data: %+v", p.Data)
		}
		meta := p.Pagination(1)
		if meta.CurrentPage != 2 || meta.LastPage != 4 {
			t.Errorf("unexpected meta: %+v", meta)
		}
		if !meta.HasNext() || !meta.HasPrev() {
			t.Error("page 2 of 4 should have next and previous")
		}
	})

	t.Run("Flat Paginator", func(t *testing.T) {
		body := `{"current_page":3,"data":[{"id":9}],"last_page":5,"per_page":15,"total":70}`
		var p Page[User]
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if p.Meta == nil || p.Meta.CurrentPage != 3 || p.Meta.Total != 70 {
			t.Errorf("unexpected meta: %+v", p.Meta)
		}
	})

	t.Run("Bare Array", func(t *testing.T) {
		var p Page[User]
		if err := json.Unmarshal([]byte(`[{"id":1},{"id":2}]`), &p); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(p.Data) != 2 || p.Meta != nil {
			t.Fatalf("unexpected page: %+v", p)
		}
		meta := p.Pagination(2)
		want := PaginationMeta{CurrentPage: 2, LastPage: 1, PerPage: DefaultPerPage, Total: 2}
		if meta.CurrentPage != want.CurrentPage || meta.LastPage != want.LastPage || meta.PerPage != want.PerPage || meta.Total != want.Total {
			t.Errorf("Pagination() = %+v, want %+v", meta, want)
		}
	})

	t.Run("Nested Envelope", func(t *testing.T) {
		body := `{"success":true,"data":{"data":[{"id":4}],"meta":{"current_page":1,"last_page":1,"per_page":10,"total":1}}}`
		var p Page[Concert]
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(p.Data) != 1 || p.Meta == nil {
			t.Errorf("unexpected page: %+v", p)
		}
	})

	t.Run("Data Without Meta", func(t *testing.T) {
		var p Page[TicketCategory]
		if err := json.Unmarshal([]byte(`{"data":[{"id":1,"name":"VIP","price":"120.50"}]}`), &p); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if len(p.Data) != 1 || p.Data[0].Price == nil || *p.Data[0].Price != 120.5 {
			t.Errorf("unexpected categories: %+v", p.Data)
		}
	})

	t.Run("Invalid Data", func(t *testing.T) {
		var p Page[Concert]
		if err := json.Unmarshal([]byte(`{"data":"nope"}`), &p); err == nil {
			t.Error("expected error for string data")
		}
	})
}

func TestUnmarshalResource(t *testing.T) {
	t.Run("Wrapped", func(t *testing.T) {
		c, err := UnmarshalResource[Concert]([]byte(`{"success":true,"data":{"id":12,"city":"Bergen"}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID != 12 || c.City != "Bergen" {
			t.Errorf("unexpected concert: %+v", c)
		}
	})

	t.Run("Bare", func(t *testing.T) {
		c, err := UnmarshalResource[Concert]([]byte(`{"id":7,"city":"Riga","user_id":2}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.ID != 7 || c.UserID != 2 {
			t.Errorf("unexpected concert: %+v", c)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		if _, err := UnmarshalResource[Concert]([]byte(`not json`)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestFilters(t *testing.T) {
	concerts := []Concert{
		{ID: 1, IsAccepted: true, UserID: 5},
		{ID: 2, IsAccepted: false, UserID: 5},
		{ID: 3, IsAccepted: true, UserID: 6},
	}

	accepted := FilterAccepted(concerts)
	if len(accepted) != 2 {
		t.Fatalf("expected 2 accepted concerts, got %d", len(accepted))
	}
	for _, c := range accepted {
		if !c.Accepted() {
			t.Errorf("concert %d is not accepted", c.ID)
		}
	}

	owned := FilterOwned(concerts, 5)
	if len(owned) != 2 || owned[0].ID != 1 || owned[1].ID != 2 {
		t.Errorf("unexpected owned concerts: %+v", owned)
	}
}

func TestParseStart(t *testing.T) {
	for _, s := range []string{"2025-06-01 19:30:00", "2025-06-01T19:30", "2025-06-01T19:30:00Z", "2025-06-01T19:30:00.000000Z"} {
		t.Run(s, func(t *testing.T) {
			got, err := ParseStart(s)
			if err != nil {
				t.Fatalf("ParseStart(%q) error = %v", s, err)
			}
			if got.Year() != 2025 || got.Month() != 6 || got.Day() != 1 || got.Hour() != 19 {
				t.Errorf("ParseStart(%q) = %v", s, got)
			}
		})
	}

	if _, err := ParseStart("next friday"); err == nil {
		t.Error("expected error for free text")
	}
}

func TestRequests(t *testing.T) {
	t.Run("Register Validate", func(t *testing.T) {
		valid := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", PasswordConfirmation: "secret1"}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid request, got %v", err)
		}

		tt := []struct {
			name string
			req  RegisterRequest
		}{
			{"Short Name", RegisterRequest{Name: "A", Email: "a@b.io", Password: "secret1"}},
			{"Bad Email", RegisterRequest{Name: "Ada", Email: "ada@", Password: "secret1"}},
			{"Short Password", RegisterRequest{Name: "Ada", Email: "a@b.io", Password: "123"}},
			{"Mismatch", RegisterRequest{Name: "Ada", Email: "a@b.io", Password: "secret1", PasswordConfirmation: "secret2"}},
		}
		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if err := tc.req.Validate(); !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
			})
		}
	})

	t.Run("Register Fields", func(t *testing.T) {
		fields := RegisterRequest{Name: " Ada ", Email: "ada@example.com", Password: "secret1"}.Fields()
		if fields["name"] != "Ada" {
			t.Errorf("expected trimmed name, got %q", fields["name"])
		}
		if _, ok := fields["password_confirmation"]; ok {
			t.Error("empty confirmation should be omitted")
		}
	})

	t.Run("Create Concert Prices", func(t *testing.T) {
		req := NewCreateConcertRequest("Oslo", "Sentrum Scene", "2025-06-01T19:30", 4, map[int64]float64{3: 0, 1: 250})

		if len(req.Categories) != 2 || req.Categories[0] != 1 || req.Categories[1] != 3 {
			t.Errorf("expected sorted categories [1 3], got %v", req.Categories)
		}
		if _, ok := req.Prices[3]; ok {
			t.Error("zero price must not be sent")
		}
		if req.IsAccepted {
			t.Error("new concerts must not be accepted")
		}

		body, err := json.Marshal(req)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		prices := decoded["prices"].(map[string]any)
		if prices["1"] != 250.0 {
			t.Errorf("expected price 250 for category 1, got %v", prices["1"])
		}
		if decoded["is_accepted"] != false {
			t.Errorf("expected is_accepted false, got %v", decoded["is_accepted"])
		}
	})

	t.Run("Create Concert Validate", func(t *testing.T) {
		if err := NewCreateConcertRequest("Oslo", "Rockefeller", "2025-06-01 20:00", 1, nil).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := NewCreateConcertRequest("Oslo", "", "2025-06-01 20:00", 1, nil).Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for missing place, got %v", err)
		}
		if err := NewCreateConcertRequest("Oslo", "Rockefeller", "soon", 1, nil).Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for bad time, got %v", err)
		}
	})

	t.Run("Update User", func(t *testing.T) {
		if err := (UpdateUserRequest{}).Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected empty update to fail, got %v", err)
		}
		req := UpdateUserRequest{RemoveAvatar: true}
		if !req.Multipart() {
			t.Error("avatar removal must be sent as a form")
		}
		fields := req.Fields()
		if fields["_method"] != "PUT" || fields["remove_avatar"] != "1" {
			t.Errorf("unexpected fields: %v", fields)
		}
	})
}

func TestConcertDraft(t *testing.T) {
	req := NewCreateConcertRequest("Oslo", "Sentrum Scene", "2025-06-01T19:30", 4, map[int64]float64{1: 100})
	d, err := NewConcertDraft(req, errors.New("timeout"))
	if err != nil {
		t.Fatalf("NewConcertDraft() error = %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if d.LastError != "timeout" || d.Identifier() == "" {
		t.Errorf("unexpected draft: %+v", d)
	}

	decoded, err := d.Request()
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if decoded.City != "Oslo" || decoded.Prices[1] != 100 {
		t.Errorf("unexpected decoded request: %+v", decoded)
	}

	d.Payload = "{"
	if err := d.Validate(); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for corrupt payload, got %v", err)
	}
}
