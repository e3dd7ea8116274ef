package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/encore/internal/shared"
	tu "github.com/desertthunder/encore/internal/testing"
)

func TestClient(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := NewClient(ClientOpts{})
		if c.BaseURL() != DefaultBaseURL {
			t.Errorf("expected default base URL, got %s", c.BaseURL())
		}
		if c.httpClient.Timeout != DefaultTimeout {
			t.Errorf("expected default timeout, got %v", c.httpClient.Timeout)
		}
	})

	t.Run("Trailing Slash Trimmed", func(t *testing.T) {
		c := NewClient(ClientOpts{BaseURL: "http://localhost:8000/api/"})
		if got := c.endpoint("/concerts", nil); got != "http://localhost:8000/api/concerts" {
			t.Errorf("endpoint() = %s", got)
		}
	})

	t.Run("Bearer Token Attached When Present", func(t *testing.T) {
		api := tu.NewAPIServer(t)
		api.JSON(http.MethodGet, "/concerts/1", http.StatusOK, map[string]any{"id": 1})

		token := "12|secret"
		c := NewClient(ClientOpts{BaseURL: api.URL, Token: func() string { return token }})
		if _, err := NewConcertService(c).Get(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := api.Last(t)
		if got := req.Header.Get("Authorization"); got != "Bearer 12|secret" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if req.Header.Get("Accept") != "application/json" {
			t.Errorf("expected JSON accept header, got %q", req.Header.Get("Accept"))
		}
		if req.Header.Get(headerRequestID) == "" {
			t.Error("expected request id header")
		}

		token = ""
		if _, err := NewConcertService(c).Get(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := api.Last(t).Header.Get("Authorization"); got != "" {
			t.Errorf("expected no authorization header without a token, got %q", got)
		}
	})

	t.Run("Unauthorized Hook", func(t *testing.T) {
		api := tu.NewAPIServer(t)
		api.JSON(http.MethodGet, "/users/1", http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})

		called := 0
		c := NewClient(ClientOpts{BaseURL: api.URL, OnUnauthorized: func() { called++ }})

		_, err := NewUserService(c).Get(context.Background(), 1)
		if !IsUnauthorized(err) {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected error to wrap ErrNotAuthenticated, got %v", err)
		}
		if called != 1 {
			t.Errorf("expected hook to run once, ran %d times", called)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		api := tu.NewAPIServer(t)
		api.Handle(http.MethodGet, "/concerts", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		})

		c := NewClient(ClientOpts{BaseURL: api.URL, Timeout: 20 * time.Millisecond})
		_, err := NewConcertService(c).List(context.Background(), 1, 0)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if got := Describe(err, "fallback"); got != "the server took too long to respond" {
			t.Errorf("Describe() = %q", got)
		}
	})
}

func TestAPIError(t *testing.T) {
	t.Run("Validation Errors", func(t *testing.T) {
		body := []byte(`{"message":"The given data was invalid.","errors":{"password":["The password must be at least 6 characters."],"email":["The email has already been taken.","The email must be valid."]}}`)
		apiErr := parseAPIError(http.StatusUnprocessableEntity, body, "req-1")

		msgs := apiErr.Messages()
		want := []string{
			"The email has already been taken.",
			"The email must be valid.",
			"The password must be at least 6 characters.",
		}
		if len(msgs) != len(want) {
			t.Fatalf("expected %d messages, got %v", len(want), msgs)
		}
		for i := range want {
			if msgs[i] != want[i] {
				t.Errorf("message %d = %q, want %q", i, msgs[i], want[i])
			}
		}

		if !errors.Is(apiErr, shared.ErrValidation) {
			t.Error("expected 422 to unwrap to ErrValidation")
		}
		if !IsValidation(apiErr) {
			t.Error("expected IsValidation to be true")
		}
		if got := Describe(apiErr, "fallback"); got != strings.Join(want, ", ") {
			t.Errorf("Describe() = %q", got)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusNotFound, []byte(`{"message":"Not Found"}`), "")
		if !IsNotFound(apiErr) {
			t.Error("expected IsNotFound to be true")
		}
		if IsNotFound(fmt.Errorf("wrapped: %w", shared.ErrAPIRequest)) {
			t.Error("expected plain errors not to be treated as 404")
		}
	})

	t.Run("Error Field Used When Message Missing", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusBadRequest, []byte(`{"error":"Invalid credentials"}`), "")
		if apiErr.Message != "Invalid credentials" {
			t.Errorf("expected message from error field, got %q", apiErr.Message)
		}
		if got := Describe(apiErr, "login failed"); got != "Invalid credentials" {
			t.Errorf("Describe() = %q", got)
		}
	})

	t.Run("Single String Field Error", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusUnprocessableEntity, []byte(`{"errors":{"city":"required"}}`), "")
		if msgs := apiErr.Messages(); len(msgs) != 1 || msgs[0] != "required" {
			t.Errorf("unexpected messages: %v", msgs)
		}
	})

	t.Run("Non JSON Body", func(t *testing.T) {
		apiErr := parseAPIError(http.StatusInternalServerError, []byte("<html>oops</html>"), "")
		if apiErr.Message != "" {
			t.Errorf("expected empty message, got %q", apiErr.Message)
		}
		if !errors.Is(apiErr, shared.ErrServiceUnavailable) {
			t.Error("expected 5xx to unwrap to ErrServiceUnavailable")
		}
		if got := Describe(apiErr, "fallback"); got != "fallback" {
			t.Errorf("Describe() = %q", got)
		}
		if got := apiErr.Error(); got != "request failed with status code 500" {
			t.Errorf("Error() = %q", got)
		}
	})

	t.Run("Status Sentinels", func(t *testing.T) {
		tt := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, shared.ErrNotAuthenticated},
			{http.StatusForbidden, shared.ErrForbidden},
			{http.StatusNotFound, shared.ErrAPIRequest},
			{http.StatusBadGateway, shared.ErrServiceUnavailable},
		}
		for _, tc := range tt {
			t.Run(http.StatusText(tc.status), func(t *testing.T) {
				if err := (&APIError{Status: tc.status}); !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err.Unwrap())
				}
			})
		}
	})

	t.Run("Describe Fallbacks", func(t *testing.T) {
		if got := Describe(nil, "fallback"); got != "fallback" {
			t.Errorf("Describe(nil) = %q", got)
		}
		if got := Describe(errors.New("boom"), "fallback"); got != "boom" {
			t.Errorf("Describe(boom) = %q", got)
		}
		if got := Describe(errors.New(""), "fallback"); got != "fallback" {
			t.Errorf("Describe(empty) = %q", got)
		}
	})
}
