package store

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

type fakeAuthAPI struct {
	loginResp    *models.AuthResponse
	loginErr     error
	registerResp *models.AuthResponse
	registerErr  error
	logoutErr    error

	logoutCalls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func successfulLogin() *models.AuthResponse {
	return &models.AuthResponse{
		Token: "7|token",
		User:  &models.User{ID: 7, Name: "Ada", Email: "ada@example.com", IsAdmin: true},
	}
}

func mustGet(t *testing.T, s Storage, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("storage get %s: %v", key, err)
	}
	return v, ok
}

func TestSessionLogin(t *testing.T) {
	t.Run("Success Persists Token", func(t *testing.T) {
		storage := NewMemoryStorage()
		s := NewSession(&fakeAuthAPI{loginResp: successfulLogin()}, storage, nil)

		if err := s.Login(context.Background(), models.Credentials{Email: "ada@example.com", Password: "secret1"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if token, _ := mustGet(t, storage, KeyToken); token != "7|token" {
			t.Errorf("expected token in storage, got %q", token)
		}
		if id, _ := mustGet(t, storage, KeyUserID); id != "7" {
			t.Errorf("expected user_id 7, got %q", id)
		}
		if _, ok := mustGet(t, storage, KeyAuthSnapshot); !ok {
			t.Error("expected auth snapshot to be written")
		}

		st := s.State()
		if !st.IsAuthenticated || st.Token != "7|token" || st.User == nil || st.Loading {
			t.Errorf("unexpected state: %+v", st)
		}
		if !s.IsAdmin() {
			t.Error("expected admin user")
		}
		if id, ok := s.UserID(); !ok || id != 7 {
			t.Errorf("UserID() = %d, %v", id, ok)
		}
	})

	t.Run("Failure Records Message", func(t *testing.T) {
		storage := NewMemoryStorage()
		api := &fakeAuthAPI{loginErr: &services.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
		s := NewSession(api, storage, nil)

		err := s.Login(context.Background(), models.Credentials{Email: "a@b.io", Password: "nope"})
		if err == nil {
			t.Fatal("expected error")
		}

		st := s.State()
		if st.IsAuthenticated || st.Error != "Invalid credentials" || st.Loading {
			t.Errorf("unexpected state: %+v", st)
		}
		if _, ok := mustGet(t, storage, KeyToken); ok {
			t.Error("token must not be stored after a failed login")
		}

		s.ClearError()
		if s.State().Error != "" {
			t.Error("expected error to be cleared")
		}
	})

	t.Run("Missing Token Is A Failure", func(t *testing.T) {
		s := NewSession(&fakeAuthAPI{loginResp: &models.AuthResponse{User: &models.User{ID: 1}}}, NewMemoryStorage(), nil)

		err := s.Login(context.Background(), models.Credentials{Email: "a@b.io", Password: "x"})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if s.IsAuthenticated() {
			t.Error("session must stay unauthenticated")
		}
	})

	t.Run("Generic Error Falls Back To Text", func(t *testing.T) {
		s := NewSession(&fakeAuthAPI{loginErr: errors.New("dial tcp: refused")}, NewMemoryStorage(), nil)
		_ = s.Login(context.Background(), models.Credentials{})
		if s.State().Error != "dial tcp: refused" {
			t.Errorf("unexpected error message %q", s.State().Error)
		}
	})
}

func TestSessionLoginEmptyBody(t *testing.T) {
	s := NewSession(&fakeAuthAPI{loginErr: &services.APIError{Status: http.StatusInternalServerError}}, NewMemoryStorage(), nil)
	_ = s.Login(context.Background(), models.Credentials{})
	if got := s.State().Error; got != "request failed with status code 500" {
		t.Errorf("expected the error text, got %q", got)
	}
}

func TestSessionRegister(t *testing.T) {
	t.Run("Validation Stops Request", func(t *testing.T) {
		api := &fakeAuthAPI{registerResp: successfulLogin()}
		s := NewSession(api, NewMemoryStorage(), nil)

		err := s.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "bad", Password: "1"})
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if s.State().Error == "" {
			t.Error("expected validation message on state")
		}
	})

	t.Run("Success Signs In", func(t *testing.T) {
		storage := NewMemoryStorage()
		s := NewSession(&fakeAuthAPI{registerResp: successfulLogin()}, storage, nil)

		err := s.Register(context.Background(), models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !s.IsAuthenticated() {
			t.Error("expected authenticated session")
		}
		if user, _ := mustGet(t, storage, KeyUser); user == "" {
			t.Error("expected user to be stored")
		}
	})

	t.Run("Validation Errors From API", func(t *testing.T) {
		api := &fakeAuthAPI{registerErr: &services.APIError{
			Status: http.StatusUnprocessableEntity,
			Errors: map[string][]string{"email": {"The email has already been taken."}},
		}}
		s := NewSession(api, NewMemoryStorage(), nil)

		_ = s.Register(context.Background(), models.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
		if s.State().Error != "The email has already been taken." {
			t.Errorf("unexpected error message %q", s.State().Error)
		}
	})
}

func TestSessionLogout(t *testing.T) {
	for _, tc := range []struct {
		name      string
		remoteErr error
	}{
		{"Remote Success", nil},
		{"Remote Failure", errors.New("network down")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			api := &fakeAuthAPI{loginResp: successfulLogin(), logoutErr: tc.remoteErr}
			s := NewSession(api, storage, nil)

			if err := s.Login(context.Background(), models.Credentials{Email: "a@b.io", Password: "secret1"}); err != nil {
				t.Fatalf("login failed: %v", err)
			}
			_ = storage.Set(KeyAccessToken, "legacy")
			_ = storage.Set(KeyID, "7")

			err := s.Logout(context.Background())
			if (err != nil) != (tc.remoteErr != nil) {
				t.Errorf("Logout() error = %v, remote error %v", err, tc.remoteErr)
			}

			for _, key := range []string{KeyToken, KeyAccessToken, KeyUserID, KeyID, KeyUser, KeyAuthSnapshot} {
				if _, ok := mustGet(t, storage, key); ok {
					t.Errorf("expected %s to be removed", key)
				}
			}

			st := s.State()
			if st.IsAuthenticated || st.User != nil || st.Token != "" || st.Loading {
				t.Errorf("expected cleared state, got %+v", st)
			}
			if api.logoutCalls != 1 {
				t.Errorf("expected one remote logout, got %d", api.logoutCalls)
			}
		})
	}

	t.Run("Expire Skips Remote Call", func(t *testing.T) {
		storage := NewMemoryStorage()
		api := &fakeAuthAPI{loginResp: successfulLogin()}
		s := NewSession(api, storage, nil)
		_ = s.Login(context.Background(), models.Credentials{})

		s.Expire()

		if api.logoutCalls != 0 {
			t.Error("Expire must not call the API")
		}
		if _, ok := mustGet(t, storage, KeyToken); ok {
			t.Error("expected token to be removed")
		}
	})
}

func TestSessionCheckAuth(t *testing.T) {
	t.Run("Access Token Counts", func(t *testing.T) {
		storage := NewMemoryStorage()
		_ = storage.Set(KeyAccessToken, "legacy")
		s := NewSession(&fakeAuthAPI{}, storage, nil)

		if !s.CheckAuth() {
			t.Error("expected access_token to authenticate")
		}
		if s.BearerToken() != "legacy" {
			t.Errorf("expected legacy bearer token, got %q", s.BearerToken())
		}
	})

	t.Run("Stored User Wins", func(t *testing.T) {
		storage := NewMemoryStorage()
		_ = storage.Set(KeyToken, "t")
		_ = storage.Set(KeyUser, `{"id":3,"name":"Stored","is_admin":1}`)
		s := NewSession(&fakeAuthAPI{}, storage, nil)

		if !s.CheckAuth() {
			t.Fatal("expected authenticated")
		}
		if u := s.User(); u == nil || u.Name != "Stored" {
			t.Errorf("expected stored user, got %+v", u)
		}
		if !s.IsAdmin() {
			t.Error("is_admin 1 should count as admin")
		}
	})

	t.Run("No Token", func(t *testing.T) {
		storage := NewMemoryStorage()
		_ = storage.Set(KeyUser, `{"id":3}`)
		s := NewSession(&fakeAuthAPI{}, storage, nil)

		if s.CheckAuth() {
			t.Error("expected unauthenticated without token")
		}
		if s.IsAuthenticated() {
			t.Error("flag should follow storage")
		}
	})

	t.Run("Corrupt User Ignored", func(t *testing.T) {
		storage := NewMemoryStorage()
		_ = storage.Set(KeyToken, "t")
		_ = storage.Set(KeyUser, `{not json`)
		s := NewSession(&fakeAuthAPI{}, storage, nil)

		if !s.CheckAuth() {
			t.Error("token alone should authenticate")
		}
		if s.User() != nil {
			t.Error("corrupt user must not be loaded")
		}
	})
}

func TestSessionInitialize(t *testing.T) {
	storage := NewMemoryStorage()
	s := NewSession(&fakeAuthAPI{}, storage, nil)

	if s.Initialize() {
		t.Fatal("expected false with empty storage")
	}

	_ = storage.Set(KeyToken, "t")
	if s.Initialize() {
		t.Fatal("expected false without stored user")
	}

	_ = storage.Set(KeyUser, `{"id":5,"name":"Ada"}`)
	if !s.Initialize() {
		t.Fatal("expected true with user and token")
	}
	if !s.IsAuthenticated() {
		t.Error("expected authenticated after initialize")
	}

	t.Run("Snapshot Rehydrates New Session", func(t *testing.T) {
		restored := NewSession(&fakeAuthAPI{}, storage, nil)
		if !restored.IsAuthenticated() || restored.State().Token != "t" {
			t.Errorf("expected snapshot to restore session, got %+v", restored.State())
		}
	})
}

func TestSessionUpdateUser(t *testing.T) {
	t.Run("Signed Out Is A No-op", func(t *testing.T) {
		storage := NewMemoryStorage()
		s := NewSession(&fakeAuthAPI{}, storage, nil)
		name := "X"

		if err := s.UpdateUser(models.UserPatch{Name: &name}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := mustGet(t, storage, KeyUser); ok {
			t.Error("nothing should be stored when signed out")
		}
	})

	t.Run("Merges And Persists", func(t *testing.T) {
		storage := NewMemoryStorage()
		s := NewSession(&fakeAuthAPI{loginResp: successfulLogin()}, storage, nil)
		_ = s.Login(context.Background(), models.Credentials{})

		avatar := "avatars/7.png"
		if err := s.UpdateUser(models.UserPatch{Avatar: &avatar}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		u := s.User()
		if u.Avatar != avatar || u.Name != "Ada" {
			t.Errorf("unexpected user %+v", u)
		}
		stored, _ := mustGet(t, storage, KeyUser)
		if stored == "" || !strings.Contains(stored, avatar) {
			t.Errorf("expected stored user to include avatar, got %s", stored)
		}
	})
}
