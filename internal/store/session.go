package store

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// AuthAPI is the subset of [services.AuthService] the session needs.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
}

// SessionState is a copy of the session's fields at one moment.
type SessionState struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// authSnapshot is the persisted part of the session.
type authSnapshot struct {
	User            *models.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

// Session is the authentication store: current user, token and authenticated flag, mirrored to [Storage].
//
// The mutex guards state only; it is never held across a network call.
type Session struct {
	mu      sync.RWMutex
	api     AuthAPI
	storage Storage
	logger  *log.Logger

	user          *models.User
	token         string
	authenticated bool
	loading       bool
	err           string
}

// NewSession creates a session and rehydrates it from the "auth-storage" snapshot.
func NewSession(api AuthAPI, storage Storage, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	s := &Session{api: api, storage: storage, logger: logger}

	var snap authSnapshot
	if ok, err := loadJSON(storage, KeyAuthSnapshot, &snap); err != nil {
		logger.Warn("discarding unreadable session snapshot", "error", err)
	} else if ok {
		s.user, s.token, s.authenticated = snap.User, snap.Token, snap.IsAuthenticated
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SessionState{
		Token:           s.token,
		IsAuthenticated: s.authenticated,
		Loading:         s.loading,
		Error:           s.err,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Login authenticates with the API. On success the token, user and user id are persisted;
// on failure the error message is recorded and the session is left unauthenticated.
func (s *Session) Login(ctx context.Context, creds models.Credentials) error {
	s.begin()

	resp, err := s.api.Login(ctx, creds)
	if err == nil && resp.BearerToken() == "" {
		err = fmt.Errorf("%w: no token in login response", shared.ErrAuthFailed)
	}
	if err != nil {
		s.fail(services.Describe(err, err.Error()))
		return err
	}

	return s.establish(resp)
}

// Register creates an account and signs in with the returned token.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) error {
	if err := req.Validate(); err != nil {
		s.mu.Lock()
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}

	s.begin()

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.fail(services.Describe(err, "registration failed"))
		return err
	}

	return s.establish(resp)
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	s.loading = false
	s.authenticated = false
	s.err = msg
	s.mu.Unlock()
}

// establish records a successful login or registration.
func (s *Session) establish(resp *models.AuthResponse) error {
	token := resp.BearerToken()

	s.mu.Lock()
	s.user = resp.User
	s.token = token
	s.authenticated = token != ""
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	if token != "" {
		if err := s.storage.Set(KeyToken, token); err != nil {
			return err
		}
	}
	if resp.User != nil && resp.User.ID != 0 {
		if err := s.storage.Set(KeyUserID, resp.User.IDString()); err != nil {
			return err
		}
		if err := saveJSON(s.storage, KeyUser, resp.User); err != nil {
			return err
		}
	}

	s.logger.Debug("session established", "user_id", resp.User.IDString())
	return s.persist()
}

// Logout tells the API to revoke the token, then clears local state and storage whatever the outcome.
// The returned error reports a failed remote call only.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	remoteErr := s.api.Logout(ctx)
	if remoteErr != nil {
		s.logger.Warn("remote logout failed", "error", remoteErr)
	}

	if err := s.clear(); err != nil {
		return err
	}
	return remoteErr
}

// Expire clears the session without calling the API. Used when the API reports 401.
func (s *Session) Expire() {
	if err := s.clear(); err != nil {
		s.logger.Error("failed to clear expired session", "error", err)
	}
}

func (s *Session) clear() error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return s.storage.Delete(KeyToken, KeyAccessToken, KeyUserID, KeyID, KeyUser, KeyAuthSnapshot)
}

// CheckAuth reconciles the session with storage. A stored token or access_token means authenticated;
// a stored user or token replaces the in-memory one.
func (s *Session) CheckAuth() bool {
	token := StoredToken(s.storage)

	var stored *models.User
	if _, err := loadJSON(s.storage, KeyUser, &stored); err != nil {
		s.logger.Warn("ignoring unreadable stored user", "error", err)
		stored = nil
	}

	s.mu.Lock()
	if stored != nil {
		s.user = stored
	}
	if token != "" {
		s.token = token
	}
	s.authenticated = token != ""
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
	return token != ""
}

// Initialize restores the session when both a user and a token are stored.
func (s *Session) Initialize() bool {
	token, ok, err := s.storage.Get(KeyToken)
	if err != nil || !ok || token == "" {
		return false
	}

	var user *models.User
	if found, err := loadJSON(s.storage, KeyUser, &user); err != nil || !found || user == nil {
		if err != nil {
			s.logger.Warn("cannot initialize session", "error", err)
		}
		return false
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.authenticated = true
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
	return true
}

// IsAuthenticated reports the in-memory authenticated flag.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsAdmin reports whether a user is present and flagged as administrator.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Admin()
}

// UserID returns the current user's id.
func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0, false
	}
	return s.user.ID, true
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *models.User {
	return s.State().User
}

// BearerToken returns the token to send with API requests: the persisted one first, then the in-memory one.
func (s *Session) BearerToken() string {
	if token := StoredToken(s.storage); token != "" {
		return token
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UpdateUser shallow-merges patch into the current user and persists the result. It does nothing when signed out.
func (s *Session) UpdateUser(patch models.UserPatch) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil
	}
	merged := s.user.Merge(patch)
	s.user = &merged
	s.mu.Unlock()

	if err := saveJSON(s.storage, KeyUser, merged); err != nil {
		return err
	}
	return s.persist()
}

// ClearError drops the last error message.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *Session) persist() error {
	s.mu.RLock()
	snap := authSnapshot{User: s.user, Token: s.token, IsAuthenticated: s.authenticated}
	s.mu.RUnlock()
	return saveJSON(s.storage, KeyAuthSnapshot, snap)
}
