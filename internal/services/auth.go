package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/encore/internal/models"
)

// AuthService calls the login, register and logout endpoints.
type AuthService struct {
	client *Client
}

func NewAuthService(c *Client) *AuthService {
	return &AuthService{client: c}
}

// Login exchanges credentials for a bearer token and the user record.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	body, err := s.client.doJSON(ctx, http.MethodPost, "/login", nil, creds)
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

// Register creates an account. The form is multipart so an avatar can ride along.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	form := req.Fields()
	var fields [][2]string
	for _, key := range []string{"name", "email", "password", "password_confirmation", "description"} {
		if v, ok := form[key]; ok {
			fields = append(fields, [2]string{key, v})
		}
	}

	var files [][2]string
	if req.AvatarPath != "" {
		files = append(files, [2]string{"avatar", req.AvatarPath})
	}

	body, err := s.client.doMultipart(ctx, http.MethodPost, "/register", fields, files)
	if err != nil {
		return nil, err
	}
	return decodeAuth(body)
}

// Logout revokes the current token on the server.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.client.doJSON(ctx, http.MethodGet, "/logout", nil, nil)
	return err
}

func decodeAuth(body []byte) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Some deployments wrap the payload in "data".
	if resp.BearerToken() == "" && resp.User == nil {
		if wrapped, err := models.UnmarshalResource[models.AuthResponse](body); err == nil {
			resp = wrapped
		}
	}
	return &resp, nil
}
