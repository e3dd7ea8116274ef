package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/encore/internal/models"
)

// UserService calls the /users endpoints.
type UserService struct {
	client *Client
}

func NewUserService(c *Client) *UserService {
	return &UserService{client: c}
}

// List fetches one page of users. Non-paginated arrays are accepted.
func (s *UserService) List(ctx context.Context, page int) (models.Page[models.User], error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, "/users", pageQuery(page), nil)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return decodePage[models.User](body)
}

// Get fetches a single user.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.User](body)
}

// Update changes a user's profile.
//
// Avatar uploads and removals go out as multipart POST with _method=PUT; everything else is a JSON PUT.
func (s *UserService) Update(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.User, error) {
	path := fmt.Sprintf("/users/%d", id)

	var (
		body []byte
		err  error
	)
	if req.Multipart() {
		form := req.Fields()
		var fields [][2]string
		for _, key := range []string{"_method", "name", "email", "description", "remove_avatar"} {
			if v, ok := form[key]; ok {
				fields = append(fields, [2]string{key, v})
			}
		}
		var files [][2]string
		if req.AvatarPath != "" {
			files = append(files, [2]string{"avatar", req.AvatarPath})
		}
		body, err = s.client.doMultipart(ctx, http.MethodPost, path, fields, files)
	} else {
		body, err = s.client.doJSON(ctx, http.MethodPut, path, nil, req)
	}
	if err != nil {
		return nil, err
	}

	user, err := decodeResource[models.User](body)
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		if w, err := models.UnmarshalResource[userEnvelope](body); err == nil && w.User != nil {
			return w.User, nil
		}
	}
	return user, nil
}

// userEnvelope is the {"message": "...", "user": {...}} form of an update response.
type userEnvelope struct {
	User *models.User `json:"user"`
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
	return err
}

// Tickets lists the tickets a user holds.
func (s *UserService) Tickets(ctx context.Context, id int64) ([]models.Ticket, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d/tickets", id), nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Ticket](body)
	return page.Data, err
}

// TicketCategories lists the categories of tickets a user holds.
func (s *UserService) TicketCategories(ctx context.Context, id int64) ([]models.TicketCategory, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d/ticket-categories", id), nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.TicketCategory](body)
	return page.Data, err
}
