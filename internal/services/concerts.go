package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/encore/internal/models"
)

// ConcertService calls the /concerts endpoints.
type ConcertService struct {
	client *Client
}

func NewConcertService(c *Client) *ConcertService {
	return &ConcertService{client: c}
}

// List fetches one page of concerts. perPage <= 0 leaves the page size to the server.
func (s *ConcertService) List(ctx context.Context, page, perPage int) (models.Page[models.Concert], error) {
	query := pageQuery(page)
	if perPage > 0 {
		query.Set("per_page", fmt.Sprint(perPage))
	}

	body, err := s.client.doJSON(ctx, http.MethodGet, "/concerts", query, nil)
	if err != nil {
		return models.Page[models.Concert]{}, err
	}
	return decodePage[models.Concert](body)
}

// Get fetches a concert with its categories and tickets.
func (s *ConcertService) Get(ctx context.Context, id int64) (*models.Concert, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, concertPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.Concert](body)
}

// Create submits a listing for moderation. Attachments switch the request to multipart.
//
// The API answers with {"success": true, "data": {"id": ...}} or the bare record; either way
// the returned concert carries the new id.
func (s *ConcertService) Create(ctx context.Context, req models.CreateConcertRequest) (*models.Concert, error) {
	var (
		body []byte
		err  error
	)
	if len(req.Attachments) > 0 {
		files := make([][2]string, 0, len(req.Attachments))
		for _, path := range req.Attachments {
			files = append(files, [2]string{"attachments[]", path})
		}
		body, err = s.client.doMultipart(ctx, http.MethodPost, "/concerts", req.Fields(), files)
	} else {
		body, err = s.client.doJSON(ctx, http.MethodPost, "/concerts", nil, req)
	}
	if err != nil {
		return nil, err
	}

	concert, err := decodeResource[models.Concert](body)
	if err != nil {
		return nil, err
	}
	if concert.ID == 0 {
		return nil, fmt.Errorf("failed to create concert: response carried no id")
	}
	return concert, nil
}

// Update edits a concert's details.
func (s *ConcertService) Update(ctx context.Context, id int64, req models.UpdateConcertRequest) (*models.Concert, error) {
	body, err := s.client.doJSON(ctx, http.MethodPut, concertPath(id), nil, req)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.Concert](body)
}

// Delete removes a concert.
func (s *ConcertService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.doJSON(ctx, http.MethodDelete, concertPath(id), nil, nil)
	return err
}

// Accept approves a concert for the public listing.
func (s *ConcertService) Accept(ctx context.Context, id int64) error {
	_, err := s.client.doJSON(ctx, http.MethodPost, concertPath(id)+"/accept", nil, struct{}{})
	return err
}

// Comments lists the comments on a concert.
func (s *ConcertService) Comments(ctx context.Context, id int64) ([]models.Comment, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, concertPath(id)+"/comments", nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.Comment](body)
	return page.Data, err
}

// Owner fetches the user who created a concert.
func (s *ConcertService) Owner(ctx context.Context, id int64) (*models.User, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, concertPath(id)+"/user", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.User](body)
}

func concertPath(id int64) string {
	return "/concerts/" + url.PathEscape(fmt.Sprint(id))
}
