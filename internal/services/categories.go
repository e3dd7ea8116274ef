package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/encore/internal/models"
)

// TicketCategoryService calls the /ticket-categories endpoints.
type TicketCategoryService struct {
	client *Client
}

func NewTicketCategoryService(c *Client) *TicketCategoryService {
	return &TicketCategoryService{client: c}
}

func (s *TicketCategoryService) List(ctx context.Context) ([]models.TicketCategory, error) {
	body, err := s.client.doJSON(ctx, http.MethodGet, "/ticket-categories", nil, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage[models.TicketCategory](body)
	return page.Data, err
}

func (s *TicketCategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.TicketCategory, error) {
	body, err := s.client.doJSON(ctx, http.MethodPost, "/ticket-categories", nil, req)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.TicketCategory](body)
}

func (s *TicketCategoryService) Update(ctx context.Context, id int64, req models.CategoryRequest) (*models.TicketCategory, error) {
	body, err := s.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/ticket-categories/%d", id), nil, req)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.TicketCategory](body)
}

func (s *TicketCategoryService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/ticket-categories/%d", id), nil, nil)
	return err
}
