package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/encore/internal/models"
)

// TicketService calls the /tickets endpoints.
type TicketService struct {
	client *Client
}

func NewTicketService(c *Client) *TicketService {
	return &TicketService{client: c}
}

// Create buys a ticket in the given category.
func (s *TicketService) Create(ctx context.Context, req models.CreateTicketRequest) (*models.Ticket, error) {
	body, err := s.client.doJSON(ctx, http.MethodPost, "/tickets", nil, req)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.Ticket](body)
}

// Delete releases a ticket.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/tickets/%d", id), nil, nil)
	return err
}
