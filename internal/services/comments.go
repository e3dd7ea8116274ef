package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/encore/internal/models"
)

// CommentService calls the /comments endpoints. Listing lives on [ConcertService.Comments].
type CommentService struct {
	client *Client
}

func NewCommentService(c *Client) *CommentService {
	return &CommentService{client: c}
}

func (s *CommentService) Create(ctx context.Context, req models.CommentRequest) (*models.Comment, error) {
	body, err := s.client.doJSON(ctx, http.MethodPost, "/comments", nil, req)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.Comment](body)
}

func (s *CommentService) Update(ctx context.Context, id int64, req models.CommentRequest) (*models.Comment, error) {
	body, err := s.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/comments/%d", id), nil, req)
	if err != nil {
		return nil, err
	}
	return decodeResource[models.Comment](body)
}

func (s *CommentService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil)
	return err
}
