// Raw access to the concert API for the `api` debugging commands
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// APIService makes raw HTTP requests through the shared [Client], returning the response whatever its status.
type APIService struct {
	client *Client
}

// NewAPIService creates a raw API service on top of c.
func NewAPIService(c *Client) *APIService {
	return &APIService{client: c}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	RequestID  string
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, request{method: http.MethodGet, path: path})
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.raw(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	})
}

func (a *APIService) raw(ctx context.Context, r request) (*APIResponse, error) {
	resp, err := a.client.send(ctx, r)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{
		StatusCode: resp.Status,
		Headers:    resp.Header,
		Body:       resp.Body,
		RequestID:  resp.RequestID,
	}

	var jsonData any
	if err := json.Unmarshal(resp.Body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
