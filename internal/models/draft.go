package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/shared"
)

// ConcertDraft is a concert listing saved locally after a failed submission.
type ConcertDraft struct {
	ID        string
	City      string
	Place     string
	StartAt   string
	Payload   string // JSON-encoded [CreateConcertRequest]
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConcertDraft captures req so it can be retried later.
func NewConcertDraft(req CreateConcertRequest, cause error) (*ConcertDraft, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}

	now := time.Now().UTC()
	d := &ConcertDraft{
		ID:        shared.GenerateID(),
		City:      req.City,
		Place:     req.Place,
		StartAt:   req.StartAt,
		Payload:   string(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cause != nil {
		d.LastError = cause.Error()
	}
	return d, nil
}

// Identifier implements [Model].
func (d *ConcertDraft) Identifier() string { return d.ID }

// Timestamps implements [Model].
func (d *ConcertDraft) Timestamps() (time.Time, time.Time) { return d.CreatedAt, d.UpdatedAt }

// Validate implements [Model].
func (d *ConcertDraft) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: draft id is required", shared.ErrInvalidInput)
	}
	if d.Payload == "" {
		return fmt.Errorf("%w: draft payload is required", shared.ErrInvalidInput)
	}
	if !json.Valid([]byte(d.Payload)) {
		return fmt.Errorf("%w: draft payload is not valid JSON", shared.ErrInvalidInput)
	}
	return nil
}

// Request decodes the saved payload.
func (d *ConcertDraft) Request() (CreateConcertRequest, error) {
	var req CreateConcertRequest
	if err := json.Unmarshal([]byte(d.Payload), &req); err != nil {
		return req, fmt.Errorf("failed to decode draft %s: %w", d.ID, err)
	}
	return req, nil
}
