package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// ErrDraftNotFound is returned when no draft has the requested id.
var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository implements models.Repository[*models.ConcertDraft] for unsent concert listings.
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new DraftRepository with the given database connection
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Create inserts a draft, generating an ID when the draft has none.
func (r *DraftRepository) Create(draft *models.ConcertDraft) error {
	if draft.ID == "" {
		draft.ID = shared.GenerateID()
	}
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	if err := draft.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO concert_drafts (id, city, place, start_at, payload, last_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		draft.ID,
		draft.City,
		draft.Place,
		draft.StartAt,
		draft.Payload,
		nullString(draft.LastError),
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draft: %w", err)
	}

	return nil
}

// Get retrieves a draft by ID
func (r *DraftRepository) Get(id string) (*models.ConcertDraft, error) {
	query := `
		SELECT id, city, place, start_at, payload, last_error, created_at, updated_at
		FROM concert_drafts
		WHERE id = ?
	`

	draft, err := scanDraft(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return draft, err
}

// Update rewrites a draft's payload and last error.
func (r *DraftRepository) Update(draft *models.ConcertDraft) error {
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	draft.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE concert_drafts
		SET city = ?, place = ?, start_at = ?, payload = ?, last_error = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		draft.City,
		draft.Place,
		draft.StartAt,
		draft.Payload,
		nullString(draft.LastError),
		draft.UpdatedAt,
		draft.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	return expectOne(result, fmt.Errorf("%w: %s", ErrDraftNotFound, draft.ID))
}

// Delete removes a draft by ID
func (r *DraftRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM concert_drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return expectOne(result, fmt.Errorf("%w: %s", ErrDraftNotFound, id))
}

// List retrieves drafts oldest first. Supported criteria: "city" (string), "failed" (bool), "limit" (int).
func (r *DraftRepository) List(criteria map[string]any) ([]*models.ConcertDraft, error) {
	query := `
		SELECT id, city, place, start_at, payload, last_error, created_at, updated_at
		FROM concert_drafts
		WHERE 1 = 1
	`

	args := []any{}

	if city, ok := criteria["city"].(string); ok && city != "" {
		query += " AND city = ?"
		args = append(args, city)
	}

	if failed, ok := criteria["failed"].(bool); ok && failed {
		query += " AND last_error IS NOT NULL AND last_error != ''"
	}

	query += " ORDER BY created_at ASC, id ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.ConcertDraft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return drafts, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(s scanner) (*models.ConcertDraft, error) {
	var (
		d         models.ConcertDraft
		lastError sql.NullString
	)

	err := s.Scan(&d.ID, &d.City, &d.Place, &d.StartAt, &d.Payload, &lastError, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan draft: %w", err)
	}

	d.LastError = lastError.String
	return &d, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ models.Repository[*models.ConcertDraft] = (*DraftRepository)(nil)
