package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultPerPage is assumed when a list response carries no pagination metadata.
const DefaultPerPage = 10

// PaginationMeta describes one page of a paginated list.
type PaginationMeta struct {
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       int    `json:"total"`
	From        *int   `json:"from,omitempty"`
	To          *int   `json:"to,omitempty"`
	Path        string `json:"path,omitempty"`
}

// DefaultPagination is the pagination state before anything has been fetched.
func DefaultPagination() PaginationMeta {
	return PaginationMeta{CurrentPage: 1, LastPage: 1, PerPage: DefaultPerPage, Total: 0}
}

// HasNext reports whether a later page exists.
func (m PaginationMeta) HasNext() bool {
	return m.CurrentPage < m.LastPage
}

// HasPrev reports whether an earlier page exists.
func (m PaginationMeta) HasPrev() bool {
	return m.CurrentPage > 1
}

// Page is one page of a list response.
//
// It decodes from any of:
//
//	{"data": [...], "meta": {...}}
//	{"current_page": 1, "data": [...], "last_page": 3, ...}
//	{"data": [...]}
//	[...]
type Page[T any] struct {
	Data []T
	Meta *PaginationMeta
}

// UnmarshalJSON implements [json.Unmarshaler].
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		p.Data, p.Meta = nil, nil
		return nil
	}

	if b[0] == '[' {
		p.Meta = nil
		return json.Unmarshal(b, &p.Data)
	}

	var envelope struct {
		Data        json.RawMessage `json:"data"`
		Meta        *PaginationMeta `json:"meta"`
		CurrentPage *int            `json:"current_page"`
		LastPage    int             `json:"last_page"`
		PerPage     int             `json:"per_page"`
		Total       int             `json:"total"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}

	data := bytes.TrimSpace(envelope.Data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		p.Data = nil
	case data[0] == '[':
		if err := json.Unmarshal(data, &p.Data); err != nil {
			return err
		}
	case data[0] == '{':
		// {"data": {"data": [...], "meta": {...}}}
		var inner Page[T]
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		p.Data, p.Meta = inner.Data, inner.Meta
		return nil
	default:
		return fmt.Errorf("unexpected list payload %s", data)
	}

	p.Meta = envelope.Meta
	if p.Meta == nil && envelope.CurrentPage != nil {
		p.Meta = &PaginationMeta{
			CurrentPage: *envelope.CurrentPage,
			LastPage:    envelope.LastPage,
			PerPage:     envelope.PerPage,
			Total:       envelope.Total,
		}
	}
	return nil
}

// MarshalJSON writes the page in the {"data", "meta"} envelope form.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	data := p.Data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(struct {
		Data []T             `json:"data"`
		Meta *PaginationMeta `json:"meta,omitempty"`
	}{data, p.Meta})
}

// Pagination returns the page's metadata, or a single-page fallback for the requested page when the response had none.
func (p Page[T]) Pagination(requested int) PaginationMeta {
	if p.Meta != nil {
		return *p.Meta
	}
	if requested < 1 {
		requested = 1
	}
	return PaginationMeta{CurrentPage: requested, LastPage: 1, PerPage: DefaultPerPage, Total: len(p.Data)}
}

// UnmarshalResource decodes a single record sent either bare or wrapped as {"data": {...}}.
func UnmarshalResource[T any](b []byte) (T, error) {
	var out T

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			data := bytes.TrimSpace(envelope.Data)
			if len(data) > 0 && data[0] == '{' {
				if err := json.Unmarshal(data, &out); err != nil {
					return out, err
				}
				return out, nil
			}
		}
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, err
	}
	return out, nil
}
