package main

import (
	"net/url"
	"strconv"
)

// Pagination is the metadata returned along a paginated listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// PageRequest is a requested page. A zero value falls back to the defaults.
type PageRequest struct {
	Page  int
	Limit int
}

// normalize applies the configured defaults and bounds.
func (p PageRequest) normalize(config PaginationConfig) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = config.DefaultLimit
	}
	if config.MaxLimit > 0 && p.Limit > config.MaxLimit {
		p.Limit = config.MaxLimit
	}
	return p
}

// paginate slices an already ordered and fully materialized result.
func paginate[T any](items []T, p PageRequest) ([]T, Pagination) {
	total := len(items)
	meta := Pagination{Page: p.Page, Limit: p.Limit, TotalItems: total}
	if total == 0 {
		return []T{}, meta
	}
	meta.TotalPages = (total-1)/p.Limit + 1
	// checked before the offset is computed so it cannot overflow
	if p.Page > meta.TotalPages {
		return []T{}, meta
	}
	start := (p.Page - 1) * p.Limit
	end := start + min(p.Limit, total-start)
	return items[start:end], meta
}

// ParsePageRequest reads the page and limit query parameters.
func ParsePageRequest(q url.Values) (PageRequest, error) {
	var p PageRequest
	var err error
	if v := q.Get("page"); v != "" {
		if p.Page, err = strconv.Atoi(v); err != nil || p.Page < 1 {
			return p, newDomainError(ErrValidation, "page must be a positive number")
		}
	}
	if v := q.Get("limit"); v != "" {
		if p.Limit, err = strconv.Atoi(v); err != nil || p.Limit < 1 {
			return p, newDomainError(ErrValidation, "limit must be a positive number")
		}
	}
	return p, nil
}
