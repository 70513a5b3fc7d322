// Package common defines the primitive shared types used across all layers
// of docrisk: identifiers, pagination, and sort parameters.  Nothing in this
// package carries behaviour beyond normalisation and JSON shape.
package common

import (
	"github.com/google/uuid"
)

// ID is a string alias for a UUID v4 identifier.
type ID string

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == "" }

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether the order is one of the accepted values.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Pagination carries page parameters for list requests.  Page numbers are
// 1-based; PageSize is clamped to [1, MaxPageSize] by Normalize.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

const (
	// DefaultPageSize is applied when a request omits page_size.
	DefaultPageSize = 20

	// MaxPageSize is the hard upper bound on page_size.
	MaxPageSize = 100
)

// Normalize returns a copy with defaults applied and bounds enforced.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the zero-based row offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages computes the page count for a given total row count.
func (p Pagination) TotalPages(total int64) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	pages := int(total) / p.PageSize
	if int(total)%p.PageSize != 0 {
		pages++
	}
	return pages
}
