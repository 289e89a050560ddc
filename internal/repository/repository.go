// Package repository is the persistence adapter: one interface per table family with a
// gorm implementation. Every error leaving this package is classified with apperr.FromDB.
package repository

import (
	"inkwell/internal/apperr"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage builds a window from a 1-based page number.
func NewPage(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Limit: size, Offset: (page - 1) * size}
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	limit := p.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	return q.Limit(limit).Offset(p.Offset)
}

// Visibility restricts moderated rows (comments, replies) to what a viewer may see:
// approved rows, plus the viewer's own rows, or everything for admins.
type Visibility struct {
	ViewerID uint
	All      bool
}

func (v Visibility) apply(q *gorm.DB) *gorm.DB {
	if v.All {
		return q
	}
	if v.ViewerID == 0 {
		return q.Where("is_approved = ?", true)
	}
	return q.Where("(is_approved = ? OR user_id = ?)", true, v.ViewerID)
}

func dbErr(err error) error {
	return apperr.FromDB(err)
}

// countRow is the scan target for GROUP BY count queries.
type countRow struct {
	ID    uint
	Count int64
}
