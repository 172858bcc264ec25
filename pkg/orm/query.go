// Package orm layers paginated queries over gorm.
package orm

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ordersync/ordersync/pkg/response"
)

// Query builds a filtered, paginated gorm query.
type Query struct {
	db    *gorm.DB
	page  int
	limit int
}

// New starts a query on the given gorm handle.
func New(db *gorm.DB) *Query {
	return &Query{db: db, page: 1, limit: 10}
}

// Where appends a condition.
func (q *Query) Where(cond string, args ...interface{}) *Query {
	q.db = q.db.Where(cond, args...)
	return q
}

// Order appends an ORDER BY clause.
func (q *Query) Order(clause string) *Query {
	q.db = q.db.Order(clause)
	return q
}

// Paginate sets the page window. Values below 1 are clamped.
func (q *Query) Paginate(page, limit int) *Query {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q.page, q.limit = page, limit
	return q
}

// GetWithPagination runs the query into dest and returns the pagination
// block describing the full result set.
func (q *Query) GetWithPagination(dest interface{}) (response.Pagination, error) {
	var total int64
	if err := q.db.Count(&total).Error; err != nil {
		return response.Pagination{}, fmt.Errorf("orm: count: %w", err)
	}

	offset := (q.page - 1) * q.limit
	if err := q.db.Offset(offset).Limit(q.limit).Find(dest).Error; err != nil {
		return response.Pagination{}, fmt.Errorf("orm: find: %w", err)
	}

	pages := int((total + int64(q.limit) - 1) / int64(q.limit))
	return response.Pagination{
		Page:  q.page,
		Limit: q.limit,
		Total: total,
		Pages: pages,
	}, nil
}
