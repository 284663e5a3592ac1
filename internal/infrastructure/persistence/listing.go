package persistence

import (
	"strings"

	"github.com/workforce/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortSpec maps the sort keys a list endpoint accepts to columns. Keys that
// are not listed fall back to the default column, so user input never
// reaches the ORDER BY clause.
type sortSpec struct {
	columns  map[string]string
	fallback string
}

var templateSort = sortSpec{
	columns: map[string]string{
		"name":       "name",
		"category":   "category",
		"status":     "status",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
	fallback: "created_at",
}

var submissionSort = sortSpec{
	columns: map[string]string{
		"status":       "status",
		"user_id":      "user_id",
		"submitted_at": "submitted_at",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	},
	fallback: "created_at",
}

// column resolves a sort key, ignoring surrounding blanks
func (s sortSpec) column(key string) string {
	if col, ok := s.columns[strings.TrimSpace(key)]; ok {
		return col
	}
	return s.fallback
}

// clause builds the ORDER BY expression. id breaks ties so pages do not
// overlap when the sort column repeats.
func (s sortSpec) clause(filter shared.Filter) string {
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc") {
		dir = "ASC"
	}
	return s.column(filter.OrderBy) + " " + dir + ", id " + dir
}

func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}
