package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shopfront/backend/internal/domain/shared"
)

// sortFields whitelists ORDER BY columns per table
type sortFields map[string]bool

var commonSortFields = sortFields{"id": true, "created_at": true, "updated_at": true}

func (s sortFields) with(fields ...string) sortFields {
	out := make(sortFields, len(s)+len(fields))
	for k := range s {
		out[k] = true
	}
	for _, f := range fields {
		out[f] = true
	}
	return out
}

// validateSortField returns field when whitelisted, else fallback
func validateSortField(field string, allowed sortFields, fallback string) string {
	field = strings.TrimSpace(field)
	if field != "" && allowed[field] {
		return field
	}
	return fallback
}

// validateSortOrder normalizes to ASC or DESC, defaulting to DESC
func validateSortOrder(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// paginate applies ordering and paging from the filter
func paginate(query *gorm.DB, filter shared.Filter, allowed sortFields, fallback string) *gorm.DB {
	f := filter.Normalized()
	column := validateSortField(f.OrderBy, allowed, fallback)
	query = query.Order(column + " " + validateSortOrder(f.OrderDir))
	if column != "id" {
		query = query.Order("id ASC")
	}
	return query.Offset(f.Offset()).Limit(f.PageSize)
}

// search adds a case-insensitive LIKE over the given columns
func search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// translate maps GORM's not-found error to the domain one
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// deleteByID deletes one row of model and reports ErrNotFound when absent
func deleteByID(db *gorm.DB, model any, id any) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
