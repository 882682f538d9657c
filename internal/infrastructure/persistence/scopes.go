package persistence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/dashboard/internal/domain/shared"
	"gorm.io/gorm"
)

// paginate applies OFFSET/LIMIT for the page of q
func paginate(q shared.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q = q.Normalize()
		return db.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)
	}
}

// likePattern builds a case-insensitive LIKE pattern, escaping wildcards in s
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(strings.TrimSpace(s)))
	return "%" + s + "%"
}

// filterString returns a filter value as text, "" when absent
func filterString(f shared.Filters, key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// filterBool reports whether the filter is set to a true value
func filterBool(f shared.Filters, key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

// filterInt returns a numeric filter, false when absent or invalid
func filterInt(f shared.Filters, key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}
