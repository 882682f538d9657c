package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/erp/dashboard/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

type filterKind int

const (
	filterText filterKind = iota
	filterNumber
	filterFlag
)

// filterParam is a list filter read from the query string
type filterParam struct {
	key  string
	kind filterKind
}

// bindListQuery reads page, pageSize, search and the given filters.
// Empty filter parameters are ignored.
func bindListQuery(c *gin.Context, params ...filterParam) (shared.Query, error) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Query{}, err
	}
	q := req.Query()

	for _, p := range params {
		raw := strings.TrimSpace(c.Query(p.key))
		if raw == "" {
			continue
		}
		switch p.kind {
		case filterNumber:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return shared.Query{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%s must be a number", p.key))
			}
			q.Filters.Set(p.key, n)
		case filterFlag:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return shared.Query{}, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%s must be true or false", p.key))
			}
			if b {
				q.Filters.Set(p.key, true)
			}
		default:
			q.Filters.Set(p.key, raw)
		}
	}
	return q.Normalize(), nil
}
