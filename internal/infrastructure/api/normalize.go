package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/erp/dashboard/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// pageEnvelope is the list response: {data,totalCount,page,pageSize,totalPages,stats}
type pageEnvelope[T any] struct {
	Data       []T             `json:"data" validate:"dive"`
	TotalCount int             `json:"totalCount" validate:"gte=0"`
	Page       int             `json:"page" validate:"gte=1"`
	PageSize   int             `json:"pageSize" validate:"gte=1"`
	TotalPages int             `json:"totalPages" validate:"gte=0"`
	Stats      json.RawMessage `json:"stats"`
}

// paginationEnvelope is the shape of GET /backgroundjobs/history
type paginationEnvelope[T any] struct {
	Data       []T `json:"data" validate:"dive"`
	Pagination struct {
		CurrentPage int `json:"currentPage" validate:"gte=1"`
		PageSize    int `json:"pageSize" validate:"gte=1"`
		TotalItems  int `json:"totalItems" validate:"gte=0"`
		TotalPages  int `json:"totalPages" validate:"gte=0"`
	} `json:"pagination"`
}

func checkPageLength(n, pageSize int) error {
	if n > pageSize {
		return fmt.Errorf("%w: page holds %d items but pageSize is %d", ErrMalformedResponse, n, pageSize)
	}
	return nil
}

// decodePage normalizes a list response. S is the canonical stats type of the resource;
// its block is decoded strictly by decodeStats.
func decodePage[T any, S shared.Stats](body []byte, log *zap.Logger, resource string) (shared.PageResult[T], error) {
	var env pageEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return shared.PageResult[T]{}, fmt.Errorf("%w: %s page: %v", ErrMalformedResponse, resource, err)
	}
	if err := validate.Struct(env); err != nil {
		return shared.PageResult[T]{}, fmt.Errorf("%w: %s page: %v", ErrMalformedResponse, resource, err)
	}
	if err := checkPageLength(len(env.Data), env.PageSize); err != nil {
		return shared.PageResult[T]{}, err
	}

	result := shared.PageResult[T]{
		Items:      env.Data,
		TotalCount: env.TotalCount,
		Page:       env.Page,
		PageSize:   env.PageSize,
		TotalPages: env.TotalPages,
	}
	if result.Items == nil {
		result.Items = []T{}
	}

	if len(env.Stats) > 0 && !bytes.Equal(env.Stats, []byte("null")) {
		var stats S
		if err := decodeStats(env.Stats, &stats, log, resource); err != nil {
			return shared.PageResult[T]{}, err
		}
		result.Stats = stats
	}
	return result, nil
}

// decodePaginated normalizes the {data,pagination} shape into a PageResult
func decodePaginated[T any](body []byte, resource string) (shared.PageResult[T], error) {
	var env paginationEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return shared.PageResult[T]{}, fmt.Errorf("%w: %s page: %v", ErrMalformedResponse, resource, err)
	}
	if err := validate.Struct(env); err != nil {
		return shared.PageResult[T]{}, fmt.Errorf("%w: %s page: %v", ErrMalformedResponse, resource, err)
	}
	if err := checkPageLength(len(env.Data), env.Pagination.PageSize); err != nil {
		return shared.PageResult[T]{}, err
	}
	items := env.Data
	if items == nil {
		items = []T{}
	}
	return shared.PageResult[T]{
		Items:      items,
		TotalCount: env.Pagination.TotalItems,
		Page:       env.Pagination.CurrentPage,
		PageSize:   env.Pagination.PageSize,
		TotalPages: env.Pagination.TotalPages,
	}, nil
}

// decodeStats decodes a stats object accepting only the exact camelCase keys of v.
// encoding/json matches keys case-insensitively, so other casings are stripped
// first and logged as contract violations.
func decodeStats(raw json.RawMessage, v any, log *zap.Logger, resource string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("%w: %s stats: %v", ErrMalformedResponse, resource, err)
	}

	known := jsonFieldNames(reflect.TypeOf(v).Elem())
	var unknown []string
	for key := range fields {
		if !known[key] {
			unknown = append(unknown, key)
			delete(fields, key)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		log.Warn("Upstream stats contract violation: unexpected keys ignored",
			zap.String("resource", resource),
			zap.Strings("keys", unknown),
		)
	}

	filtered, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %s stats: %v", ErrMalformedResponse, resource, err)
	}
	if err := json.Unmarshal(filtered, v); err != nil {
		return fmt.Errorf("%w: %s stats: %v", ErrMalformedResponse, resource, err)
	}
	return nil
}

var fieldNameCache sync.Map // reflect.Type -> map[string]bool

// jsonFieldNames returns the json keys declared by struct type t
func jsonFieldNames(t reflect.Type) map[string]bool {
	if cached, ok := fieldNameCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	names := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = true
	}
	fieldNameCache.Store(t, names)
	return names
}
