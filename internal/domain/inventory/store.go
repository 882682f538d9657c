package inventory

import (
	"strings"

	"github.com/erp/dashboard/internal/domain/shared"
)

// Store is a selling location. Code is the key used in uploads and filters.
type Store struct {
	ID              int    `json:"id"`
	Code            string `json:"code" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Address         string `json:"address,omitempty"`
	Active          bool   `json:"active"`
	HasInitialStock bool   `json:"hasInitialStock"`
}

// ErrStockInitialDone is returned when a store already received its one-time initial stock load
var ErrStockInitialDone = shared.NewDomainError("STOCK_INITIAL_DONE", "Store already has initial stock loaded")

// CanAcceptStockInitial reports whether the one-time initial stock import is still allowed
func (s Store) CanAcceptStockInitial() error {
	if s.HasInitialStock {
		return ErrStockInitialDone
	}
	return nil
}

// Label is "CODE - Name", the form used by store selectors
func (s Store) Label() string {
	return s.Code + " - " + s.Name
}

// FindStore looks up a store by code, case-insensitively
func FindStore(stores []Store, code string) (Store, bool) {
	for _, s := range stores {
		if strings.EqualFold(s.Code, code) {
			return s, true
		}
	}
	return Store{}, false
}

// StockInitialValidation is the server verdict for a store's initial stock import
type StockInitialValidation struct {
	CanPerformStockInitial bool   `json:"canPerformStockInitial"`
	ValidationMessage      string `json:"validationMessage,omitempty"`
}
