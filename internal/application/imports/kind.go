// Package imports validates workbook uploads and queues them as background jobs.
package imports

import (
	"fmt"
	"strings"

	"github.com/erp/dashboard/internal/domain/bulk"
)

// Kind is an upload flow. Its value is the path segment of the queue endpoint.
type Kind string

const (
	KindProducts    Kind = "products"
	KindStock       Kind = "stock"
	KindSales       Kind = "sales"
	KindCreditNotes Kind = "credit-notes"
	KindPurchases   Kind = "purchases"
	KindTransfers   Kind = "transfers"
)

// AllKinds lists every upload flow in menu order
var AllKinds = []Kind{KindProducts, KindStock, KindSales, KindCreditNotes, KindPurchases, KindTransfers}

// StoreRequirement describes which store selections a flow needs
type StoreRequirement int

const (
	StoreNone StoreRequirement = iota
	StoreSingle
	StorePair
)

// ParseKind parses a flow name, case-insensitively
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown import kind %q", s)
	}
	return k, nil
}

// IsValid reports whether k is a known flow
func (k Kind) IsValid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Endpoint returns the queue path for the flow
func (k Kind) Endpoint() string {
	return "/backgroundjobs/" + string(k) + "/queue"
}

// Stores returns the store selections the flow needs
func (k Kind) Stores() StoreRequirement {
	switch k {
	case KindStock, KindSales, KindCreditNotes, KindPurchases:
		return StoreSingle
	case KindTransfers:
		return StorePair
	default:
		return StoreNone
	}
}

// RequiresStore reports whether a single store must be selected
func (k Kind) RequiresStore() bool {
	return k.Stores() == StoreSingle
}

// IsStockInitial reports whether the flow is the one-time initial stock load
func (k Kind) IsStockInitial() bool {
	return k == KindStock
}

// JobType returns the job type the server records for the flow
func (k Kind) JobType() bulk.JobType {
	switch k {
	case KindProducts:
		return bulk.JobTypeProducts
	case KindStock:
		return bulk.JobTypeStock
	case KindSales:
		return bulk.JobTypeSales
	case KindCreditNotes:
		return bulk.JobTypeCreditNotes
	case KindPurchases:
		return bulk.JobTypePurchases
	case KindTransfers:
		return bulk.JobTypeTransfers
	default:
		return ""
	}
}

// Label returns a human readable flow name
func (k Kind) Label() string {
	return k.JobType().Label()
}
