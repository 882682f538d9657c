package models

import (
	"time"

	"github.com/erp/dashboard/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CustomerModel is a buyer referenced by sales
type CustomerModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Document string `gorm:"type:varchar(20);uniqueIndex"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// SaleModel is the persistence model for trade.Sale
type SaleModel struct {
	BaseModel
	SaleNumber   string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	SaleDate     time.Time       `gorm:"not null;index"`
	CustomerID   *uint           `gorm:"index"`
	Customer     *CustomerModel  `gorm:"foreignKey:CustomerID"`
	StoreID      uint            `gorm:"not null;index"`
	Store        StoreModel      `gorm:"foreignKey:StoreID"`
	ItemCount    int             `gorm:"not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ImportSource string          `gorm:"type:varchar(50)"`
	Lines        []SaleLineModel `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the model. Customer and Store must be preloaded.
func (m *SaleModel) ToDomain() trade.Sale {
	s := trade.Sale{
		ID:           int(m.ID),
		SaleNumber:   m.SaleNumber,
		SaleDate:     m.SaleDate,
		StoreName:    m.Store.Name,
		ItemCount:    m.ItemCount,
		Total:        m.Total,
		ImportSource: m.ImportSource,
	}
	if m.Customer != nil {
		s.CustomerName = m.Customer.Name
	}
	return s
}

// SaleLineModel is one product line of a sale
type SaleLineModel struct {
	BaseModel
	SaleID    uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Product   ProductModel    `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string {
	return "sale_lines"
}
