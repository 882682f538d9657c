package models

import (
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StoreModel is the persistence model for inventory.Store
type StoreModel struct {
	BaseModel
	Code            string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name            string `gorm:"type:varchar(100);not null"`
	Address         string `gorm:"type:varchar(200)"`
	Active          bool   `gorm:"not null"`
	HasInitialStock bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the model
func (m *StoreModel) ToDomain() inventory.Store {
	return inventory.Store{
		ID:              int(m.ID),
		Code:            m.Code,
		Name:            m.Name,
		Address:         m.Address,
		Active:          m.Active,
		HasInitialStock: m.HasInitialStock,
	}
}

// InventoryItemModel is the stock of one product in one store
type InventoryItemModel struct {
	BaseModel
	ProductID    uint            `gorm:"not null;uniqueIndex:idx_item_product_store"`
	Product      ProductModel    `gorm:"foreignKey:ProductID"`
	StoreID      uint            `gorm:"not null;uniqueIndex:idx_item_product_store"`
	Store        StoreModel      `gorm:"foreignKey:StoreID"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinimumStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaximumStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the model. Product and Store must be preloaded.
func (m *InventoryItemModel) ToDomain() inventory.Item {
	return inventory.Item{
		ProductCode:  m.Product.Code,
		ProductName:  m.Product.Name,
		StoreCode:    m.Store.Code,
		StoreName:    m.Store.Name,
		CurrentStock: m.CurrentStock,
		MinimumStock: m.MinimumStock,
		MaximumStock: m.MaximumStock,
		AverageCost:  m.AverageCost,
		TotalValue:   m.CurrentStock.Mul(m.AverageCost).Round(2),
		IsLowStock:   m.CurrentStock.LessThanOrEqual(m.MinimumStock),
	}
}
