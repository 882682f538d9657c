package models

import (
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is a product category
type CategoryModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// BrandModel is a product brand
type BrandModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	BaseModel
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Description   string          `gorm:"type:text"`
	CategoryID    uint            `gorm:"index"`
	Category      CategoryModel   `gorm:"foreignKey:CategoryID"`
	BrandID       uint            `gorm:"index"`
	Brand         BrandModel      `gorm:"foreignKey:BrandID"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinimumStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active        bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model. Category and Brand must be preloaded for their names.
func (m *ProductModel) ToDomain() catalog.Product {
	return catalog.Product{
		ID:            int(m.ID),
		Code:          m.Code,
		Name:          m.Name,
		Description:   m.Description,
		CategoryName:  m.Category.Name,
		BrandName:     m.Brand.Name,
		CurrentStock:  m.CurrentStock,
		MinimumStock:  m.MinimumStock,
		PurchasePrice: m.PurchasePrice,
		SalePrice:     m.SalePrice,
		Active:        m.Active,
	}
}
