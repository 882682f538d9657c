package models

import "time"

// BaseModel provides the common persistence fields
type BaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All lists every model for AutoMigrate, parents first
func All() []any {
	return []any{
		&CategoryModel{},
		&BrandModel{},
		&StoreModel{},
		&ProductModel{},
		&InventoryItemModel{},
		&CustomerModel{},
		&SaleModel{},
		&SaleLineModel{},
		&JobModel{},
		&UserModel{},
	}
}
