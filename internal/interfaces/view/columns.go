package view

import (
	"github.com/erp/dashboard/internal/domain/catalog"
	"github.com/erp/dashboard/internal/domain/inventory"
	"github.com/erp/dashboard/internal/domain/trade"
)

// ProductColumns are the product list columns
func ProductColumns() []Column[catalog.Product] {
	return []Column[catalog.Product]{
		{Key: "code", Label: "Code", Value: func(p catalog.Product) any { return p.Code }},
		{Key: "name", Label: "Name", Value: func(p catalog.Product) any { return p.Name }},
		{Key: "categoryName", Label: "Category", Value: func(p catalog.Product) any { return p.CategoryName }},
		{Key: "brandName", Label: "Brand", Value: func(p catalog.Product) any { return p.BrandName }},
		{Key: "currentStock", Label: "Stock", Value: func(p catalog.Product) any { return p.CurrentStock },
			Render: func(v any, p catalog.Product) string {
				s := FormatValue(v)
				if p.IsLowStock() {
					s += " !"
				}
				return s
			}},
		{Key: "salePrice", Label: "Price", Value: func(p catalog.Product) any { return p.SalePrice }, Render: Money[catalog.Product]},
		{Key: "active", Label: "Active", Value: func(p catalog.Product) any { return p.Active }},
	}
}

// InventoryColumns are the stock position columns
func InventoryColumns() []Column[inventory.Item] {
	return []Column[inventory.Item]{
		{Key: "productCode", Label: "Code", Value: func(i inventory.Item) any { return i.ProductCode }},
		{Key: "productName", Label: "Product", Value: func(i inventory.Item) any { return i.ProductName }},
		{Key: "storeName", Label: "Store", Value: func(i inventory.Item) any { return i.StoreName }},
		{Key: "currentStock", Label: "Stock", Value: func(i inventory.Item) any { return i.CurrentStock }},
		{Key: "minimumStock", Label: "Min", Value: func(i inventory.Item) any { return i.MinimumStock }},
		{Key: "averageCost", Label: "Avg cost", Value: func(i inventory.Item) any { return i.AverageCost }, Render: Money[inventory.Item]},
		{Key: "totalValue", Label: "Value", Value: func(i inventory.Item) any { return i.TotalValue }, Render: Money[inventory.Item]},
		{Key: "level", Label: "Level", Value: func(i inventory.Item) any { return i.StockLevel() }},
	}
}

// SaleColumns are the sales list columns
func SaleColumns() []Column[trade.Sale] {
	return []Column[trade.Sale]{
		{Key: "saleNumber", Label: "Number", Value: func(s trade.Sale) any { return s.SaleNumber }},
		{Key: "saleDate", Label: "Date", Value: func(s trade.Sale) any { return s.SaleDate }},
		{Key: "customerName", Label: "Customer", Value: func(s trade.Sale) any { return s.CustomerName }},
		{Key: "storeName", Label: "Store", Value: func(s trade.Sale) any { return s.StoreName }},
		{Key: "itemCount", Label: "Items", Value: func(s trade.Sale) any { return s.ItemCount }},
		{Key: "total", Label: "Total", Value: func(s trade.Sale) any { return s.Total }, Render: Money[trade.Sale]},
		{Key: "importSource", Label: "Source", Value: func(s trade.Sale) any {
			if s.Imported() {
				return s.ImportSource
			}
			return "manual"
		}},
	}
}
