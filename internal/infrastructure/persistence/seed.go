package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/erp/dashboard/internal/domain/identity"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls the generated demo data
type SeedOptions struct {
	Seed          uint64
	Products      int
	Sales         int
	AdminUsername string
	AdminPassword string
	// PasswordCost is the bcrypt cost; zero means bcrypt.DefaultCost
	PasswordCost int
	Now          time.Time
}

// DefaultSeedOptions returns the data set the fake API starts with
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		Seed:          42,
		Products:      60,
		Sales:         45,
		AdminUsername: "admin",
		AdminPassword: "admin123",
		Now:           time.Now().UTC(),
	}
}

// SeedStores are created by Seed. T01 already received its initial stock.
var SeedStores = []models.StoreModel{
	{Code: "T01", Name: "Central Store", Address: "Av. Arequipa 1200", Active: true, HasInitialStock: true},
	{Code: "T02", Name: "North Store", Address: "Av. Tupac Amaru 450", Active: true},
	{Code: "T03", Name: "South Store", Address: "Av. Los Heroes 88", Active: true},
	{Code: "ALM", Name: "Warehouse", Address: "Jr. Industrial 300", Active: true},
}

var seedCategories = []string{"Beverages", "Snacks", "Cleaning", "Personal care", "Groceries", "Dairy"}

// Seed fills an empty database with deterministic demo data. A database that
// already has stores is left untouched.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	var existing int64
	if err := db.WithContext(ctx).Model(&models.StoreModel{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Debug("database already seeded")
		return nil
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	f := gofakeit.New(opts.Seed)
	s := &seeder{f: f, opts: opts}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []func(*gorm.DB) error{
			s.createStores, s.createCatalog, s.createInventory, s.createCustomers, s.createSales, s.createAdmin,
		}
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	log.Info("database seeded",
		zap.Uint64("seed", opts.Seed),
		zap.Int("products", len(s.products)),
		zap.Int("sales", opts.Sales),
	)
	return nil
}

type seeder struct {
	f         *gofakeit.Faker
	opts      SeedOptions
	stores    []models.StoreModel
	products  []models.ProductModel
	customers []models.CustomerModel
}

func (s *seeder) createStores(tx *gorm.DB) error {
	s.stores = make([]models.StoreModel, len(SeedStores))
	copy(s.stores, SeedStores)
	return tx.Create(&s.stores).Error
}

func (s *seeder) createCatalog(tx *gorm.DB) error {
	categories := make([]models.CategoryModel, len(seedCategories))
	for i, name := range seedCategories {
		categories[i].Name = name
	}
	if err := tx.Create(&categories).Error; err != nil {
		return err
	}

	seen := map[string]bool{}
	var brands []models.BrandModel
	for len(brands) < 8 {
		name := s.f.Company()
		if seen[name] {
			continue
		}
		seen[name] = true
		brands = append(brands, models.BrandModel{Name: name})
	}
	if err := tx.Create(&brands).Error; err != nil {
		return err
	}

	s.products = make([]models.ProductModel, s.opts.Products)
	for i := range s.products {
		cost := decimal.NewFromFloat(s.f.Float64Range(0.5, 80)).Round(2)
		s.products[i] = models.ProductModel{
			Code:          fmt.Sprintf("P%04d", i+1),
			Name:          s.f.ProductName(),
			Description:   s.f.ProductDescription(),
			CategoryID:    categories[s.f.IntRange(0, len(categories)-1)].ID,
			BrandID:       brands[s.f.IntRange(0, len(brands)-1)].ID,
			MinimumStock:  decimal.NewFromInt(int64(s.f.IntRange(5, 20))),
			PurchasePrice: cost,
			SalePrice:     cost.Mul(decimal.NewFromFloat(s.f.Float64Range(1.15, 1.6))).Round(2),
			Active:        s.f.IntRange(0, 9) > 0,
		}
	}
	if len(s.products) == 0 {
		return nil
	}
	return tx.CreateInBatches(&s.products, 100).Error
}

// createInventory stocks every product in every store that received its initial stock
// and sets the product totals
func (s *seeder) createInventory(tx *gorm.DB) error {
	var items []models.InventoryItemModel
	for i := range s.products {
		p := &s.products[i]
		total := decimal.Zero
		for _, st := range s.stores {
			if !st.HasInitialStock && st.Code != "ALM" {
				continue
			}
			stock := decimal.NewFromInt(int64(s.f.IntRange(0, 60)))
			total = total.Add(stock)
			items = append(items, models.InventoryItemModel{
				ProductID:    p.ID,
				StoreID:      st.ID,
				CurrentStock: stock,
				MinimumStock: p.MinimumStock,
				MaximumStock: p.MinimumStock.Mul(decimal.NewFromInt(10)),
				AverageCost:  p.PurchasePrice,
			})
		}
		p.CurrentStock = total
		if err := tx.Model(p).Update("current_stock", total).Error; err != nil {
			return err
		}
	}
	if len(items) == 0 {
		return nil
	}
	return tx.CreateInBatches(&items, 100).Error
}

func (s *seeder) createCustomers(tx *gorm.DB) error {
	s.customers = make([]models.CustomerModel, 20)
	for i := range s.customers {
		s.customers[i] = models.CustomerModel{
			Name:     s.f.Name(),
			Document: fmt.Sprintf("%08d", 10000000+i*7919),
		}
	}
	return tx.Create(&s.customers).Error
}

func (s *seeder) createSales(tx *gorm.DB) error {
	if len(s.products) == 0 {
		return nil
	}
	for i := 0; i < s.opts.Sales; i++ {
		store := s.stores[s.f.IntRange(0, len(s.stores)-1)]
		sale := models.SaleModel{
			SaleNumber: fmt.Sprintf("B001-%06d", i+1),
			SaleDate:   s.opts.Now.Add(-time.Duration(s.f.IntRange(1, 90*24)) * time.Hour),
			StoreID:    store.ID,
			Total:      decimal.Zero,
		}
		if s.f.IntRange(0, 3) > 0 {
			id := s.customers[s.f.IntRange(0, len(s.customers)-1)].ID
			sale.CustomerID = &id
		}
		if i%5 == 0 {
			sale.ImportSource = "SALES_IMPORT"
		}
		for n := s.f.IntRange(1, 4); n > 0; n-- {
			p := s.products[s.f.IntRange(0, len(s.products)-1)]
			q := s.f.IntRange(1, 6)
			subtotal := p.SalePrice.Mul(decimal.NewFromInt(int64(q)))
			sale.Lines = append(sale.Lines, models.SaleLineModel{
				ProductID: p.ID,
				Quantity:  q,
				UnitPrice: p.SalePrice,
				Subtotal:  subtotal,
			})
			sale.ItemCount += q
			sale.Total = sale.Total.Add(subtotal)
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) createAdmin(tx *gorm.DB) error {
	if s.opts.AdminUsername == "" {
		return nil
	}
	cost := s.opts.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.AdminPassword), cost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	var admin models.UserModel
	admin.FromDomain(identity.Credentials{
		User: identity.User{
			Username:  s.opts.AdminUsername,
			Email:     s.opts.AdminUsername + "@dashboard.local",
			Role:      identity.RoleAdmin,
			FirstName: "System",
			LastName:  "Administrator",
		},
		PasswordHash: string(hash),
	})
	return tx.Create(&admin).Error
}
