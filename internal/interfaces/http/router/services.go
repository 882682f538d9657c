package router

import (
	catalogapp "github.com/erp/dashboard/internal/application/catalog"
	"github.com/erp/dashboard/internal/application/identity"
	importapp "github.com/erp/dashboard/internal/application/import"
	inventoryapp "github.com/erp/dashboard/internal/application/inventory"
	reportapp "github.com/erp/dashboard/internal/application/report"
	tradeapp "github.com/erp/dashboard/internal/application/trade"
	"github.com/erp/dashboard/internal/infrastructure/persistence"
	"github.com/erp/dashboard/internal/infrastructure/printing"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ServiceOptions tune the services built by NewServices
type ServiceOptions struct {
	Logger      *zap.Logger
	PDFRenderer printing.PDFRenderer
	// BcryptCost for registered passwords; zero means bcrypt.DefaultCost
	BcryptCost int
}

// NewServices wires the application services to GORM repositories on db
func NewServices(db *gorm.DB, tokens identity.TokenIssuer, opts ServiceOptions) Services {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	stores := persistence.NewGormStoreRepository(db)
	reports := persistence.NewGormReportRepository(db)

	reportOpts := []reportapp.Option{reportapp.WithLogger(log.Named("reports"))}
	if opts.PDFRenderer != nil {
		reportOpts = append(reportOpts, reportapp.WithPDFRenderer(opts.PDFRenderer))
	}

	return Services{
		Auth: identity.NewAuthService(persistence.NewGormUserRepository(db), tokens,
			identity.WithBcryptCost(cost), identity.WithLogger(log.Named("auth"))),
		Products:  catalogapp.NewProductService(persistence.NewGormProductRepository(db), log.Named("products")),
		Inventory: inventoryapp.NewInventoryService(persistence.NewGormInventoryItemRepository(db), stores, log.Named("inventory")),
		Sales:     tradeapp.NewSalesService(persistence.NewGormSaleRepository(db), log.Named("sales")),
		Jobs:      importapp.NewJobService(persistence.NewGormJobRepository(db), stores, importapp.WithLogger(log.Named("jobs"))),
		Reports:   reportapp.NewReportService(reports, reports, reportOpts...),
	}
}
