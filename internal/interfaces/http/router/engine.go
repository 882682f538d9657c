package router

import (
	catalogapp "github.com/erp/dashboard/internal/application/catalog"
	"github.com/erp/dashboard/internal/application/identity"
	importapp "github.com/erp/dashboard/internal/application/import"
	inventoryapp "github.com/erp/dashboard/internal/application/inventory"
	reportapp "github.com/erp/dashboard/internal/application/report"
	tradeapp "github.com/erp/dashboard/internal/application/trade"
	"github.com/erp/dashboard/internal/infrastructure/logger"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/interfaces/http/handler"
	"github.com/erp/dashboard/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes bounds an import upload
const DefaultMaxUploadBytes int64 = 10 << 20

// Services are the application services behind the API
type Services struct {
	Auth      *identity.AuthService
	Products  *catalogapp.ProductService
	Inventory *inventoryapp.InventoryService
	Sales     *tradeapp.SalesService
	Jobs      *importapp.JobService
	Reports   *reportapp.ReportService
}

// EngineConfig holds the cross-cutting HTTP settings
type EngineConfig struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Recorder
	DB             handler.Pinger
	MaxUploadBytes int64
	TrustedProxies []string
}

// NewEngine assembles the gin engine serving the inventory API under /api.
// Metrics, when configured, are served at /metrics outside the API group.
func NewEngine(cfg EngineConfig, svc Services) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.Secure())
	if cfg.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	engine.Use(middleware.RateLimit(cfg.RateLimiter))
	engine.NoRoute(middleware.NoRoute())

	jwtConfig := middleware.DefaultJWTConfig(cfg.Tokens)
	jwtConfig.SkipPaths = append(jwtConfig.SkipPaths, DefaultBasePath+"/health")
	jwtConfig.Logger = log

	authHandler := handler.NewAuthHandler(svc.Auth)
	productHandler := handler.NewProductHandler(svc.Products)
	inventoryHandler := handler.NewInventoryHandler(svc.Inventory)
	salesHandler := handler.NewSalesHandler(svc.Sales)
	jobHandler := handler.NewJobHandler(svc.Jobs)
	importHandler := handler.NewImportHandler(svc.Jobs)
	reportHandler := handler.NewReportHandler(svc.Reports)
	systemHandler := handler.NewSystemHandler(cfg.DB, svc.Reports.PDFAvailable())

	groups := []*DomainGroup{
		NewDomainGroup("auth", "/auth").
			POST("/login", authHandler.Login).
			POST("/register", authHandler.Register).
			GET("/me", authHandler.Me),
		NewDomainGroup("products", "/products").
			GET("", productHandler.List),
		NewDomainGroup("inventory", "/inventory").
			GET("", inventoryHandler.List),
		NewDomainGroup("stores", "/stores").
			GET("", inventoryHandler.Stores),
		NewDomainGroup("sales", "/sales").
			GET("", salesHandler.List),
		NewDomainGroup("stock-initial", "/tandiaimport/stock-initial").
			GET("/validation/:code", inventoryHandler.ValidateStockInitial),
		NewDomainGroup("jobs", "/backgroundjobs").
			GET("/my-jobs", jobHandler.Mine).
			GET("/recent", jobHandler.Recent).
			GET("/history", jobHandler.History).
			GET("/:id/status", jobHandler.Status).
			POST("/:id/queue", middleware.BodyLimit(cfg.MaxUploadBytes), importHandler.Queue),
		NewDomainGroup("dashboard", "/dashboard").
			GET("/stats", reportHandler.DashboardStats),
		NewDomainGroup("reports", "/reports").
			POST("/export/:type", reportHandler.Export),
		NewDomainGroup("system", "/health").
			GET("", systemHandler.Health),
	}

	r := NewRouter(engine).Use(middleware.JWTAuth(jwtConfig))
	routes := 0
	for _, g := range groups {
		r.Register(g)
		routes += len(g.Routes())
	}
	r.Setup()

	log.Debug("HTTP routes registered",
		zap.Int("groups", len(groups)),
		zap.Int("routes", routes))
	return engine, nil
}
