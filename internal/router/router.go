package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-shop-manager/internal/ai"
	"go-shop-manager/internal/auth"
	"go-shop-manager/internal/catalog"
	"go-shop-manager/internal/config"
	"go-shop-manager/internal/finance"
	"go-shop-manager/internal/handlers"
	"go-shop-manager/internal/inventory"
	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/middleware"
	"go-shop-manager/internal/models"
	"go-shop-manager/internal/reports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the components the HTTP surface is built on.
type Deps struct {
	DB         *gorm.DB
	Tokens     *auth.Tokens
	Catalog    *catalog.Store
	Recorder   *inventory.Recorder
	Journal    *finance.Journal
	Reports    *reports.Engine
	Assistant  handlers.Assistant
	InstanceID string
	LockKind   string
}

// NewDeps wires the components over db from configuration.
func NewDeps(cfg *config.Config, db *gorm.DB, locker inventory.Locker) Deps {
	store := catalog.NewStore(db, cfg.Catalog.PhoneRegion)
	recorder := inventory.NewRecorder(db, inventory.WithLocker(locker))
	engine := reports.NewEngine(db, reports.WithLowStockThreshold(cfg.Reports.LowStockThreshold))

	return Deps{
		DB:       db,
		Tokens:   auth.NewTokens(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour),
		Catalog:  store,
		Recorder: recorder,
		Journal:  finance.NewJournal(db, nil),
		Reports:  engine,
		Assistant: ai.NewAgent(cfg.AI.APIKey, cfg.AI.Model, &ai.Tools{
			Catalog:  store,
			Recorder: recorder,
			Reports:  engine,
		}),
	}
}

// SetupRouter configures the gin engine: middleware, API routes and the
// front-end bundle.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	system := handlers.NewSystemHandler(deps.DB, deps.InstanceID, cfg.Database.Driver, deps.LockKind)
	authH := handlers.NewAuthHandler(deps.DB, deps.Tokens, cfg.Auth)
	catalogH := handlers.NewCatalogHandler(deps.Catalog)
	stockH := handlers.NewStockHandler(deps.Recorder)
	financeH := handlers.NewFinanceHandler(deps.Journal)
	reportH := handlers.NewReportHandler(deps.Reports)
	aiH := handlers.NewAIHandler(deps.Assistant)

	r.GET("/health", system.Health)
	r.POST("/login", authH.Login)
	r.POST("/logout", authH.Logout)

	// --- FEATURE FLAG: Registration ---
	log := logger.For("router")
	if cfg.Auth.AllowRegistration {
		r.POST("/register", authH.Register)
		log.Warn("registration route is OPEN; disable it in production")
	} else {
		log.Info("registration route is disabled")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(
		middleware.AuthMiddleware(deps.Tokens, cfg.Auth.CookieName),
		middleware.AuditMiddleware(deps.DB),
	)
	{
		api.GET("/me", authH.Me)

		api.GET("/products", catalogH.GetProducts)
		api.GET("/products/:id", catalogH.GetProduct)
		api.POST("/products", catalogH.AddProduct)
		api.PUT("/products/:id", catalogH.UpdateProduct)
		api.DELETE("/products/:id", catalogH.DeleteProduct)

		api.GET("/suppliers", catalogH.GetSuppliers)
		api.GET("/suppliers/:id", catalogH.GetSupplier)
		api.POST("/suppliers", catalogH.AddSupplier)
		api.PUT("/suppliers/:id", catalogH.UpdateSupplier)
		api.DELETE("/suppliers/:id", catalogH.DeleteSupplier)

		api.GET("/purchases", stockH.GetPurchases)
		api.POST("/purchases", stockH.AddPurchase)
		api.DELETE("/purchases/:id", stockH.DeletePurchase)

		api.GET("/sales", stockH.GetSales)
		api.POST("/sales", stockH.AddSale)
		api.DELETE("/sales/:id", stockH.DeleteSale)

		api.GET("/inventory", stockH.GetInventory)
		api.GET("/inventory/:id", stockH.GetProductStock)

		api.GET("/expenses", financeH.GetExpenses)
		api.POST("/expenses", financeH.AddExpense)
		api.DELETE("/expenses/:id", financeH.DeleteExpense)

		api.GET("/incomes", financeH.GetIncomes)
		api.POST("/incomes", financeH.AddIncome)
		api.DELETE("/incomes/:id", financeH.DeleteIncome)

		api.GET("/reports/dashboard", reportH.GetDashboard)
		api.GET("/reports/sales", reportH.GetSalesReport)
		api.GET("/reports/inventory", reportH.GetInventoryReport)
		api.GET("/reports/financial", reportH.GetFinancialReport)
		api.GET("/reports/monthly", reportH.GetMonthlySummary)
		api.GET("/reports/valuation", reportH.GetStockValuation)
		api.GET("/reports/export/inventory.xlsx", reportH.ExportInventoryXLSX)
		api.GET("/reports/export/inventory.pdf", reportH.ExportInventoryPDF)
		api.GET("/reports/export/sales.xlsx", reportH.ExportSalesXLSX)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/ask", aiH.AskAI)
			admin.GET("/users", authH.ListUsers)
			admin.DELETE("/users/:id", authH.DeleteUser)
			admin.GET("/system/status", system.GetSystemStatus)
		}
	}

	serveWeb(r, cfg.Web.Dir)
	return r
}

// serveWeb serves the built front end, falling back to index.html so the
// client-side router can handle deep links. API misses stay JSON 404s.
func serveWeb(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	hasWeb := false
	if _, err := os.Stat(index); err == nil {
		hasWeb = true
		r.Static("/assets", filepath.Join(dir, "assets"))
	}

	r.NoRoute(func(c *gin.Context) {
		if !hasWeb || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(index)
	})
}
