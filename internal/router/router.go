package router

import (
	"time"

	"proptrust/internal/config"
	"proptrust/internal/handler"
	"proptrust/internal/infra"
	"proptrust/internal/middleware"
	"proptrust/internal/repository"
	"proptrust/internal/service"
	"proptrust/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// trust service, which the composition root also hands to the closing-pack
// worker. Dependency graph: Handler ← Service ← Repository ← DB/Redis.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, zimraCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) (*gin.Engine, service.TrustService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	trustRepo := repository.NewTrustAccountRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	propertySvc := service.NewPropertyService(propertyRepo)
	trustSvc := service.NewTrustService(trustRepo, auditRepo, propertyRepo, service.RatesFromConfig(cfg), dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	propertiesH := handler.NewPropertiesHandler(propertySvc)
	trustH := handler.NewTrustHandler(trustSvc)
	reportsH := handler.NewReportsHandler(trustSvc, cfg.PDFStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, zimraCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: agent (read), conveyancer (settlement workflow), admin (everything)
		readRoles := middleware.RequireRole("agent", "conveyancer", "admin")
		writeRoles := middleware.RequireRole("conveyancer", "admin")

		accounts := v1.Group("/trust-accounts")
		{
			accounts.GET("", readRoles, trustH.List)
			accounts.POST("", writeRoles, trustH.Open)
			accounts.GET("/property/:propertyId", readRoles, trustH.GetByProperty)
			accounts.GET("/property/:propertyId/full", readRoles, trustH.FullByProperty)
			accounts.GET("/:id/ledger", readRoles, trustH.Ledger)
			accounts.POST("/:id/calculate-settlement", writeRoles, trustH.CalculateSettlement)
			accounts.POST("/:id/apply-tax-deductions", writeRoles, trustH.ApplyTaxDeductions)
			accounts.POST("/:id/deposit", writeRoles, trustH.Deposit)
			accounts.POST("/:id/transfer-to-seller", writeRoles, trustH.TransferToSeller)
			accounts.POST("/:id/adjustment", writeRoles, trustH.Adjust)
			accounts.POST("/:id/close", writeRoles, trustH.Close)
			accounts.POST("/:id/workflow-transition", writeRoles, trustH.Transition)
			accounts.GET("/:id/reports/:reportType", readRoles, reportsH.Get)
		}

		props := v1.Group("/properties")
		{
			props.GET("", readRoles, propertiesH.List)
			props.GET("/:id", readRoles, propertiesH.Get)
			props.POST("", writeRoles, propertiesH.Create)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, trustSvc
}
