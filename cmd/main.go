package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"wegroup/internal/caching"
	"wegroup/internal/handlers"
	"wegroup/internal/jobs/background"
	"wegroup/internal/middleware"
	"wegroup/internal/models"
	"wegroup/internal/repositories"
	"wegroup/internal/services"
	"wegroup/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "wegroup-attachments"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	storageSvc, err := services.NewMinioStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Printf("WARNING: attachment bucket not reachable: %v", err)
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	tenantModuleRepo := repositories.NewTenantModuleRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	userRoleRepo := repositories.NewUserRoleRepo(pool)
	requestRepo := repositories.NewRequestRepo(pool)
	rfqRepo := repositories.NewRFQRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	provisioner := services.NewProvisioningService(roleRepo, nil)
	tenantSvc := services.NewTenantService(tenantRepo, tenantModuleRepo, provisioner, cacheSvc)
	rbacSvc := services.NewRBACService(userRoleRepo, roleRepo)
	authzSvc := services.NewAuthzService(rbacSvc)
	auditSvc := services.NewAuditLogsService(auditLogsRepo)
	workflowSvc := services.NewWorkflowService(requestRepo, rfqRepo, authzSvc, auditSvc)
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, 3600, 30*24*3600)

	// Background jobs
	auditRetentionDays := 90
	if retentionStr := os.Getenv("AUDIT_RETENTION_DAYS"); retentionStr != "" {
		if days, err := strconv.Atoi(retentionStr); err == nil && days > 0 {
			auditRetentionDays = days
		}
	}
	scheduler, err := background.NewJobScheduler(auditSvc, time.Duration(auditRetentionDays)*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Middleware
	authzMiddleware := middleware.NewAuthzMiddleware(authzSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, rbacSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, userRepo, rbacSvc)
	roleHandlers := handlers.NewRoleHandlers(roleRepo, rbacSvc, provisioner)
	requestHandlers := handlers.NewRequestHandlers(workflowSvc)
	rfqHandlers := handlers.NewRFQHandlers(workflowSvc, rfqRepo, storageSvc)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storageSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(cacheSvc, 20, time.Minute))
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Tenant lookup by domain is public: the login page needs it pre-session.
	v1.GET("/tenants/lookup", tenantHandlers.LookupTenant)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.SessionConfig(jwtSecret)))

	protected.GET("/me", authHandlers.Me)

	// Tenant routes
	protected.POST("/tenants", tenantHandlers.CreateTenant, authzMiddleware.RequireRole(models.RoleSuperAdmin))
	protected.GET("/tenants", tenantHandlers.ListTenants, authzMiddleware.RequireRole(models.RoleSuperAdmin))
	protected.GET("/tenants/:id", tenantHandlers.GetTenant, authzMiddleware.RequireTenantParam("id"))
	protected.GET("/tenants/:id/modules", tenantHandlers.ListModules, authzMiddleware.RequireTenantParam("id"))
	protected.PUT("/tenants/:id/modules/:module", tenantHandlers.SetModule, authzMiddleware.RequireTenantParamRole("id", models.RoleAdmin))
	protected.POST("/tenants/:id/members", tenantHandlers.AddMember, authzMiddleware.RequireTenantParamRole("id", models.RoleAdmin))
	protected.DELETE("/tenants/:id", tenantHandlers.DeactivateTenant, authzMiddleware.RequireRole(models.RoleSuperAdmin))

	// Role routes
	protected.GET("/roles", roleHandlers.ListRoles)
	protected.POST("/roles", roleHandlers.CreateRole, authzMiddleware.RequireRole(models.RoleAdmin))
	protected.POST("/roles/provision", roleHandlers.ProvisionSystemRoles, authzMiddleware.RequireRole(models.RoleAdmin))
	protected.POST("/roles/assign", roleHandlers.AssignRole, authzMiddleware.RequireRole(models.RoleAdmin))
	protected.DELETE("/roles/assign/:userId/:roleId", roleHandlers.RemoveRole, authzMiddleware.RequireRole(models.RoleAdmin))
	protected.GET("/users/:userId/roles", roleHandlers.GetUserRoles)

	// Workflow routes; entity-level authorization happens inside the service.
	protected.POST("/requests", requestHandlers.CreateRequest)
	protected.GET("/requests", requestHandlers.ListRequests)
	protected.GET("/requests/:id", requestHandlers.GetRequest)
	protected.POST("/requests/:id/submit", requestHandlers.SubmitRequest)

	protected.POST("/rfqs", rfqHandlers.CreateRFQ)
	protected.GET("/rfqs/:id", rfqHandlers.GetRFQ)
	protected.POST("/rfqs/:id/publish", rfqHandlers.PublishRFQ)
	protected.POST("/rfqs/:id/attachment", rfqHandlers.UploadAttachment)
	protected.GET("/rfqs/:id/attachment", rfqHandlers.GetAttachmentURL)
	protected.DELETE("/rfqs/:id/attachment", rfqHandlers.DeleteAttachment)

	// Audit trail
	protected.GET("/audit-logs", auditHandlers.ListAuditLogs, authzMiddleware.RequireRole(models.RoleAdmin))
	protected.GET("/audit-logs/:table/:record", auditHandlers.GetEntityHistory, authzMiddleware.RequireRole(models.RoleAdmin))

	// Platform surfaces that exist in the product but have no backend yet.
	protected.GET("/analytics/dashboard", handlers.NotImplemented("analytics dashboard"))
	protected.GET("/hr/overview", handlers.NotImplemented("hr overview"))
	protected.GET("/finance/overview", handlers.NotImplemented("finance overview"))

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("WeGroup platform v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
