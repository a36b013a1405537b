package handlers

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"civicreport/middleware"
	"civicreport/models"
	"civicreport/service"
)

// SetupRouter wires every route onto a gin engine.
func SetupRouter(h *Handlers, auth *service.AuthService, trustedProxies []string) *gin.Engine {
	router := gin.Default()
	if len(trustedProxies) > 0 {
		router.SetTrustedProxies(trustedProxies)
	}

	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", h.Health)
	router.GET("/ws", h.ServeWS)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", middleware.AuthMiddleware(auth), h.Me)
		}

		reports := api.Group("/reports")
		{
			reports.POST("", middleware.OptionalAuth(auth), h.CreateReport)
			reports.GET("", h.ListReports)
			reports.GET("/search/text", h.SearchReports)
			reports.GET("/:id", h.GetReport)
			reports.POST("/:id/upvote", middleware.AuthMiddleware(auth), h.UpvoteReport)
			reports.PUT("/:id/status",
				middleware.AuthMiddleware(auth),
				middleware.RequireRole(models.RoleStaff),
				h.UpdateReportStatus)
		}

		blockchainGroup := api.Group("/blockchain")
		{
			blockchainGroup.POST("/store",
				middleware.AuthMiddleware(auth),
				middleware.RequireRole(models.RoleStaff),
				h.AnchorReport)
			blockchainGroup.GET("/verify/:id", h.VerifyAnchor)
		}

		departments := api.Group("/departments")
		{
			departments.GET("", h.ListDepartments)
			departments.GET("/:id", h.GetDepartment)
			departments.POST("",
				middleware.AuthMiddleware(auth),
				middleware.RequireRole(models.RoleAdmin),
				h.CreateDepartment)
		}

		api.GET("/map/aggregate", h.MapClusters)

		analytics := api.Group("/analytics")
		{
			analytics.GET("/hotspots", h.Hotspots)
			analytics.GET("/overview",
				middleware.AuthMiddleware(auth),
				middleware.RequireRole(models.RoleStaff),
				h.AnalyticsOverview)
		}

		users := api.Group("/users",
			middleware.AuthMiddleware(auth),
			middleware.RequireRole(models.RoleAdmin))
		{
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
		}

		audit := api.Group("/audit",
			middleware.AuthMiddleware(auth),
			middleware.RequireRole(models.RoleAdmin))
		{
			audit.GET("", h.ListAuditLogs)
			audit.POST("", h.CreateAuditLog)
		}
	}

	// Internal surface for trusted collaborators; deploy behind the mesh,
	// never on the public listener.
	internal := router.Group("/internal")
	{
		internal.POST("/reports/:id/analysis", h.SetReportAnalysis)
	}

	return router
}
