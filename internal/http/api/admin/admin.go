package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/catalog"
	"github.com/syariahos/syariahos-api/internal/export"
	handlers "github.com/syariahos/syariahos-api/internal/http/api/admin/handlers"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/stats"
)

// Services bundles the domain services behind the admin panel.
type Services struct {
	Auth     *auth.Service
	Accounts *accounts.Manager
	Catalog  *catalog.Service
	Recorder *activity.Recorder
	Stats    *stats.Service
	Export   *export.Service
}

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(api *gin.RouterGroup, svc Services) {
	if api == nil || svc.Auth == nil {
		return
	}

	authed := api.Group("/admin")
	authed.Use(middleware.Authenticate(svc.Auth))
	authed.Use(middleware.RequireAdmin())

	userHandler := handlers.NewUserHandler(svc.Accounts)
	authed.GET("/users", userHandler.List)
	authed.POST("/users", userHandler.Create)
	authed.GET("/users/:id", userHandler.Get)
	authed.PUT("/users/:id", userHandler.Update)
	authed.DELETE("/users/:id", userHandler.Delete)

	toolHandler := handlers.NewToolHandler(svc.Catalog)
	authed.GET("/tools", toolHandler.List)
	authed.POST("/tools", toolHandler.Create)
	authed.PUT("/tools/:id", toolHandler.Update)
	authed.DELETE("/tools/:id", toolHandler.Delete)

	logsHandler := handlers.NewLogsHandler(svc.Recorder)
	authed.GET("/logs", logsHandler.List)
	authed.GET("/logs/actions", logsHandler.Actions)

	statsHandler := handlers.NewStatsHandler(svc.Stats)
	authed.GET("/stats", statsHandler.Platform)

	exportHandler := handlers.NewExportHandler(svc.Export)
	authed.GET("/exports/:kind", exportHandler.Download)
}
