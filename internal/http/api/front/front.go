package front

import (
	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/ai"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/catalog"
	"github.com/syariahos/syariahos-api/internal/categories"
	"github.com/syariahos/syariahos-api/internal/config"
	"github.com/syariahos/syariahos-api/internal/dashboard"
	"github.com/syariahos/syariahos-api/internal/directory"
	handlers "github.com/syariahos/syariahos-api/internal/http/api/front/handlers"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/profile"
	"github.com/syariahos/syariahos-api/internal/ratelimit"
	"github.com/syariahos/syariahos-api/internal/reference"
	"github.com/syariahos/syariahos-api/internal/tasks"
)

// Services bundles the domain services behind the member API.
type Services struct {
	Auth       *auth.Service
	Profile    *profile.Service
	Categories *categories.Service
	Tasks      *tasks.Service
	Dashboard  *dashboard.Service
	Directory  *directory.Service
	Catalog    *catalog.Service
	AI         *ai.Service
	Reference  *reference.Client
	Limiter    *ratelimit.Manager
	RateLimit  config.RateLimitConfig
}

// RegisterFrontRoutes registers member routes, middleware, and handlers.
func RegisterFrontRoutes(api *gin.RouterGroup, svc Services) {
	if api == nil || svc.Auth == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(svc.Auth)
	loginLimit := middleware.RateLimit(svc.Limiter, "login", ratelimit.ScopeClientIP, ratelimit.PerMinute(svc.RateLimit.Login))
	api.POST("/setup", loginLimit, authHandler.Setup)
	api.POST("/auth/register", loginLimit, authHandler.Register)
	api.POST("/auth/login", loginLimit, authHandler.Login)

	toolHandler := handlers.NewToolHandler(svc.Catalog)
	api.GET("/tools", toolHandler.List)
	api.GET("/tools/:id", toolHandler.Get)

	islamicHandler := handlers.NewIslamicHandler(svc.Reference)
	api.GET("/islamic/surahs", islamicHandler.Surahs)
	api.GET("/islamic/surahs/:number", islamicHandler.Surah)
	api.GET("/islamic/hadith-books", islamicHandler.HadithBooks)
	api.GET("/islamic/hadith/:book/:number", islamicHandler.Hadith)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(svc.Auth))

	authed.POST("/auth/logout", authHandler.Logout)

	profileHandler := handlers.NewProfileHandler(svc.Profile, svc.Auth)
	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)
	authed.POST("/profile/export", profileHandler.Export)
	authed.POST("/profile/reset", profileHandler.Reset)
	authed.POST("/profile/2fa/prepare", profileHandler.PrepareTOTP)
	authed.POST("/profile/2fa/confirm", profileHandler.ConfirmTOTP)
	authed.POST("/profile/2fa/disable", profileHandler.DisableTOTP)

	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	authed.GET("/categories", categoryHandler.List)
	authed.POST("/categories", categoryHandler.Create)
	authed.DELETE("/categories/:id", categoryHandler.Delete)

	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	authed.GET("/tasks", taskHandler.List)
	authed.POST("/tasks", taskHandler.Create)
	authed.GET("/tasks/:id", taskHandler.Get)
	authed.PUT("/tasks/:id", taskHandler.Update)
	authed.PATCH("/tasks/:id", taskHandler.Patch)
	authed.DELETE("/tasks/:id", taskHandler.Delete)
	authed.POST("/tasks/:id/progress", taskHandler.AddProgress)
	authed.GET("/tasks/:id/history", taskHandler.History)
	authed.PUT("/tasks/:id/history/:historyId", taskHandler.UpdateHistory)
	authed.DELETE("/tasks/:id/history/:historyId", taskHandler.DeleteHistory)

	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	authed.GET("/dashboard", dashboardHandler.Summary)

	directoryHandler := handlers.NewDirectoryHandler(svc.Directory)
	authed.GET("/directory", directoryHandler.Tree)
	authed.POST("/directory", directoryHandler.Create)
	authed.PUT("/directory/:id", directoryHandler.Update)
	authed.DELETE("/directory/:id", directoryHandler.Delete)

	aiHandler := handlers.NewAIHandler(svc.AI)
	aiGroup := authed.Group("/ai")
	aiGroup.Use(middleware.RateLimit(svc.Limiter, "ai", ratelimit.ScopeUser, ratelimit.PerSecond(svc.RateLimit.AI)))
	aiGroup.POST("/chat", aiHandler.Chat)
	aiGroup.POST("/generate-plan", aiHandler.GeneratePlan)
	aiGroup.POST("/insight", aiHandler.Insight)
	aiGroup.POST("/accept-plan", aiHandler.AcceptPlan)
}
