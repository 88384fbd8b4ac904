// Package api assembles the HTTP engine.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syariahos/syariahos-api/internal/http/api/admin"
	"github.com/syariahos/syariahos-api/internal/http/api/front"
	"github.com/syariahos/syariahos-api/internal/http/api/middleware"
	"github.com/syariahos/syariahos-api/internal/metrics"
	"gorm.io/gorm"
)

// Options configures NewEngine.
type Options struct {
	DB             *gorm.DB
	Debug          bool
	AllowedOrigins []string
	Front          front.Services
	Admin          admin.Services
}

// NewEngine builds the gin engine with middleware, probes and every route.
func NewEngine(opts Options) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.AccessLog())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.GET("/healthz", healthz(opts.DB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	group := r.Group("/api")
	front.RegisterFrontRoutes(group, opts.Front)
	admin.RegisterAdminRoutes(group, opts.Admin)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found."})
	})
	return r
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		sqlDB, errDB := db.DB()
		if errDB != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		if errPing := sqlDB.PingContext(c.Request.Context()); errPing != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
