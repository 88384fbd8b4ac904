// Package middleware holds the gin middleware shared by the API routes.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/auth"
	"github.com/syariahos/syariahos-api/internal/http/api/respond"
	"github.com/syariahos/syariahos-api/internal/metrics"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/ratelimit"
	"github.com/syariahos/syariahos-api/internal/security"
)

// Context keys set by Authenticate.
const (
	ContextUser   = "user"
	ContextUserID = "userID"
	ContextClaims = "claims"
)

// AccessLog logs one line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if userID, ok := c.Get(ContextUserID); ok {
			fields["user_id"] = userID
		}
		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("http request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}

// Metrics records request counts and latencies by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// CORS allows the configured origins. An empty list or "*" allows any origin.
func CORS(allowed []string) gin.HandlerFunc {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			allowAll = true
		}
		set[origin] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := set[strings.TrimRight(origin, "/")]
			if allowAll || ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
				h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-RateLimit-Remaining")
				h.Set("Access-Control-Max-Age", "600")
				h.Add("Vary", "Origin")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authenticate validates the bearer token and loads the user.
func Authenticate(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader || strings.TrimSpace(token) == "" {
			respond.Message(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}
		user, claims, errAuth := svc.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if errAuth != nil {
			if errors.Is(errAuth, auth.ErrUnauthenticated) {
				respond.Message(c, http.StatusUnauthorized, "Unauthenticated.")
			} else {
				respond.Error(c, errAuth)
			}
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireAdmin rejects non-admin users. It must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !user.IsAdmin() {
			respond.Message(c, http.StatusForbidden, "This action is unauthorized.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit enforces rule for bucket, keyed by scope.
func RateLimit(manager *ratelimit.Manager, bucket string, scope ratelimit.Scope, rule ratelimit.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint64
		if user := CurrentUser(c); user != nil {
			userID = user.ID
		}
		key := ratelimit.Key(scope, bucket, userID, c.ClientIP())
		result, errAllow := manager.Allow(c.Request.Context(), key, rule)
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed")
			c.Next()
			return
		}
		if key != "" && rule.Enabled() {
			c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(result.RetryAfter(manager.Now())))
			respond.Message(c, http.StatusTooManyRequests, "Too many requests.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, ok := value.(models.User)
	if !ok {
		return nil
	}
	return &user
}

// CurrentUserID returns the authenticated user's ID, or 0.
func CurrentUserID(c *gin.Context) uint64 {
	return c.GetUint64(ContextUserID)
}

// CurrentClaims returns the verified token claims, or nil.
func CurrentClaims(c *gin.Context) *security.UserClaims {
	value, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := value.(*security.UserClaims)
	return claims
}
