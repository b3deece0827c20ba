package middleware

import (
	"net/http"
	"strings"

	"github.com/agentbill/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to store organization information in gin.Context
const (
	OrgIDKey     = "org_id"
	OrgHeaderKey = "X-Org-ID"
)

// OrgMiddlewareConfig holds configuration for org middleware
type OrgMiddlewareConfig struct {
	// SkipPaths are paths that don't require org context (health checks)
	SkipPaths []string
	// Required determines if org context is mandatory
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOrgConfig returns default org middleware configuration
func DefaultOrgConfig() OrgMiddlewareConfig {
	return OrgMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/system"},
		Required:  true,
	}
}

// OrgMiddleware extracts the organization id from the X-Org-ID header.
// Authentication happens upstream; by the time a request reaches this
// service the gateway has already resolved the caller's organization.
func OrgMiddleware() gin.HandlerFunc {
	return OrgMiddlewareWithConfig(DefaultOrgConfig())
}

// OrgMiddlewareWithConfig returns org middleware with custom configuration
func OrgMiddlewareWithConfig(cfg OrgMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		orgID := c.GetHeader(OrgHeaderKey)

		if orgID == "" {
			if cfg.Required {
				respondUnauthorized(c, "Organization identification required")
				return
			}
			c.Next()
			return
		}

		if _, err := uuid.Parse(orgID); err != nil {
			respondUnauthorized(c, "Invalid organization ID format")
			return
		}

		c.Set(OrgIDKey, orgID)

		// Propagate to the request context so service-layer logs carry it
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithOrgID(ctx, log, orgID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Organization identified", zap.String("org_id", orgID))
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetOrgID retrieves the organization ID from gin.Context
func GetOrgID(c *gin.Context) string {
	if orgID, exists := c.Get(OrgIDKey); exists {
		if id, ok := orgID.(string); ok {
			return id
		}
	}
	return ""
}

// GetOrgUUID retrieves the organization ID as UUID from gin.Context
func GetOrgUUID(c *gin.Context) (uuid.UUID, error) {
	orgID := GetOrgID(c)
	if orgID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(orgID)
}

// OptionalOrgMiddleware creates middleware that doesn't require an org
func OptionalOrgMiddleware() gin.HandlerFunc {
	cfg := DefaultOrgConfig()
	cfg.Required = false
	return OrgMiddlewareWithConfig(cfg)
}
