package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Permission names granted by the authorization service.
const (
	PermEventCreate  = "EVENT_CREATE"
	PermEventUpdate  = "EVENT_UPDATE"
	PermEventDelete  = "EVENT_DELETE"
	PermEventPublish = "EVENT_PUBLISH"
	PermEventView    = "EVENT_VIEW"
)

// PermissionChecker answers whether a user holds a permission inside an
// organization.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID string, organizationID uint, permission string) (bool, error)
}

// RequireOrganization rejects requests that did not name an organization.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
			return
		}
		if !ac.HasOrganization() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": HeaderOrganizationID + " header is required"})
			return
		}
		c.Next()
	}
}

// RequirePermission lets the request through when the caller holds any of
// the given permissions in the request's organization.
func RequirePermission(checker PermissionChecker, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ac, ok := GetAccessContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
			return
		}

		for _, p := range permissions {
			allowed, err := checker.HasPermission(c.Request.Context(), ac.UserID, ac.OrganizationID, p)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "permission lookup failed"})
				return
			}
			if allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}
