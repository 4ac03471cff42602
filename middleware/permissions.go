package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Request headers carrying the caller's working scope.
const (
	HeaderOrganizationID = "X-Organization-ID"
	HeaderEventID        = "X-Event-ID"
	HeaderLanguage       = "i18nextLng"
)

const accessContextKey = "access_context"

// AccessContext stores who is calling and in which scope.
type AccessContext struct {
	UserID         string
	Email          string
	OrganizationID uint
	EventID        uint
	Language       string
}

// HasOrganization reports whether the request named an organization.
func (ac AccessContext) HasOrganization() bool {
	return ac.OrganizationID > 0
}

// HasEvent reports whether the request named an event.
func (ac AccessContext) HasEvent() bool {
	return ac.EventID > 0
}

// GetAccessContext returns the context stored by AuthMiddleware.
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	raw, exists := c.Get(accessContextKey)
	if !exists {
		return AccessContext{}, false
	}
	ac, ok := raw.(AccessContext)
	return ac, ok
}

// SetAccessContext stores ac for the handlers further down the chain.
func SetAccessContext(c *gin.Context, ac AccessContext) {
	c.Set(accessContextKey, ac)
}

// ParseUintHeader reads a positive numeric header; missing or malformed
// values yield 0.
func ParseUintHeader(c *gin.Context, name string) uint {
	raw := c.GetHeader(name)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
