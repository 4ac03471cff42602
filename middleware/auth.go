package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and stores an AccessContext
// built from its claims and the scope headers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		userID := userIDFromClaims(claims)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id missing in token"})
			return
		}

		ac := AccessContext{
			UserID:         userID,
			OrganizationID: ParseUintHeader(c, HeaderOrganizationID),
			EventID:        ParseUintHeader(c, HeaderEventID),
			Language:       c.GetHeader(HeaderLanguage),
		}
		if email, ok := claims["email"].(string); ok {
			ac.Email = email
		}

		c.Set("claims", claims)
		c.Set("user_id", userID)
		SetAccessContext(c, ac)
		c.Next()
	}
}

// userIDFromClaims accepts user_id as a string or a number and falls back
// to the standard subject claim.
func userIDFromClaims(claims jwt.MapClaims) string {
	switch v := claims["user_id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	if sub, err := claims.GetSubject(); err == nil {
		return sub
	}
	return ""
}
