package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"duopet-backend/models"
	"duopet-backend/services"
)

// Context keys set by RequestGate.
const (
	ContextClaims  = "claims"
	ContextUserID  = "userID"
	ContextLoginID = "loginID"
	ContextRole    = "role"
)

// Headers of the token protocol.
const (
	HeaderRefreshToken    = "RefreshToken"
	HeaderRefreshTokenOut = "Refresh-Token"
	HeaderTokenExpired    = "token-expired"
	HeaderExtendLogin     = "ExtendLogin"
)

// TokenVerifier is the part of the token codec the gate needs.
type TokenVerifier interface {
	Verify(token, category string) (*models.Claims, error)
	ClaimsExpired(claims *models.Claims) bool
}

// BearerToken strips the "Bearer " prefix. A header without it yields "".
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequestGate rejects requests outside allow that lack a live token pair.
func RequestGate(tokens TokenVerifier, allow *AllowList, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method == http.MethodOptions || allow.Allowed(c.Request.Method, path) {
			c.Next()
			return
		}

		access := BearerToken(c.GetHeader("Authorization"))
		refresh := BearerToken(c.GetHeader(HeaderRefreshToken))
		if access == "" || refresh == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid tokens"})
			return
		}

		accessClaims, err := tokens.Verify(access, models.CategoryAccess)
		if err != nil {
			rejectToken(c, log, err)
			return
		}
		refreshClaims, err := tokens.Verify(refresh, models.CategoryRefresh)
		if err != nil {
			rejectToken(c, log, err)
			return
		}

		accessExpired := tokens.ClaimsExpired(accessClaims)
		if !accessExpired && tokens.ClaimsExpired(refreshClaims) {
			c.Header(HeaderTokenExpired, "RefreshToken")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
			return
		}
		if accessExpired {
			c.Header(HeaderTokenExpired, "AccessToken")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token expired"})
			return
		}

		c.Set(ContextClaims, accessClaims)
		c.Set(ContextUserID, accessClaims.UserNo)
		c.Set(ContextLoginID, accessClaims.Subject)
		c.Set(ContextRole, accessClaims.Role)
		c.Next()
	}
}

func rejectToken(c *gin.Context, log logrus.FieldLogger, err error) {
	if errors.Is(err, services.ErrTokenCategory) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token category"})
		return
	}
	log.WithError(err).WithField("path", c.Request.URL.Path).Warn("token parse failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// RequireRole lets through only callers whose role matches one of roles.
// Must run after RequestGate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if strings.EqualFold(role, r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
