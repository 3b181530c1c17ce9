package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

// ContextSessionKey is the gin context key storing session claims.
const ContextSessionKey = "currentSession"

// SessionValidator verifies signed session tokens.
type SessionValidator interface {
	ValidateSession(token string) (*models.SessionClaims, error)
}

// Session attaches claims from the session cookie, or from a bearer token for
// API clients, when present and valid. It never blocks the request.
func Session(validator SessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		claims, err := validator.ValidateSession(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}

// RequireSession rejects API requests without a valid session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFromContext(c) == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "login required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous page visitors to loginPath, remembering
// the page they asked for.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFromContext(c) == nil {
			target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the claims stored by Session, or nil.
func SessionFromContext(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
