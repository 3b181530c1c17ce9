package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/fefu-courses/internal/models"
)

type stubValidator struct{}

func (stubValidator) ValidateSession(token string) (*models.SessionClaims, error) {
	if token == "good" {
		return &models.SessionClaims{UserID: "u-1", Username: "student1"}, nil
	}
	return nil, errors.New("invalid")
}

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(stubValidator{}, "fefu_session"))
	r.GET("/whoami", func(c *gin.Context) {
		if claims := SessionFromContext(c); claims != nil {
			c.String(http.StatusOK, claims.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/api/private", RequireSession(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/course/:slug/enroll/", RequireLogin("/login/"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestSessionReadsCookieAndBearer(t *testing.T) {
	r := newSessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "fefu_session", Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "student1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "student1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "fefu_session", Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequireSession(t *testing.T) {
	r := newSessionRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodGet, "/api/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireLoginRedirects(t *testing.T) {
	r := newSessionRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/course/go/enroll/", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login/?next=%2Fcourse%2Fgo%2Fenroll%2F", w.Header().Get("Location"))
}
