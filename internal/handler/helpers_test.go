package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fefu-courses/internal/middleware"
	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/web"
)

type responseEnvelope struct {
	Data       map[string]interface{} `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
}

// newTestContext returns a gin context wired with the embedded templates.
func newTestContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(rec)
	tmpl, err := web.Templates()
	require.NoError(t, err)
	engine.SetHTMLTemplate(tmpl)
	c.Request = req
	return c, rec
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func signIn(c *gin.Context) {
	c.Set(middleware.ContextSessionKey, &models.SessionClaims{UserID: "user-1", Username: "ivan"})
}
