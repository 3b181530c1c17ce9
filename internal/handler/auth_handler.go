package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/middleware"
	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

const (
	titleRegister   = "Регистрация"
	titleLogin      = "Вход в систему"
	msgRegistered   = "Регистрация прошла успешно! Добро пожаловать в нашу систему."
	msgLoggedIn     = "Вход выполнен успешно! Добро пожаловать в систему."
	defaultAfterOut = "/"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	CurrentUser(ctx context.Context, claims *models.SessionClaims) (*models.UserProfile, error)
}

// CookieConfig describes the session cookie written on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	auth   authService
	cookie CookieConfig
	now    func() time.Time
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth authService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "fefu_session"
	}
	return &AuthHandler{auth: auth, cookie: cookie, now: time.Now}
}

// RegisterForm renders an empty registration form.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	data := pageData(c, titleRegister)
	data["Form"] = models.RegisterRequest{}
	render(c, http.StatusOK, "register.html", data)
}

// Register creates the account or re-renders the form with errors.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	_ = c.ShouldBind(&req)

	if _, err := h.auth.Register(c.Request.Context(), req); err != nil {
		req.Password, req.PasswordConfirm = "", ""
		data := pageData(c, titleRegister)
		data["Form"] = req
		data["Errors"] = formErrors(err)
		render(c, appErrorStatus(err), "register.html", data)
		return
	}
	renderSuccess(c, titleRegister, msgRegistered)
}

// LoginForm renders the login form. next is carried through to the POST.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	data := pageData(c, titleLogin)
	data["Form"] = models.LoginRequest{}
	data["Next"] = safeRedirect(c.Query("next"), "")
	render(c, http.StatusOK, "login.html", data)
}

// Login verifies credentials and sets the session cookie. With a next target
// the browser is redirected there, otherwise the success page is shown.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	_ = c.ShouldBind(&req)
	next := safeRedirect(c.PostForm("next"), "")

	session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		req.Password = ""
		data := pageData(c, titleLogin)
		data["Form"] = req
		data["Next"] = next
		data["Errors"] = formErrors(err)
		render(c, appErrorStatus(err), "login.html", data)
		return
	}

	h.setCookie(c, session.Token, int(session.ExpiresAt.Sub(h.now()).Seconds()))
	if next != "" {
		c.Redirect(http.StatusSeeOther, next)
		return
	}

	c.Set(middleware.ContextSessionKey, &models.SessionClaims{UserID: session.User.ID, Username: session.User.Username})
	renderSuccess(c, titleLogin, msgLoggedIn)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, defaultAfterOut)
}

// Me godoc
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "login required"))
		return
	}
	user, err := h.auth.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
