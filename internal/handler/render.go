package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/middleware"
	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

const (
	templateNotFound = "404.html"
	templateError    = "error.html"
	templateSuccess  = "success.html"
)

// Banner texts shown above forms for errors that are not tied to a field.
var bannerMessages = map[string]string{
	appErrors.ErrInvalidCredentials.Code:  "Неверное имя пользователя или пароль",
	appErrors.ErrCourseFull.Code:          "На курсе нет свободных мест",
	appErrors.ErrDuplicateEnrollment.Code: "Студент уже записан на этот курс",
	appErrors.ErrInternal.Code:            "Произошла внутренняя ошибка. Попробуйте позже.",
	appErrors.ErrValidation.Code:          "Проверьте правильность заполнения формы",
}

func pageData(c *gin.Context, title string) gin.H {
	data := gin.H{"Title": title, "Errors": map[string]string{}}
	if claims := middleware.SessionFromContext(c); claims != nil {
		data["CurrentUser"] = claims
	}
	return data
}

func render(c *gin.Context, status int, name string, data gin.H) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, data)
}

func renderSuccess(c *gin.Context, title, message string) {
	data := pageData(c, title)
	data["Message"] = message
	render(c, http.StatusOK, templateSuccess, data)
}

// renderNotFound renders the 404 page with an optional explanation.
func renderNotFound(c *gin.Context, message string) {
	data := pageData(c, "Страница не найдена")
	data["Message"] = message
	render(c, http.StatusNotFound, templateNotFound, data)
}

// renderError renders the page matching err. notFound overrides the message
// shown for missing resources.
func renderError(c *gin.Context, err error, notFound string) {
	appErr := appErrors.FromError(err)
	if errors.Is(appErr, appErrors.ErrNotFound) {
		renderNotFound(c, notFound)
		return
	}
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	data := pageData(c, "Ошибка")
	if appErr.Status < http.StatusInternalServerError {
		data["Message"] = bannerFor(appErr)
	}
	render(c, appErr.Status, templateError, data)
}

// formErrors turns err into the per-field map templates expect. Errors with no
// field detail are placed under "" as a banner.
func formErrors(err error) map[string]string {
	appErr := appErrors.FromError(err)
	if len(appErr.Fields) > 0 {
		fields := make(map[string]string, len(appErr.Fields))
		for k, v := range appErr.Fields {
			fields[k] = v
		}
		return fields
	}
	return map[string]string{"": bannerFor(appErr)}
}

func bannerFor(appErr *appErrors.Error) string {
	if msg, ok := bannerMessages[appErr.Code]; ok {
		return msg
	}
	return appErr.Message
}

// pageLinks builds previous/next URLs that keep the current query string.
func pageLinks(c *gin.Context, p *models.Pagination) (prev, next string) {
	if p == nil {
		return "", ""
	}
	if p.HasPrev() {
		prev = withPage(c.Request.URL, p.Page-1)
	}
	if p.HasNext() {
		next = withPage(c.Request.URL, p.Page+1)
	}
	return prev, next
}

func withPage(u *url.URL, page int) string {
	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	return u.Path + "?" + query.Encode()
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}

func queryBool(c *gin.Context, key string) *bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// safeRedirect accepts only local absolute paths with no host, backslash or
// control character.
func safeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	if strings.ContainsAny(target, "\\") || strings.IndexFunc(target, unicode.IsControl) >= 0 {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return target
}

func invalidPayload(c *gin.Context, err error) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
}

func appErrorStatus(err error) int {
	return appErrors.FromError(err).Status
}
