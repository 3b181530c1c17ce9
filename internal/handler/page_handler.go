package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/models"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

const (
	homeCourseLimit  = 6
	homeStudentLimit = 5
)

type homeStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Count(ctx context.Context) (int, error)
}

type homeCourseLister interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error)
}

// PageHandler renders the static and overview pages.
type PageHandler struct {
	students homeStudentLister
	courses  homeCourseLister
}

// NewPageHandler constructs PageHandler.
func NewPageHandler(students homeStudentLister, courses homeCourseLister) *PageHandler {
	return &PageHandler{students: students, courses: courses}
}

// Home renders the landing page with active courses and recent students.
func (h *PageHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	active := true
	courses, pagination, err := h.courses.List(ctx, models.CourseFilter{Active: &active, Page: 1, PageSize: homeCourseLimit})
	if err != nil {
		renderError(c, err, "")
		return
	}
	students, _, err := h.students.List(ctx, models.StudentFilter{Page: 1, PageSize: homeStudentLimit})
	if err != nil {
		renderError(c, err, "")
		return
	}
	count, err := h.students.Count(ctx)
	if err != nil {
		renderError(c, err, "")
		return
	}

	data := pageData(c, "Главная")
	data["Courses"] = courses
	data["Students"] = students
	data["Pagination"] = pagination
	data["StudentCount"] = count
	render(c, http.StatusOK, "home.html", data)
}

// About renders the about page.
func (h *PageHandler) About(c *gin.Context) {
	render(c, http.StatusOK, "about.html", pageData(c, "О нас"))
}

// NotFound renders the 404 page for unmatched routes. API paths get the JSON
// envelope instead.
func (h *PageHandler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
		return
	}
	renderNotFound(c, "")
}
