package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/service"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

const (
	msgCourseNotFound      = "Курс с таким названием не найден"
	msgEnrollStudentAbsent = "Студент с таким email не найден"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error)
	View(ctx context.Context, slug string) (*service.CourseView, error)
	Availability(ctx context.Context, slug string) (*models.CourseAvailability, error)
	Create(ctx context.Context, req service.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, slug string, req service.CourseRequest) (*models.Course, error)
}

type studentFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

type courseEnroller interface {
	Enroll(ctx context.Context, req service.EnrollRequest) (*models.Enrollment, error)
}

// CourseHandler exposes course pages, the enroll form and course endpoints.
type CourseHandler struct {
	courses     courseService
	students    studentFinder
	enrollments courseEnroller
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService, students studentFinder, enrollments courseEnroller) *CourseHandler {
	return &CourseHandler{courses: courses, students: students, enrollments: enrollments}
}

func courseFilterFromQuery(c *gin.Context, searchKey string) models.CourseFilter {
	return models.CourseFilter{
		Search:       strings.TrimSpace(c.Query(searchKey)),
		Level:        models.CourseLevel(strings.ToUpper(c.Query("level"))),
		InstructorID: c.Query("instructorId"),
		Active:       queryBool(c, "active"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "limit", 20),
	}
}

// Index renders the course catalogue.
func (h *CourseHandler) Index(c *gin.Context) {
	filter := courseFilterFromQuery(c, "q")
	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err, "")
		return
	}

	data := pageData(c, "Курсы")
	data["Courses"] = courses
	data["Pagination"] = pagination
	data["PrevURL"], data["NextURL"] = pageLinks(c, pagination)
	data["Query"] = filter.Search
	data["Level"] = filter.Level
	data["Levels"] = models.CourseLevels()
	render(c, http.StatusOK, "courses.html", data)
}

// Show renders the course page with remaining seats and the roster.
func (h *CourseHandler) Show(c *gin.Context) {
	h.renderCourse(c, http.StatusOK, "", nil)
}

// Enroll handles the enroll form. The student is looked up by email; on
// success the browser is sent back to the course page.
func (h *CourseHandler) Enroll(c *gin.Context) {
	ctx := c.Request.Context()
	email := strings.TrimSpace(c.PostForm("student_email"))
	if email == "" {
		h.renderCourse(c, http.StatusBadRequest, email, map[string]string{"student_email": "Обязательное поле"})
		return
	}

	view, err := h.courses.View(ctx, c.Param("slug"))
	if err != nil {
		renderError(c, err, msgCourseNotFound)
		return
	}

	student, err := h.students.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			h.renderView(c, http.StatusBadRequest, view, email, map[string]string{"student_email": msgEnrollStudentAbsent})
			return
		}
		renderError(c, err, "")
		return
	}

	if _, err := h.enrollments.Enroll(ctx, service.EnrollRequest{StudentID: student.ID, CourseID: view.Course.ID}); err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status >= http.StatusInternalServerError {
			renderError(c, err, "")
			return
		}
		fields := formErrors(err)
		if msg, ok := fields["course_id"]; ok {
			delete(fields, "course_id")
			fields[""] = msg
		}
		h.renderView(c, appErr.Status, view, email, fields)
		return
	}

	c.Redirect(http.StatusSeeOther, "/course/"+view.Course.Slug+"/")
}

func (h *CourseHandler) renderCourse(c *gin.Context, status int, email string, fields map[string]string) {
	view, err := h.courses.View(c.Request.Context(), c.Param("slug"))
	if err != nil {
		renderError(c, err, msgCourseNotFound)
		return
	}
	h.renderView(c, status, view, email, fields)
}

func (h *CourseHandler) renderView(c *gin.Context, status int, view *service.CourseView, email string, fields map[string]string) {
	data := pageData(c, view.Course.Title)
	data["View"] = view
	data["StudentEmail"] = email
	if fields != nil {
		data["Errors"] = fields
	}
	render(c, status, "course.html", data)
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param search query string false "Search by title or description"
// @Param level query string false "Filter by level"
// @Param instructorId query string false "Filter by instructor"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, pagination, err := h.courses.List(c.Request.Context(), courseFilterFromQuery(c, "search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// Get godoc
// @Summary Get course detail with roster
// @Tags Courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{slug} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	view, err := h.courses.View(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Availability godoc
// @Summary Get remaining seats of a course
// @Tags Courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{slug}/availability [get]
func (h *CourseHandler) Availability(c *gin.Context) {
	availability, err := h.courses.Availability(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param slug path string true "Course slug"
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{slug} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
