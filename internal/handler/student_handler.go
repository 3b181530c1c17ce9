package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/service"
	"github.com/noah-isme/fefu-courses/pkg/response"
)

const msgStudentNotFound = "Студент с таким ID не найден"

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Profile(ctx context.Context, id string) (*service.StudentProfile, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
}

// StudentHandler exposes student pages and endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

func studentFilterFromQuery(c *gin.Context, searchKey string) models.StudentFilter {
	return models.StudentFilter{
		Search:   strings.TrimSpace(c.Query(searchKey)),
		Faculty:  models.Faculty(strings.ToUpper(c.Query("faculty"))),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
}

// Index renders the student directory.
func (h *StudentHandler) Index(c *gin.Context) {
	filter := studentFilterFromQuery(c, "q")
	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err, "")
		return
	}

	data := pageData(c, "Студенты")
	data["Students"] = students
	data["Pagination"] = pagination
	data["PrevURL"], data["NextURL"] = pageLinks(c, pagination)
	data["Query"] = filter.Search
	data["Faculty"] = filter.Faculty
	data["Faculties"] = models.Faculties()
	render(c, http.StatusOK, "students.html", data)
}

// Show renders a student profile with their enrollments.
func (h *StudentHandler) Show(c *gin.Context) {
	profile, err := h.students.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err, msgStudentNotFound)
		return
	}

	data := pageData(c, profile.Student.FullName())
	data["Profile"] = profile
	render(c, http.StatusOK, "student.html", data)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or email"
// @Param faculty query string false "Filter by faculty code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), studentFilterFromQuery(c, "search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student profile
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	profile, err := h.students.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
